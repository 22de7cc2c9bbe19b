// Package observability publishes operational counters to CloudWatch.
package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// Metric names emitted by the gallery service.
const (
	MetricUploadsPrepared  = "UploadsPrepared"
	MetricUploadsCompleted = "UploadsCompleted"
	MetricUploadsFailed    = "UploadsFailed"
	MetricImagesListed     = "ImagesListed"
	MetricObjectsDeleted   = "ObjectsDeleted"
)

// Metrics sends best-effort counters to CloudWatch. A nil client turns all
// recording into a no-op, which is how tests and local runs operate.
type Metrics struct {
	namespace string
	client    *cloudwatch.Client
	logger    *zap.Logger
}

// NewMetrics creates a metrics instance.
func NewMetrics(namespace string, client *cloudwatch.Client, logger *zap.Logger) *Metrics {
	return &Metrics{namespace: namespace, client: client, logger: logger}
}

// Count records an increment for a named counter with an operation
// dimension. Failures are logged, never propagated; metrics must not fail
// the request.
func (m *Metrics) Count(ctx context.Context, metricName, operation string, value float64) {
	if m == nil || m.client == nil {
		return
	}

	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String(metricName),
				Dimensions: []types.Dimension{
					{Name: aws.String("Operation"), Value: aws.String(operation)},
				},
				Value:     aws.Float64(value),
				Unit:      types.StandardUnitCount,
				Timestamp: aws.Time(time.Now()),
			},
		},
	}

	if _, err := m.client.PutMetricData(ctx, input); err != nil && m.logger != nil {
		m.logger.Warn("failed to publish metric",
			zap.String("metric", metricName),
			zap.Error(err),
		)
	}
}

// RecordLatency records an operation latency in milliseconds.
func (m *Metrics) RecordLatency(ctx context.Context, operation string, latency time.Duration) {
	if m == nil || m.client == nil {
		return
	}

	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String("OperationLatency"),
				Dimensions: []types.Dimension{
					{Name: aws.String("Operation"), Value: aws.String(operation)},
				},
				Value:     aws.Float64(float64(latency.Milliseconds())),
				Unit:      types.StandardUnitMilliseconds,
				Timestamp: aws.Time(time.Now()),
			},
		},
	}

	if _, err := m.client.PutMetricData(ctx, input); err != nil && m.logger != nil {
		m.logger.Warn("failed to publish latency metric",
			zap.String("operation", operation),
			zap.Error(err),
		)
	}
}
