// Package eventbridge publishes gallery domain events to an EventBridge bus.
package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"

	"tryon-backend/application/ports"
)

// Event types emitted on the bus.
const (
	EventImagesUploaded = "gallery.images.uploaded"
	EventImagesDeleted  = "gallery.images.deleted"
)

const eventSource = "tryon.gallery"

// maxBatchSize is the PutEvents API limit.
const maxBatchSize = 10

// Publisher sends events to a named EventBridge bus.
type Publisher struct {
	client  *eventbridge.Client
	busName string
	logger  *zap.Logger
}

// NewPublisher creates an EventBridge publisher for the given bus.
func NewPublisher(client *eventbridge.Client, busName string, logger *zap.Logger) *Publisher {
	return &Publisher{client: client, busName: busName, logger: logger}
}

// Publish sends a single event. Failures are returned but callers treat
// publishing as best-effort.
func (p *Publisher) Publish(ctx context.Context, event ports.Event) error {
	return p.PublishBatch(ctx, []ports.Event{event})
}

// PublishBatch sends events in chunks of the PutEvents limit.
func (p *Publisher) PublishBatch(ctx context.Context, events []ports.Event) error {
	for start := 0; start < len(events); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(events) {
			end = len(events)
		}
		if err := p.putEvents(ctx, events[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) putEvents(ctx context.Context, events []ports.Event) error {
	entries := make([]types.PutEventsRequestEntry, 0, len(events))
	for _, event := range events {
		detail, err := json.Marshal(event.Detail)
		if err != nil {
			return fmt.Errorf("marshal event detail: %w", err)
		}
		entries = append(entries, types.PutEventsRequestEntry{
			Source:       aws.String(eventSource),
			DetailType:   aws.String(event.Type),
			Detail:       aws.String(string(detail)),
			EventBusName: aws.String(p.busName),
		})
	}

	out, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{Entries: entries})
	if err != nil {
		return fmt.Errorf("put events: %w", err)
	}
	if out.FailedEntryCount > 0 {
		for _, entry := range out.Entries {
			if entry.ErrorCode != nil {
				p.logger.Warn("event rejected by bus",
					zap.String("errorCode", aws.ToString(entry.ErrorCode)),
					zap.String("errorMessage", aws.ToString(entry.ErrorMessage)),
				)
			}
		}
		return fmt.Errorf("put events: %d entries failed", out.FailedEntryCount)
	}
	return nil
}

// NopPublisher discards events. Used when no bus is configured.
type NopPublisher struct{}

// Publish drops the event.
func (NopPublisher) Publish(ctx context.Context, event ports.Event) error { return nil }
