// Package s3 implements the object store port on top of Amazon S3.
package s3

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"tryon-backend/application/ports"
	apperrors "tryon-backend/pkg/errors"
)

// ObjectStore talks to a single bucket. All keys are bucket-relative and
// pre-sanitized by the domain layer.
type ObjectStore struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	logger  *zap.Logger
}

// NewObjectStore creates an S3-backed object store for the given bucket.
func NewObjectStore(client *s3.Client, bucket string, logger *zap.Logger) *ObjectStore {
	return &ObjectStore{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
		logger:  logger,
	}
}

// Head probes a key and returns its content type, size and metadata. Absent
// keys map to a typed not-found error.
func (s *ObjectStore) Head(ctx context.Context, key string) (*ports.ObjectInfo, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return nil, apperrors.NewNotFoundError("object")
		}
		return nil, apperrors.NewExternalError("s3", err)
	}

	info := &ports.ObjectInfo{
		Key:         key,
		ContentType: aws.ToString(out.ContentType),
		Size:        aws.ToInt64(out.ContentLength),
		Metadata:    out.Metadata,
	}
	if out.LastModified != nil {
		info.LastModified = *out.LastModified
	}
	return info, nil
}

// ListPage returns one page of keys under prefix. cursor is the previous
// page's continuation token; empty starts from the beginning.
func (s *ObjectStore) ListPage(ctx context.Context, prefix string, maxKeys int32, cursor string) (*ports.ObjectPage, error) {
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(maxKeys),
	}
	if cursor != "" {
		input.ContinuationToken = aws.String(cursor)
	}

	out, err := s.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, apperrors.NewExternalError("s3", err)
	}

	page := &ports.ObjectPage{
		Objects:    make([]ports.ObjectSummary, 0, len(out.Contents)),
		NextCursor: aws.ToString(out.NextContinuationToken),
		Truncated:  aws.ToBool(out.IsTruncated),
	}
	for _, obj := range out.Contents {
		summary := ports.ObjectSummary{
			Key:  aws.ToString(obj.Key),
			Size: aws.ToInt64(obj.Size),
		}
		if obj.LastModified != nil {
			summary.LastModified = *obj.LastModified
		}
		page.Objects = append(page.Objects, summary)
	}
	return page, nil
}

// DeleteBatch removes up to 1000 keys in one call and reports per-key
// failures without aborting the batch.
func (s *ObjectStore) DeleteBatch(ctx context.Context, keys []string) (int, []ports.DeleteError, error) {
	if len(keys) == 0 {
		return 0, nil, nil
	}

	objects := make([]types.ObjectIdentifier, 0, len(keys))
	for _, key := range keys {
		objects = append(objects, types.ObjectIdentifier{Key: aws.String(key)})
	}

	out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &types.Delete{
			Objects: objects,
			Quiet:   aws.Bool(false),
		},
	})
	if err != nil {
		return 0, nil, apperrors.NewExternalError("s3", err)
	}

	var failures []ports.DeleteError
	for _, e := range out.Errors {
		failures = append(failures, ports.DeleteError{
			Key:     aws.ToString(e.Key),
			Message: aws.ToString(e.Message),
		})
		s.logger.Warn("object deletion failed",
			zap.String("key", aws.ToString(e.Key)),
			zap.String("code", aws.ToString(e.Code)),
		)
	}
	return len(out.Deleted), failures, nil
}

// RewriteMetadata copies the object onto itself with REPLACE semantics,
// swapping in the given content type and metadata.
func (s *ObjectStore) RewriteMetadata(ctx context.Context, key, contentType string, metadata map[string]string) error {
	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:            aws.String(s.bucket),
		Key:               aws.String(key),
		CopySource:        aws.String(s.bucket + "/" + key),
		ContentType:       aws.String(contentType),
		Metadata:          metadata,
		MetadataDirective: types.MetadataDirectiveReplace,
	})
	if err != nil {
		return apperrors.NewExternalError("s3", err)
	}
	return nil
}

// PresignGet issues a time-limited read URL for key.
func (s *ObjectStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", apperrors.NewExternalError("s3", err)
	}
	return req.URL, nil
}

// PresignPut issues a time-limited write URL for key. The signature binds
// only bucket and key, so clients may send any Content-Type header; the
// completion step validates the stored object.
func (s *ObjectStore) PresignPut(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", apperrors.NewExternalError("s3", err)
	}
	return req.URL, nil
}
