package minio

import (
	"bytes"
	"context"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/chemsafe/internal/domain/chemical"
	"github.com/turtacn/chemsafe/internal/infrastructure/graphdoc"
	"github.com/turtacn/chemsafe/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemsafe/pkg/errors"
)

// DocumentContentType is set on published graph documents.
const DocumentContentType = "application/ld+json"

// ObjectSource loads the graph document from one object.
type ObjectSource struct {
	client *MinIOClient
	bucket string
	key    string
	logger logging.Logger
}

// NewObjectSource reads the bucket and object key configured on client.
func NewObjectSource(client *MinIOClient, log logging.Logger) *ObjectSource {
	return &ObjectSource{
		client: client,
		bucket: client.config.Bucket,
		key:    client.config.ObjectKey,
		logger: logging.OrNop(log),
	}
}

// Name identifies the source in logs and events.
func (s *ObjectSource) Name() string {
	return "minio:" + s.bucket + "/" + s.key
}

// ETag returns the current object ETag.
func (s *ObjectSource) ETag(ctx context.Context) (string, error) {
	api, err := s.client.API()
	if err != nil {
		return "", err
	}
	info, err := api.StatObject(ctx, s.bucket, s.key, minio.StatObjectOptions{})
	if err != nil {
		return "", s.wrap(err, "failed to stat graph object")
	}
	return info.ETag, nil
}

// Load downloads and parses the graph document.
func (s *ObjectSource) Load(ctx context.Context) (*chemical.GraphDocument, error) {
	api, err := s.client.API()
	if err != nil {
		return nil, err
	}
	r, err := api.OpenObject(ctx, s.bucket, s.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.wrap(err, "failed to open graph object")
	}
	defer r.Close()

	doc, err := graphdoc.Parse(r, s.Name())
	if err != nil {
		// A missing key only surfaces on the first read of the object.
		if isNoSuchKey(err) {
			return nil, s.wrap(err, "failed to read graph object")
		}
		return nil, err
	}
	s.logger.Debug("Loaded graph from object storage",
		logging.String("bucket", s.bucket),
		logging.String("key", s.key),
		logging.Int("nodes", len(doc.Nodes)),
	)
	return doc, nil
}

// Publish uploads data as the new graph document. The document is parsed
// first so a malformed upload never replaces a good one.
func (s *ObjectSource) Publish(ctx context.Context, data []byte) (string, error) {
	if _, err := graphdoc.ParseBytes(data, "upload"); err != nil {
		return "", err
	}
	api, err := s.client.API()
	if err != nil {
		return "", err
	}
	info, err := api.PutObject(ctx, s.bucket, s.key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: DocumentContentType,
	})
	if err != nil {
		return "", s.wrap(err, "failed to upload graph object")
	}
	s.logger.Info("Published graph document",
		logging.String("bucket", s.bucket),
		logging.String("key", s.key),
		logging.Int64("size", info.Size),
		logging.String("etag", info.ETag),
	)
	return info.ETag, nil
}

// Poll checks the object's ETag every interval and calls onChange when it
// differs from the last one seen. The first check only records the ETag.
// Poll returns when ctx is done.
func (s *ObjectSource) Poll(ctx context.Context, interval time.Duration, onChange func(ctx context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last, err := s.ETag(ctx)
	if err != nil {
		s.logger.Warn("Initial graph object stat failed", logging.Err(err))
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			etag, err := s.ETag(ctx)
			if err != nil {
				s.logger.Warn("Graph object stat failed", logging.Err(err))
				continue
			}
			if etag != last {
				s.logger.Info("Graph object changed", logging.String("etag", etag))
				last = etag
				onChange(ctx)
			}
		}
	}
}

func (s *ObjectSource) wrap(err error, msg string) error {
	code := errors.ErrCodeGraphUnavailable
	if isNoSuchKey(err) {
		code = errors.ErrCodeStorageObjectNotFound
	}
	return errors.Wrap(err, code, msg).WithDetail(s.Name())
}

func isNoSuchKey(err error) bool {
	var resp minio.ErrorResponse
	return errors.As(err, &resp) && resp.Code == "NoSuchKey"
}

var _ chemical.DocumentSource = (*ObjectSource)(nil)
