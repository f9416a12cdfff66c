package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"docqa/internal/config"
)

var (
	store   *ObjectStore
	once    sync.Once
	initErr error
)

// ErrObjectNotFound is returned when a stored document does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore persists raw uploaded documents in a MinIO bucket, keyed as
// "<collection>/<filename>". It is the source of truth for partial
// re-ingestion and for serving original document bytes.
type ObjectStore struct {
	client *minio.Client
	bucket string
}

// GetStore creates the singleton MinIO connection on first call, ensuring the
// configured bucket exists.
func GetStore(ctx context.Context, cfg *config.MinIOConfig) (*ObjectStore, error) {
	once.Do(func() {
		c, err := minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.Secure,
		})
		if err != nil {
			initErr = fmt.Errorf("failed to create MinIO client: %w", err)
			return
		}

		exists, err := c.BucketExists(ctx, cfg.Bucket)
		if err != nil {
			initErr = fmt.Errorf("failed to check MinIO bucket %s: %w", cfg.Bucket, err)
			return
		}
		if !exists {
			if err := c.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
				initErr = fmt.Errorf("failed to create MinIO bucket %s: %w", cfg.Bucket, err)
				return
			}
		}

		store = &ObjectStore{client: c, bucket: cfg.Bucket}
	})
	return store, initErr
}

func objectKey(collection, filename string) string {
	return fmt.Sprintf("%s/%s", collection, filename)
}

// Put stores the raw bytes of a document, overwriting any previous version.
func (s *ObjectStore) Put(ctx context.Context, collection, filename string, raw []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, objectKey(collection, filename),
		bytes.NewReader(raw), int64(len(raw)), minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("failed to store object %s: %w", objectKey(collection, filename), err)
	}
	return nil
}

// Fetch returns the raw bytes of a stored document.
func (s *ObjectStore) Fetch(ctx context.Context, collection, filename string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, objectKey(collection, filename), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch object %s: %w", objectKey(collection, filename), err)
	}
	defer obj.Close()

	raw, err := io.ReadAll(obj)
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, objectKey(collection, filename))
		}
		return nil, fmt.Errorf("failed to read object %s: %w", objectKey(collection, filename), err)
	}
	return raw, nil
}

// RemoveCollection deletes every stored document under the collection prefix.
func (s *ObjectStore) RemoveCollection(ctx context.Context, collection string) error {
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    collection + "/",
		Recursive: true,
	})
	for obj := range objects {
		if obj.Err != nil {
			return fmt.Errorf("failed to list objects for collection %s: %w", collection, obj.Err)
		}
		if err := s.client.RemoveObject(ctx, s.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to remove object %s: %w", obj.Key, err)
		}
	}
	return nil
}

// HealthCheck verifies connectivity and credentials by listing buckets.
func (s *ObjectStore) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("minio client is not initialized")
	}
	if _, err := s.client.ListBuckets(ctx); err != nil {
		return fmt.Errorf("minio health check failed: %w", err)
	}
	return nil
}
