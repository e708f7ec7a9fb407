package modelstore

import (
	"bytes"
	"context"
	"io"
	"path"
	"slices"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/YuminosukeSato/scitree/pkg/errors"
)

// MinioStore is a BlobStore on MinIO or any S3-compatible object store.
type MinioStore struct {
	client *minio.Client
	bucket string
	prefix string
}

// MinioConfig describes how to reach an S3-compatible endpoint.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Secure    bool
	Bucket    string
	// Prefix is prepended to every key, e.g. "models/".
	Prefix string
}

// NewMinioStore wraps an existing client.
func NewMinioStore(client *minio.Client, bucket, prefix string) *MinioStore {
	return &MinioStore{client: client, bucket: bucket, prefix: prefix}
}

// DialMinio creates a client from cfg and makes sure the bucket exists.
func DialMinio(ctx context.Context, cfg MinioConfig) (*MinioStore, error) {
	if cfg.Endpoint == "" {
		return nil, errors.NewValidationError("minio_endpoint", "must not be empty", cfg.Endpoint)
	}
	if cfg.Bucket == "" {
		return nil, errors.NewValidationError("bucket", "must not be empty", cfg.Bucket)
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "modelstore: minio client for %s", cfg.Endpoint)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, errors.Wrapf(err, "modelstore: check bucket %s", cfg.Bucket)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, errors.Wrapf(err, "modelstore: create bucket %s", cfg.Bucket)
		}
	}
	return NewMinioStore(client, cfg.Bucket, cfg.Prefix), nil
}

func (s *MinioStore) key(name string) string {
	return path.Join(s.prefix, name)
}

func isNoSuchKey(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}

// Put uploads data as a single object.
func (s *MinioStore) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		return errors.Wrapf(err, "modelstore: put %q", name)
	}
	return nil
}

// Get downloads the whole object.
func (s *MinioStore) Get(ctx context.Context, name string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key(name), minio.GetObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, errors.Wrapf(ErrNotFound, "blob %q", name)
		}
		return nil, errors.Wrapf(err, "modelstore: get %q", name)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if isNoSuchKey(err) {
			return nil, errors.Wrapf(ErrNotFound, "blob %q", name)
		}
		return nil, errors.Wrapf(err, "modelstore: get %q", name)
	}
	return data, nil
}

// Delete removes the object. A missing object is not an error.
func (s *MinioStore) Delete(ctx context.Context, name string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{})
	if err != nil && !isNoSuchKey(err) {
		return errors.Wrapf(err, "modelstore: delete %q", name)
	}
	return nil
}

// List returns the sorted names under prefix, relative to the store prefix.
func (s *MinioStore) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.key(prefix),
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, "modelstore: list")
		}
		name := strings.TrimPrefix(strings.TrimPrefix(obj.Key, s.prefix), "/")
		if name != "" {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}
