package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"photo-index/internal/logging"
)

// S3Config configures the S3 backend.
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	// CreateBucket makes Open create a missing bucket instead of failing.
	CreateBucket bool
}

// S3 stores objects in an S3-compatible bucket.
type S3 struct {
	client *minio.Client
	bucket string
	region string
	create bool
}

// NewS3 creates the client. Call Open before use to verify the bucket.
func NewS3(cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3: bucket name is required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}
	return &S3{client: client, bucket: cfg.Bucket, region: cfg.Region, create: cfg.CreateBucket}, nil
}

func (*S3) Name() string {
	return "s3"
}

// Open checks that the bucket exists, creating it when configured to.
func (s *S3) Open(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("s3: check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if !s.create {
		return fmt.Errorf("s3: bucket %s does not exist", s.bucket)
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("s3: create bucket %s: %w", s.bucket, err)
	}
	logging.Info("Created bucket %s", s.bucket)
	return nil
}

// translateError maps missing-object responses to ErrNotFound.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

func (s *S3) Get(ctx context.Context, key string) (data []byte, err error) {
	defer func(start time.Time) { observe("s3", "get", start, err) }(time.Now())

	if err := validateKey(key); err != nil {
		return nil, err
	}
	object, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, translateError(err)
	}
	defer object.Close()

	// GetObject is lazy; a missing key surfaces on first read.
	data, err = io.ReadAll(object)
	if err != nil {
		return nil, translateError(err)
	}
	return data, nil
}

func (s *S3) Put(ctx context.Context, key string, data []byte, contentType string) (err error) {
	defer func(start time.Time) { observe("s3", "put", start, err) }(time.Now())

	if err := validateKey(key); err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (s *S3) List(ctx context.Context, prefix string) (keys []string, err error) {
	defer func(start time.Time) { observe("s3", "list", start, err) }(time.Now())

	objectsCh := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for object := range objectsCh {
		if object.Err != nil {
			return nil, object.Err
		}
		keys = append(keys, object.Key)
	}
	slices.Sort(keys)
	return keys, nil
}

func (s *S3) Exists(ctx context.Context, key string) (ok bool, err error) {
	defer func(start time.Time) { observe("s3", "exists", start, err) }(time.Now())

	if err := validateKey(key); err != nil {
		return false, err
	}
	_, err = s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if err = translateError(err); errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, err
}
