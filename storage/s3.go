package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/jsphweid/musicbox/file"
	"github.com/jsphweid/musicbox/metrics"
)

// S3Store keeps resources in a bucket under a common prefix.
type S3Store struct {
	client  *s3.Client
	bucket  string
	region  string
	prefix  string
	baseURL string
}

func NewS3Store(ctx context.Context, region, bucket, baseURL string) (*S3Store, error) {
	if bucket == "" {
		return nil, errors.New("s3 storage needs a bucket")
	}
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Store{
		client:  s3.NewFromConfig(cfg),
		bucket:  bucket,
		region:  region,
		prefix:  "scores/",
		baseURL: baseURL,
	}, nil
}

func (s *S3Store) Driver() string { return "s3" }

func (s *S3Store) key(name string) string {
	return s.prefix + name
}

// URL is the public address of a stored resource, if the bucket is served.
func (s *S3Store) URL(name string) string {
	if s.baseURL == "" {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, s.key(name))
	}
	return fmt.Sprintf("%s/%s", strings.TrimSuffix(s.baseURL, "/"), s.key(name))
}

func (s *S3Store) Put(ctx context.Context, name string, data []byte) (err error) {
	defer func() { metrics.Get().ObserveStorage(s.Driver(), "put", err) }()
	if err := file.CheckName(name); err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(s.key(name)),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(file.ContentType(name)),
		CacheControl: aws.String("max-age=3600"),
		Metadata: map[string]string{
			"upload-timestamp": time.Now().Format(time.RFC3339),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

func (s *S3Store) Get(ctx context.Context, name string) (data []byte, err error) {
	defer func() { metrics.Get().ObserveStorage(s.Driver(), "get", err) }()
	if err := file.CheckName(name); err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to download from S3: %w", err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}
