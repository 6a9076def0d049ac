package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3API is the subset of *s3.Client the store calls.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps files in an S3 bucket.
type S3Store struct {
	client  S3API
	bucket  string
	region  string
	prefix  string
	baseURL string
}

// S3Option configures an S3Store.
type S3Option func(*S3Store)

// WithKeyPrefix stores every key below prefix.
func WithKeyPrefix(prefix string) S3Option {
	return func(s *S3Store) {
		s.prefix = strings.Trim(prefix, "/")
	}
}

// WithPublicBaseURL serves objects from a CDN or custom domain instead of the
// bucket's virtual-hosted URL.
func WithPublicBaseURL(base string) S3Option {
	return func(s *S3Store) {
		s.baseURL = base
	}
}

// WithRegion records the bucket region used for default URLs.
func WithRegion(region string) S3Option {
	return func(s *S3Store) {
		s.region = region
	}
}

// NewS3Store wraps client for bucket.
func NewS3Store(client S3API, bucket string, opts ...S3Option) (*S3Store, error) {
	if client == nil {
		return nil, fmt.Errorf("storage: s3 client is required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("storage: s3 bucket is required")
	}
	s := &S3Store{client: client, bucket: bucket}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// NewS3StoreFromEnv loads the default AWS configuration (environment, shared
// config, instance role) for region and builds a store for bucket.
func NewS3StoreFromEnv(ctx context.Context, bucket, region string, opts ...S3Option) (*S3Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}
	return NewS3Store(s3.NewFromConfig(cfg), bucket, append([]S3Option{WithRegion(cfg.Region)}, opts...)...)
}

func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return err
	}
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("storage: s3 put %s: %w", objectKey, err)
	}
	return nil
}

func (s *S3Store) Exists(ctx context.Context, key string) (bool, error) {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return false, err
	}
	_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("storage: s3 head %s: %w", objectKey, err)
}

// Delete removes key; S3 treats deleting a missing object as success.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("storage: s3 delete %s: %w", objectKey, err)
	}
	return nil
}

func (s *S3Store) Path(key string) string {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return ""
	}
	return "s3://" + s.bucket + "/" + objectKey
}

func (s *S3Store) URL(key string) string {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return ""
	}
	if s.baseURL != "" {
		return joinURL(s.baseURL, objectKey)
	}
	if s.region == "" {
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, objectKey)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, objectKey)
}

func (s *S3Store) objectKey(key string) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if s.prefix == "" {
		return cleaned, nil
	}
	return s.prefix + "/" + cleaned, nil
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}
