package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	appfulfillment "github.com/shopdesk/backend/internal/application/fulfillment"
	"github.com/shopdesk/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

var _ appfulfillment.TransferImageStore = (*S3TransferImageStore)(nil)

// s3API is the subset of the S3 client the store uses.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	CopyObject(ctx context.Context, in *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// S3TransferImageStore keeps transfer images in any S3-compatible bucket
// (AWS S3, MinIO, RustFS).
type S3TransferImageStore struct {
	client  s3API
	bucket  string
	keys    keyspace
	maxSize int64
	logger  *zap.Logger
}

// NewS3TransferImageStore builds an S3 client from configuration.
func NewS3TransferImageStore(cfg *config.StorageConfig, logger *zap.Logger) (*S3TransferImageStore, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("storage access key and secret key are required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			endpoint := cfg.Endpoint
			if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
				endpoint = "https://" + endpoint
			}
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	return newS3TransferImageStore(client, cfg, logger), nil
}

func newS3TransferImageStore(client s3API, cfg *config.StorageConfig, logger *zap.Logger) *S3TransferImageStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &S3TransferImageStore{
		client:  client,
		bucket:  cfg.Bucket,
		keys:    newKeyspace(cfg.StagingPrefix, cfg.PermanentPrefix),
		maxSize: cfg.MaxImageSize,
		logger:  logger.Named("transfer_images"),
	}
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *S3TransferImageStore) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("creating transfer image bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Stage uploads the image under a new staging key.
func (s *S3TransferImageStore) Stage(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	key, err := s.keys.stagedKey(filename, contentType)
	if err != nil {
		return "", err
	}
	data, err := readLimited(body, s.maxSize)
	if err != nil {
		return "", err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload transfer image: %w", err)
	}

	s.logger.Debug("transfer image staged", zap.String("key", key), zap.Int("size", len(data)))
	return key, nil
}

// Promote copies a staged image under the order's permanent prefix and drops
// the staged copy. Keys outside the staging prefix are returned unchanged.
func (s *S3TransferImageStore) Promote(ctx context.Context, stagedKey string, orderID uuid.UUID) (string, error) {
	if !s.keys.isStaged(stagedKey) {
		return stagedKey, nil
	}

	dest := s.keys.permanentKey(stagedKey, orderID)
	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		CopySource: aws.String(s.bucket + "/" + stagedKey),
		Key:        aws.String(dest),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return "", errStagedImageMissing(stagedKey)
		}
		return "", fmt.Errorf("failed to promote transfer image: %w", err)
	}

	if err := s.Delete(ctx, stagedKey); err != nil {
		s.logger.Warn("staged transfer image not removed",
			zap.String("key", stagedKey), zap.Error(err))
	}
	return dest, nil
}

// Delete removes an object. S3 treats deleting a missing key as success.
func (s *S3TransferImageStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete transfer image: %w", err)
	}
	return nil
}
