// Package storage provides object storage implementations for raw XML
// archival.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	fiscalapp "github.com/nfehub/backend/internal/application/fiscal"
	infraconfig "github.com/nfehub/backend/internal/infrastructure/config"
)

// Ensure S3XMLArchiver implements XMLArchiver
var _ fiscalapp.XMLArchiver = (*S3XMLArchiver)(nil)

// S3XMLArchiver stores raw NFe XML in an S3-compatible bucket. It works with
// AWS S3, MinIO and other S3-compatible backends.
type S3XMLArchiver struct {
	client            *s3.Client
	presignClient     *s3.PresignClient
	bucket            string
	presignExpiration time.Duration
	logger            *zap.Logger
}

// S3XMLArchiverOption is a functional option for configuring S3XMLArchiver
type S3XMLArchiverOption func(*S3XMLArchiver)

// WithLogger sets a custom logger for S3XMLArchiver
func WithLogger(logger *zap.Logger) S3XMLArchiverOption {
	return func(a *S3XMLArchiver) {
		a.logger = logger
	}
}

// WithPresignExpiration sets a custom presign expiration duration
func WithPresignExpiration(d time.Duration) S3XMLArchiverOption {
	return func(a *S3XMLArchiver) {
		a.presignExpiration = d
	}
}

// NewS3XMLArchiver creates an archiver from configuration
func NewS3XMLArchiver(cfg *infraconfig.StorageConfig, opts ...S3XMLArchiverOption) (*S3XMLArchiver, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "http://localhost:9000"
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if cfg.UseSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid storage endpoint: %w", err)
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.BaseEndpoint = aws.String(endpoint)
	})

	archiver := &S3XMLArchiver{
		client:            client,
		presignClient:     s3.NewPresignClient(client),
		bucket:            cfg.Bucket,
		presignExpiration: cfg.PresignExpiration,
		logger:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(archiver)
	}
	if archiver.presignExpiration == 0 {
		archiver.presignExpiration = 15 * time.Minute
	}

	return archiver, nil
}

// EnsureBucket creates the bucket if it doesn't exist. Call during startup.
func (a *S3XMLArchiver) EnsureBucket(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	a.logger.Info("Creating archive bucket", zap.String("bucket", a.bucket))
	_, err = a.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	return nil
}

// Archive stores the raw XML under a tenant-scoped key and returns the key
func (a *S3XMLArchiver) Archive(ctx context.Context, tenantID uuid.UUID, accessKey string, xmlContent []byte) (string, error) {
	if accessKey == "" {
		return "", errors.New("access key is required")
	}
	if len(xmlContent) == 0 {
		return "", errors.New("xml content is required")
	}

	storageKey := ArchiveKey(tenantID, accessKey)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(storageKey),
		Body:        bytes.NewReader(xmlContent),
		ContentType: aws.String("application/xml"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive xml: %w", err)
	}

	return storageKey, nil
}

// DownloadURL generates a presigned URL for fetching an archived XML
func (a *S3XMLArchiver) DownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	if expiresIn <= 0 {
		expiresIn = a.presignExpiration
	}

	presignReq, err := a.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(storageKey),
	}, s3.WithPresignExpires(expiresIn))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate download URL: %w", err)
	}

	return presignReq.URL, time.Now().Add(expiresIn), nil
}

// ArchiveKey builds the canonical object key for a document's raw XML
func ArchiveKey(tenantID uuid.UUID, accessKey string) string {
	return fmt.Sprintf("tenants/%s/nfe/%s.xml", tenantID, accessKey)
}
