package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"tush00nka/chathub/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	PublicURL       string
	PresignTTL      time.Duration
}

// S3 stores files in an S3-compatible bucket.
type S3 struct {
	cfg      S3Config
	uploader *manager.Uploader
	client   *s3.Client
	presign  *s3.PresignClient
}

// NewS3 builds the client from static keys when they are set, otherwise from
// the default AWS credential chain.
func NewS3(ctx context.Context, cfg S3Config, log *slog.Logger) (*S3, error) {
	var opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // Обязательно для MinIO
		})
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, opts...)

	log.Info("s3 storage initialized", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket)

	return &S3{
		cfg:      cfg,
		uploader: manager.NewUploader(client),
		client:   client,
		presign:  s3.NewPresignClient(client),
	}, nil
}

func (s *S3) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (*model.StoredFile, error) {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	url, err := s.url(ctx, key)
	if err != nil {
		return nil, err
	}

	return &model.StoredFile{
		Path:        key,
		URL:         url,
		ContentType: contentType,
		Size:        size,
		CreatedAt:   time.Now(),
	}, nil
}

func (s *S3) url(ctx context.Context, key string) (string, error) {
	if s.cfg.PublicURL != "" {
		return publicURL(s.cfg.PublicURL, key), nil
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.cfg.PresignTTL))
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return req.URL, nil
}

func (s *S3) Remove(ctx context.Context, path string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", path, err)
	}
	return nil
}
