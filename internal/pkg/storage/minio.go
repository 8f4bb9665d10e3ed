package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"tush00nka/chathub/internal/model"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	UseSSL     bool
	Bucket     string
	PublicURL  string
	PresignTTL time.Duration
}

// Minio stores files in a MinIO bucket through the native client.
type Minio struct {
	cfg    MinioConfig
	client *minio.Client
}

func NewMinio(ctx context.Context, cfg MinioConfig) (*Minio, error) {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "http://"), "https://")
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	m := &Minio{cfg: cfg, client: client}
	if err := m.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Minio) ensureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", m.cfg.Bucket, err)
	}
	if !exists {
		return m.client.MakeBucket(ctx, m.cfg.Bucket, minio.MakeBucketOptions{})
	}
	return nil
}

func (m *Minio) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (*model.StoredFile, error) {
	info, err := m.client.PutObject(ctx, m.cfg.Bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	url := publicURL(m.cfg.PublicURL, key)
	if m.cfg.PublicURL == "" {
		u, err := m.client.PresignedGetObject(ctx, m.cfg.Bucket, key, m.cfg.PresignTTL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
		}
		url = u.String()
	}

	return &model.StoredFile{
		Path:        key,
		URL:         url,
		ContentType: contentType,
		Size:        info.Size,
		CreatedAt:   time.Now(),
	}, nil
}

func (m *Minio) Remove(ctx context.Context, path string) error {
	if err := m.client.RemoveObject(ctx, m.cfg.Bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", path, err)
	}
	return nil
}
