package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"adminportal/internal/repositories"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ArchiveService exports daily audit-log snapshots to object storage.
type ArchiveService interface {
	// ExportDay uploads every action-log entry of one UTC day as a JSON
	// object named audit/<YYYY-MM-DD>.json. Returns the entry count.
	ExportDay(ctx context.Context, day time.Time) (int, error)
	HealthCheck(ctx context.Context) error
}

type archiveService struct {
	client *minio.Client
	bucket string
	repo   repositories.ActionLogRepository
}

func NewArchiveService(endpoint, accessKey, secretKey string, useSSL bool, bucket string, repo repositories.ActionLogRepository) (ArchiveService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object storage client: %w", err)
	}
	return &archiveService{client: client, bucket: bucket, repo: repo}, nil
}

func (s *archiveService) ExportDay(ctx context.Context, day time.Time) (int, error) {
	entries, err := s.repo.ListDay(ctx, day)
	if err != nil {
		return 0, fmt.Errorf("failed to load action logs: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	if err := s.ensureBucket(ctx); err != nil {
		return 0, err
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal archive: %w", err)
	}

	objectName := fmt.Sprintf("audit/%s.json", day.UTC().Format("2006-01-02"))
	_, err = s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upload archive %s: %w", objectName, err)
	}
	return len(entries), nil
}

func (s *archiveService) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

func (s *archiveService) HealthCheck(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucket)
	return err
}
