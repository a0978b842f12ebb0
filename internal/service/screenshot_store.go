package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ScreenshotStore persists captured screenshots and returns a public URL for
// the audit record and the API response.
type ScreenshotStore interface {
	Save(ctx context.Context, userID string, screenshotPNG []byte) (string, error)
}

type s3ScreenshotStore struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewS3ScreenshotStore creates a ScreenshotStore backed by an S3-compatible bucket.
func NewS3ScreenshotStore(client *s3.Client, bucket, baseURL string) ScreenshotStore {
	return &s3ScreenshotStore{client: client, bucket: bucket, baseURL: baseURL}
}

func (s *s3ScreenshotStore) Save(ctx context.Context, userID string, screenshotPNG []byte) (string, error) {
	key := fmt.Sprintf("roasts/%s/%s.png", userID, uuid.NewString())
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(screenshotPNG),
		ContentType: aws.String("image/png"),
	})
	if err != nil {
		return "", fmt.Errorf("upload screenshot: %w", err)
	}
	return fmt.Sprintf("%s/%s/%s", s.baseURL, s.bucket, key), nil
}
