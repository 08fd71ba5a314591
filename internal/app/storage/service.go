package storage

import (
	"context"
)

// ServiceConfig holds the configuration required to connect to the media host.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// MediaService defines the public interface for the external media host.
// Given raw attachment bytes it returns a durable retrieval URL; the messaging
// core stores only that reference.
type MediaService interface {
	// Upload stores the bytes under key and returns the durable public URL.
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)

	// Delete removes the object stored under key.
	Delete(ctx context.Context, key string) error
}

// NewMediaService is the factory function for MediaService.
// It initializes and returns a concrete implementation based on the provided configuration.
func NewMediaService(cfg ServiceConfig) (MediaService, error) {
	// Currently, only S3 compatible implementations are supported.
	return newS3Client(cfg)
}
