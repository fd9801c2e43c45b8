package storage

import (
	"context"
	"io"
)

// ImageStore stores user-uploaded images. Keys returned by it are the
// "storage ids" persisted on profiles, posts and puffs.
type ImageStore interface {
	PresignUpload(ctx context.Context, userID, contentType string) (*PresignedUpload, error)
	UploadImage(ctx context.Context, body io.Reader, size int64, userID, filename, contentType string) (*UploadResult, error)
	URL(key string) string
	Delete(ctx context.Context, key string) error
}

// Ensure S3Uploader implements ImageStore
var _ ImageStore = (*S3Uploader)(nil)
