package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// PresignExpiry is how long a presigned upload URL stays valid
const PresignExpiry = 15 * time.Minute

// S3Uploader stores images in an S3 bucket
type S3Uploader struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	region    string
	baseURL   string
	now       func() time.Time
}

// UploadResult describes a stored object
type UploadResult struct {
	Key    string `json:"storage_id"`
	URL    string `json:"url"`
	Bucket string `json:"bucket"`
	Size   int64  `json:"size"`
}

// PresignedUpload is a URL the client PUTs the image to, plus the key it will live under
type PresignedUpload struct {
	UploadURL string    `json:"upload_url"`
	Key       string    `json:"storage_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewS3Uploader creates a new S3 uploader.
// baseURL is the public prefix (CDN or bucket website) used to build image URLs.
func NewS3Uploader(region, bucket, baseURL string) (*S3Uploader, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}

	return &S3Uploader{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
		region:    region,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		now:       time.Now,
	}, nil
}

// PresignUpload returns a presigned PUT URL for a new image key
func (u *S3Uploader) PresignUpload(ctx context.Context, userID, contentType string) (*PresignedUpload, error) {
	ext := extensionForContentType(contentType)
	key := ImageKey(u.now(), userID, uuid.New().String(), ext)

	req, err := u.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	return &PresignedUpload{
		UploadURL: req.URL,
		Key:       key,
		ExpiresAt: u.now().Add(PresignExpiry),
	}, nil
}

// UploadImage streams an image to S3
func (u *S3Uploader) UploadImage(ctx context.Context, body io.Reader, size int64, userID, filename, contentType string) (*UploadResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = extensionForContentType(contentType)
	}
	now := u.now()
	key := ImageKey(now, userID, uuid.New().String(), ext)

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(getContentTypeForImage(ext)),
		CacheControl:  aws.String("max-age=31536000"),
		Metadata: map[string]string{
			"user-id":           userID,
			"original-filename": filename,
			"upload-timestamp":  now.Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &UploadResult{
		Key:    key,
		URL:    u.URL(key),
		Bucket: u.bucket,
		Size:   size,
	}, nil
}

// URL returns the public URL of a stored key
func (u *S3Uploader) URL(key string) string {
	return fmt.Sprintf("%s/%s", u.baseURL, key)
}

// Delete deletes an object from S3
func (u *S3Uploader) Delete(ctx context.Context, key string) error {
	_, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// CheckBucketAccess verifies that we can access the S3 bucket
func (u *S3Uploader) CheckBucketAccess(ctx context.Context) error {
	_, err := u.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(u.bucket),
	})
	if err != nil {
		return fmt.Errorf("cannot access S3 bucket %s: %w", u.bucket, err)
	}
	return nil
}

// ImageKey builds images/{year}/{month}/{userID}/{fileID}{ext}
func ImageKey(at time.Time, userID, fileID, ext string) string {
	return fmt.Sprintf("images/%d/%02d/%s/%s%s", at.Year(), at.Month(), userID, fileID, ext)
}

// KeyOwner returns the user a storage key was issued to, or "" if the key is malformed
func KeyOwner(key string) string {
	parts := strings.Split(key, "/")
	if len(parts) != 5 || parts[0] != "images" {
		return ""
	}
	return parts[3]
}

func getContentTypeForImage(extension string) string {
	switch strings.ToLower(extension) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	default:
		return "application/octet-stream"
	}
}

func extensionForContentType(contentType string) string {
	switch strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0])) {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/heic":
		return ".heic"
	default:
		return ".jpg"
	}
}
