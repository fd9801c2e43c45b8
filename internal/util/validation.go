package util

import (
	"errors"
	"mime"
	"path/filepath"
	"strings"
)

// MaxImageBytes is the upload limit for photos
const MaxImageBytes = 5 << 20

var imageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".heic": "image/heic",
}

// IsImageContentType reports whether contentType is an image/* media type
func IsImageContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "image/")
}

// ValidateImageUpload checks the rules applied to every uploaded photo
func ValidateImageUpload(filename, contentType string, size int64) error {
	if !IsImageContentType(contentType) {
		return errors.New("please select an image file")
	}
	if size > MaxImageBytes {
		return errors.New("image must be smaller than 5MB")
	}
	if size <= 0 {
		return errors.New("image is empty")
	}
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		if _, ok := imageExtensions[ext]; !ok {
			return errors.New("unsupported image format")
		}
	}
	return nil
}

