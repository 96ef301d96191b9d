package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"saif-gifts/models"
)

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ValidateImage checks an uploaded product image before it is sent to the
// image store.
func ValidateImage(fileHeader *multipart.FileHeader, maxSize int64) error {
	if fileHeader == nil {
		return models.NewValidationError("image", "file is required")
	}
	if fileHeader.Size > maxSize {
		return models.NewValidationError("image", fmt.Sprintf("file size exceeds maximum allowed size of %d bytes", maxSize))
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedImageExtensions[ext] {
		return models.NewValidationError("image", "invalid file type. Only jpg, jpeg, png, gif, webp allowed")
	}
	return nil
}

// SanitizeFilename turns an upload name into something safe to use inside an
// image public id.
func SanitizeFilename(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	base = strings.ReplaceAll(strings.TrimSpace(base), " ", "_")
	if len(base) > 100 {
		base = base[:100]
	}
	if base == "" || base == "." {
		base = "image"
	}
	return base
}
