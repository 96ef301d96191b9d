package utils

import (
	"mime/multipart"
	"testing"

	"saif-gifts/models"

	"github.com/stretchr/testify/assert"
)

func TestValidateImage(t *testing.T) {
	tests := []struct {
		name    string
		header  *multipart.FileHeader
		wantErr bool
	}{
		{name: "png ok", header: &multipart.FileHeader{Filename: "mug.png", Size: 1024}},
		{name: "upper case ext", header: &multipart.FileHeader{Filename: "MUG.JPG", Size: 1024}},
		{name: "too large", header: &multipart.FileHeader{Filename: "mug.png", Size: 10 << 20}, wantErr: true},
		{name: "not an image", header: &multipart.FileHeader{Filename: "mug.exe", Size: 10}, wantErr: true},
		{name: "missing", header: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImage(tt.header, 5<<20)
			if tt.wantErr {
				assert.True(t, models.IsValidation(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "brass_lantern", SanitizeFilename("brass lantern.png"))
	assert.Equal(t, "image", SanitizeFilename(".png"))
	assert.Equal(t, "x", SanitizeFilename("../../x.jpg"))
}
