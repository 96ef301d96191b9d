package libs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CloudinaryStore keeps product images. Callers hold on to the returned file
// id and ask for a preview URL when rendering.
type CloudinaryStore struct {
	cld     *cloudinary.Cloudinary
	folder  string
	timeout time.Duration
	log     *zap.Logger
}

type CloudinaryConfig struct {
	URL       string
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// NewCloudinaryStore prefers the separate credentials and falls back to
// CLOUDINARY_URL.
func NewCloudinaryStore(cfg CloudinaryConfig, log *zap.Logger) (*CloudinaryStore, error) {
	var (
		cld *cloudinary.Cloudinary
		err error
	)
	switch {
	case cfg.CloudName != "" && cfg.APIKey != "" && cfg.APISecret != "":
		cld, err = cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	case cfg.URL != "":
		cld, err = cloudinary.NewFromURL(cfg.URL)
	default:
		return nil, errors.New("cloudinary credentials not configured")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true

	return &CloudinaryStore{cld: cld, folder: cfg.Folder, timeout: 30 * time.Second, log: log}, nil
}

func (s *CloudinaryStore) Upload(ctx context.Context, file io.Reader, name string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	publicID := fmt.Sprintf("%s_%s", name, uuid.NewString()[:8])
	resp, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:       publicID,
		Folder:         s.folder,
		ResourceType:   "image",
		Transformation: "q_auto,f_auto",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to cloudinary: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected upload: %s", resp.Error.Message)
	}

	s.log.Info("image uploaded", zap.String("public_id", resp.PublicID))
	return resp.PublicID, nil
}

func (s *CloudinaryStore) PreviewURL(fileID string) (string, error) {
	if strings.TrimSpace(fileID) == "" {
		return "", nil
	}
	img, err := s.cld.Image(fileID)
	if err != nil {
		return "", fmt.Errorf("build image asset: %w", err)
	}
	img.Transformation = "c_fill,w_600,h_600/q_auto/f_auto"
	return img.String()
}

func (s *CloudinaryStore) Delete(ctx context.Context, fileID string) error {
	if fileID == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     fileID,
		ResourceType: "image",
		Invalidate:   api.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from cloudinary: %w", err)
	}
	if result.Result != "ok" && result.Result != "not found" {
		return fmt.Errorf("cloudinary deletion failed: %s", result.Result)
	}
	return nil
}
