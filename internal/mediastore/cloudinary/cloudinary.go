package cloudinary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/frahmantamala/stagiaire-management/internal"
)

const avatarTransformation = "c_fill,g_face,h_256,w_256"

var ErrNotConfigured = errors.New("cloudinary configuration is missing")

// Store uploads stagiaire avatars to Cloudinary.
type Store struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewStore(cfg internal.CloudinaryConfig) (*Store, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &Store{cld: cld, folder: cfg.Folder}, nil
}

// UploadAvatar stores file under key, cropped around the face, and returns its HTTPS URL.
func (s *Store) UploadAvatar(ctx context.Context, key string, file io.Reader) (string, error) {
	overwrite := true
	result, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:       PublicID(key),
		Folder:         s.folder,
		Overwrite:      &overwrite,
		ResourceType:   "image",
		Transformation: avatarTransformation,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected upload: %s", result.Error.Message)
	}
	return result.SecureURL, nil
}

// PublicID strips the file extension; Cloudinary derives the format from the content.
func PublicID(key string) string {
	return strings.TrimSuffix(key, path.Ext(key))
}
