package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lunori/pkg/errors"
)

// imageExtensions is the allowed set of uploadable image formats
var imageExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

// IsAllowedImageExtension reports whether ext is an accepted image format
func IsAllowedImageExtension(ext string) bool {
	for _, allowed := range imageExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// ImageStore manages uploaded image blobs on disk
type ImageStore struct {
	dataDir string
}

// NewImageStore creates the store and its directory
func NewImageStore(dataDir string) (*ImageStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create images directory %s: %w", dataDir, err)
	}
	return &ImageStore{dataDir: dataDir}, nil
}

// Save writes an image blob under the given name and returns its path.
// The extension must come pre-validated by the caller.
func (s *ImageStore) Save(name string, data []byte) (string, error) {
	path := filepath.Join(s.dataDir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write image %s: %w", name, err)
	}
	return path, nil
}

// HasStem reports whether any stored image uses this filename stem
func (s *ImageStore) HasStem(stem string) bool {
	for _, ext := range imageExtensions {
		if _, err := os.Stat(filepath.Join(s.dataDir, stem+ext)); err == nil {
			return true
		}
	}
	return false
}

// Resolve locates a stored image by basename
func (s *ImageStore) Resolve(filename string) (string, error) {
	name := filepath.Base(filename)
	path := filepath.Join(s.dataDir, name)
	if _, err := os.Stat(path); err != nil {
		return "", errors.NotFound("IMAGE_NOT_FOUND", "image %s not found", name)
	}
	return path, nil
}

// NormalizeImageExtension lowercases an uploaded image extension
func NormalizeImageExtension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}
