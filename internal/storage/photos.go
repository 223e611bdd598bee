package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"tmarket-bot/internal/image"
)

// PhotoStore persists seller photos on local disk and hands back an opaque
// handle (the file path) that drafts and listings carry around.
type PhotoStore struct {
	dir       string
	processor *image.Processor
}

// NewPhotoStore creates a photo store rooted at dir, creating it if needed
func NewPhotoStore(dir string, processor *image.Processor) (*PhotoStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create photos directory: %w", err)
	}
	return &PhotoStore{
		dir:       dir,
		processor: processor,
	}, nil
}

// Store re-encodes photo bytes as JPEG and writes them under a fresh
// UUID name, returning the handle
func (s *PhotoStore) Store(data []byte) (string, error) {
	jpg, err := s.processor.ReencodeJPEG(data)
	if err != nil {
		// Unsupported source format: store the original bytes as-is
		jpg = data
	}

	handle := filepath.Join(s.dir, uuid.NewString()+".jpg")
	if err := os.WriteFile(handle, jpg, 0644); err != nil {
		return "", fmt.Errorf("write photo: %w", err)
	}
	return handle, nil
}
