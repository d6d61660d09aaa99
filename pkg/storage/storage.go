// Package storage saves uploaded profile pictures on local disk.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mediqhq/mediq_backend/config"
	"github.com/mediqhq/mediq_backend/pkg/util/ref"
)

var (
	ErrUnsupportedType = errors.New("storage: unsupported file type")
	ErrTooLarge        = errors.New("storage: file exceeds size limit")
)

// allowedExtensions are the picture formats accepted for profile uploads.
var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

// Store writes uploads under a root directory with one subdirectory per
// role ("patients", "doctors"). Filenames are random hex so originals never
// collide or leak.
type Store struct {
	root     string
	maxBytes int64
}

func New(cfg config.StorageConfig) (*Store, error) {
	root := cfg.UploadDir
	if root == "" {
		root = "uploads"
	}

	for _, sub := range []string{"patients", "doctors"} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0o755); err != nil {
			return nil, fmt.Errorf("storage: create dir: %w", err)
		}
	}

	maxMB := cfg.MaxUploadMB
	if maxMB <= 0 {
		maxMB = 5
	}

	return &Store{root: root, maxBytes: int64(maxMB) << 20}, nil
}

// MaxBytes returns the per-file upload limit.
func (s *Store) MaxBytes() int64 { return s.maxBytes }

// Save writes data into the given subdirectory and returns the stored
// filename. originalName is only used for its extension.
func (s *Store) Save(subdir, originalName string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", ErrUnsupportedType
	}
	if int64(len(data)) > s.maxBytes {
		return "", ErrTooLarge
	}

	token, err := ref.SecureToken(8)
	if err != nil {
		return "", fmt.Errorf("storage: generate name: %w", err)
	}
	name := token + ext

	if err := os.WriteFile(filepath.Join(s.root, subdir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	return name, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *Store) Remove(subdir, name string) error {
	// Reject anything that could escape the subdir.
	if name == "" || name != filepath.Base(name) {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, subdir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: remove file: %w", err)
	}
	return nil
}

// Path returns the on-disk path for a stored file.
func (s *Store) Path(subdir, name string) string {
	return filepath.Join(s.root, subdir, filepath.Base(name))
}
