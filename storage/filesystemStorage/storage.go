package filesystemStorage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"package-index/storage"
)

// ErrPathEscapesRoot is returned when a relative path would resolve outside
// the upload root
var ErrPathEscapesRoot = errors.New("path escapes upload root")

// Storage implements the store interface on a local directory. All stored
// files live under the configured upload root.
type Storage struct {
	root string
}

var _ storage.Store = (*Storage)(nil)

// New creates a new filesystem-based store rooted at the given directory
func New(root string) (*Storage, error) {
	//nolint:gosec,mnd // Directory permissions 0755 are intentional
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload root: %w", err)
	}

	return &Storage{root: root}, nil
}

// Root returns the configured upload root directory.
func (s *Storage) Root() string {
	return s.root
}

// UploadPath joins the upload root with a stored relative path. The join is
// traversal-safe: a relative path that would resolve outside the root is
// rejected, even if the row carrying it was corrupted or maliciously set.
func (s *Storage) UploadPath(name string) (string, error) {
	if !filepath.IsLocal(name) {
		return "", fmt.Errorf("%w: %q", ErrPathEscapesRoot, name)
	}

	return filepath.Join(s.root, name), nil
}

// Save writes content under the given relative path
func (s *Storage) Save(name string, content []byte) error {
	path, err := s.UploadPath(name)
	if err != nil {
		return err
	}

	//nolint:gosec,mnd // Directory permissions 0755 are intentional
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	//nolint:mnd // filemode constant
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// Open reads the content stored under the given relative path
func (s *Storage) Open(name string) ([]byte, error) {
	path, err := s.UploadPath(name)
	if err != nil {
		return nil, err
	}

	//nolint:gosec // G304: path was validated by UploadPath
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrFileNotFound
		}

		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return content, nil
}

// Remove deletes the stored file. A missing file is an error that the caller
// has to deal with.
func (s *Storage) Remove(name string) error {
	path, err := s.UploadPath(name)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove file: %w", err)
	}

	return nil
}

// RemoveIfExists deletes the stored file if present; a missing file is
// silently skipped.
func (s *Storage) RemoveIfExists(name string) error {
	path, err := s.UploadPath(name)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("failed to remove file: %w", err)
	}

	return nil
}

// Exists reports whether a file is stored under the given relative path
func (s *Storage) Exists(name string) (bool, error) {
	path, err := s.UploadPath(name)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, fmt.Errorf("failed to stat file: %w", err)
	}

	return true, nil
}
