// Package storage defines the upload file store used by the project schema.
// Stores are keyed by the relative path persisted on each upload row.
package storage

import "errors"

// ErrFileNotFound is returned when a stored file is not found
var ErrFileNotFound = errors.New("file not found")

// Store interface defines the methods that any upload store implementation
// must provide
type Store interface {
	// Save writes content under the given relative path.
	Save(name string, content []byte) error
	// Open reads the content stored under the given relative path.
	Open(name string) ([]byte, error)
	// Remove deletes the stored file. A missing file is an error.
	Remove(name string) error
	// RemoveIfExists deletes the stored file if present. A missing file is
	// not an error.
	RemoveIfExists(name string) error
	// Exists reports whether a file is stored under the given relative path.
	Exists(name string) (bool, error)
}
