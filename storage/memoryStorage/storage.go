package memoryStorage

import (
	"sync"

	"package-index/storage"
)

// MemoryStorage implements the store interface using in-memory storage.
// Used only for testing.
type MemoryStorage struct {
	mu    sync.RWMutex
	files map[string][]byte
}

var _ storage.Store = (*MemoryStorage)(nil)

// New creates a new memory-based store
func New() *MemoryStorage {
	return &MemoryStorage{
		files: make(map[string][]byte),
	}
}

// Save writes content under the given relative path
func (s *MemoryStorage) Save(name string, content []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(content))
	copy(stored, content)
	s.files[name] = stored

	return nil
}

// Open reads the content stored under the given relative path
func (s *MemoryStorage) Open(name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.files[name]
	if !ok {
		return nil, storage.ErrFileNotFound
	}

	result := make([]byte, len(content))
	copy(result, content)

	return result, nil
}

// Remove deletes the stored file. A missing file is an error.
func (s *MemoryStorage) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[name]; !ok {
		return storage.ErrFileNotFound
	}

	delete(s.files, name)

	return nil
}

// RemoveIfExists deletes the stored file if present
func (s *MemoryStorage) RemoveIfExists(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.files, name)

	return nil
}

// Exists reports whether a file is stored under the given relative path
func (s *MemoryStorage) Exists(name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.files[name]

	return ok, nil
}

// Count returns the number of stored files
func (s *MemoryStorage) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.files)
}
