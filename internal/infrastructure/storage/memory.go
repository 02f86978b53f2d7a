// Package storage provides object storage implementations for product photos.
package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	catalogapp "github.com/ecom/backend/internal/application/catalog"
)

// MemoryObjectStorage is an in-memory implementation of ObjectStorageService.
// Use this for development and tests until a real storage backend is configured.
type MemoryObjectStorage struct {
	mu      sync.RWMutex
	objects map[string]memoryObject

	// BaseURL is the base URL for generated download URLs
	BaseURL string
}

type memoryObject struct {
	data        []byte
	contentType string
}

// NewMemoryObjectStorage creates a new MemoryObjectStorage
func NewMemoryObjectStorage() *MemoryObjectStorage {
	return &MemoryObjectStorage{
		objects: make(map[string]memoryObject),
		BaseURL: "https://storage.example.com",
	}
}

// Ensure MemoryObjectStorage implements ObjectStorageService
var _ catalogapp.ObjectStorageService = (*MemoryObjectStorage)(nil)

// Upload stores photo bytes under the given key
func (s *MemoryObjectStorage) Upload(_ context.Context, storageKey string, data []byte, contentType string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[storageKey] = memoryObject{data: buf, contentType: contentType}
	return nil
}

// GenerateDownloadURL generates a fake download URL for the stored object
func (s *MemoryObjectStorage) GenerateDownloadURL(
	_ context.Context,
	storageKey string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}

	expiresAt := time.Now().Add(expiresIn)
	url := s.BaseURL + "/download/" + storageKey + "?expires=" + expiresAt.Format(time.RFC3339)
	return url, expiresAt, nil
}

// DeleteObject removes an object from memory
func (s *MemoryObjectStorage) DeleteObject(_ context.Context, storageKey string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, storageKey)
	return nil
}

// ObjectExists reports whether an object is stored under the key
func (s *MemoryObjectStorage) ObjectExists(_ context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errors.New("storage key is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[storageKey]
	return ok, nil
}

// Get returns the stored bytes and content type for a key, for test assertions
func (s *MemoryObjectStorage) Get(storageKey string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[storageKey]
	if !ok {
		return nil, "", false
	}
	return obj.data, obj.contentType, true
}
