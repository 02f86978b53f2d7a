package catalog

import (
	"context"
	"time"
)

// ObjectStorageService abstracts object storage for product photos.
// Implemented by the S3 adapter in infrastructure/storage.
type ObjectStorageService interface {
	// Upload stores an object under the given key
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error

	// GenerateDownloadURL returns a presigned GET URL and its expiry time
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject removes an object. Deleting a missing object is not an error.
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks whether an object is present
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// BrowseCache caches serialized storefront browse responses.
// Implemented by the Redis adapter in infrastructure/cache; an in-memory
// implementation backs tests.
type BrowseCache interface {
	// Get returns the cached payload and whether the key was present
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a payload under the key with the given TTL
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error

	// Invalidate drops every cached browse entry
	Invalidate(ctx context.Context) error
}
