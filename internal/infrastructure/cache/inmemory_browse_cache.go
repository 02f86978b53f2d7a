package cache

import (
	"context"
	"sync"
	"time"

	catalogapp "github.com/ecom/backend/internal/application/catalog"
)

// InMemoryBrowseCache is an in-memory implementation of BrowseCache for
// single-instance deployments and tests.
type InMemoryBrowseCache struct {
	mu      sync.RWMutex
	entries map[string]browseEntry
}

type browseEntry struct {
	payload   []byte
	expiresAt time.Time
}

// NewInMemoryBrowseCache creates a new in-memory browse cache
func NewInMemoryBrowseCache() *InMemoryBrowseCache {
	return &InMemoryBrowseCache{
		entries: make(map[string]browseEntry),
	}
}

// Get returns the cached payload for a browse key, or found=false on a miss
func (c *InMemoryBrowseCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return entry.payload, true, nil
}

// Set stores a payload under a browse key with a TTL
func (c *InMemoryBrowseCache) Set(_ context.Context, key string, payload []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = browseEntry{
		payload:   payload,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Invalidate drops every cached browse entry
func (c *InMemoryBrowseCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]browseEntry)
	return nil
}

// Ensure InMemoryBrowseCache implements BrowseCache
var _ catalogapp.BrowseCache = (*InMemoryBrowseCache)(nil)
