package cache

import (
	"context"
	"sync"
	"time"

	"github.com/codesweep/codesweep/internal/finding"
)

// MemoryCache implements Cache using in-memory storage.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]Entry
}

// NewMemoryCache creates a new in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		items: make(map[string]Entry),
	}
}

// Get retrieves cached findings.
func (m *MemoryCache) Get(_ context.Context, key string) ([]finding.Finding, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.items[key]
	if !ok {
		return nil, false
	}

	if entry.IsExpired() {
		return nil, false
	}

	return entry.Findings, true
}

// Set stores findings with the given TTL.
func (m *MemoryCache) Set(_ context.Context, key string, findings []finding.Finding, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = Entry{
		Findings:  append([]finding.Finding(nil), findings...),
		ExpiresAt: time.Now().Add(ttl),
	}
}

// Delete removes a cached result.
func (m *MemoryCache) Delete(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key)
}

// Clear removes all cached results.
func (m *MemoryCache) Clear(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = make(map[string]Entry)
}

// Len returns the number of items in the cache (including expired).
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.items)
}

// Cleanup removes expired entries.
func (m *MemoryCache) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for key, entry := range m.items {
		if now.After(entry.ExpiresAt) {
			delete(m.items, key)
		}
	}
}

// Ensure MemoryCache implements Cache interface.
var _ Cache = (*MemoryCache)(nil)
