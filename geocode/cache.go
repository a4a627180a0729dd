// Copyright 2025 The Refuge Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"sync"

	"github.com/openrefuge/refuge/utils/textutils"
)

// Cache is an advisory read-through cache of resolved coordinates keyed by
// normalized location text. A miss simply re-resolves; implementations may
// drop entries at any time.
type Cache interface {
	Lookup(key string) (*Result, bool)
	Store(key string, result *Result)
}

// CacheKey normalizes location text for cache lookups.
func CacheKey(location string) string {
	return textutils.LowerASCIIFolding(location)
}

// MemoryCache is a process-local Cache guarded by a mutex.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*Result
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]*Result)}
}

// Lookup returns the cached result for key, if present.
func (c *MemoryCache) Lookup(key string) (*Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result, ok := c.entries[key]

	return result, ok
}

// Store records a resolved coordinate for key.
func (c *MemoryCache) Store(key string, result *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = result
}
