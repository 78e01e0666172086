// Package cache provides a small in-process TTL store used to keep recent
// analysis results addressable by submission ID.
package cache

import (
	"sync"
	"time"
)

// ResultStore keeps values in memory with per-entry expiry and a bounded
// entry count. When full, the entry closest to expiry is evicted.
type ResultStore struct {
	mu         sync.RWMutex
	data       map[string]entry
	defaultTTL time.Duration
	maxEntries int
}

type entry struct {
	value     any
	expiresAt time.Time
}

// NewResultStore creates a store; ttl <= 0 means entries never expire and
// maxEntries <= 0 means unbounded.
func NewResultStore(ttl time.Duration, maxEntries int) *ResultStore {
	return &ResultStore{
		data:       make(map[string]entry),
		defaultTTL: ttl,
		maxEntries: maxEntries,
	}
}

// Put stores a value under the key with the default TTL.
func (s *ResultStore) Put(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxEntries > 0 && len(s.data) >= s.maxEntries {
		if _, exists := s.data[key]; !exists {
			s.evictOldestLocked()
		}
	}

	var expires time.Time
	if s.defaultTTL > 0 {
		expires = time.Now().Add(s.defaultTTL)
	}
	s.data[key] = entry{value: value, expiresAt: expires}
}

// Get retrieves a value if present and not expired.
func (s *ResultStore) Get(key string) (any, bool) {
	s.mu.RLock()
	it, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !it.expiresAt.IsZero() && time.Now().After(it.expiresAt) {
		s.mu.Lock()
		delete(s.data, key)
		s.mu.Unlock()
		return nil, false
	}
	return it.value, true
}

// Delete removes an entry.
func (s *ResultStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

// Len reports the number of stored entries, including any not yet swept.
func (s *ResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *ResultStore) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	first := true
	for key, it := range s.data {
		if first || it.expiresAt.Before(oldest) {
			oldestKey, oldest = key, it.expiresAt
			first = false
		}
	}
	if !first {
		delete(s.data, oldestKey)
	}
}
