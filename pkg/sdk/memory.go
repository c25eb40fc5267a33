package sdk

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// memoryRecord pairs a stored result with its expiry time.
type memoryRecord struct {
	result    map[string]any
	expiresAt time.Time
}

// MemoryStore is an in-process IdempotencyStore bounded by an LRU cache.
// Intended for tests and single-process hosts without Redis.
type MemoryStore struct {
	cache *lru.Cache[string, memoryRecord]
	now   func() time.Time
}

// NewMemoryStore creates a store holding at most size records.
func NewMemoryStore(size int) (*MemoryStore, error) {
	cache, err := lru.New[string, memoryRecord](size)
	if err != nil {
		return nil, err
	}
	return &MemoryStore{cache: cache, now: time.Now}, nil
}

func (s *MemoryStore) Check(_ context.Context, key string) (map[string]any, bool, error) {
	rec, ok := s.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	if s.now().After(rec.expiresAt) {
		s.cache.Remove(key)
		return nil, false, nil
	}
	return rec.result, true, nil
}

func (s *MemoryStore) Store(_ context.Context, key string, result map[string]any, ttl time.Duration) error {
	s.cache.Add(key, memoryRecord{result: result, expiresAt: s.now().Add(ttl)})
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.cache.Remove(key)
	return nil
}

// Len reports how many records are cached, including expired ones not yet
// evicted.
func (s *MemoryStore) Len() int {
	return s.cache.Len()
}
