package kvstore

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps documents in process memory. Used for development and tests.
type MemoryStore struct {
	cache *cache.Cache
}

func NewMemoryStore() *MemoryStore {
	// entries live forever unless a ttl is given; expired ones are purged every 10 minutes
	c := cache.New(cache.NoExpiration, 10*time.Minute)
	return &MemoryStore{
		cache: c,
	}
}

func expiration(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return cache.NoExpiration
	}
	return ttl
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if x, found := s.cache.Get(key); found {
		raw := x.([]byte)
		out := make([]byte, len(raw))
		copy(out, raw)
		return out, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	s.cache.Set(key, stored, expiration(ttl))
	return nil
}

func (s *MemoryStore) PutIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	stored := make([]byte, len(value))
	copy(stored, value)
	// Add fails when a live item already exists
	if err := s.cache.Add(key, stored, expiration(ttl)); err != nil {
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
