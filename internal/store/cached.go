package store

import (
	"bytes"
	"context"
	"sync"

	"github.com/patrickmn/go-cache"
)

// cachedStore serves reads from an in-process cache and invalidates a key on
// every write to it. Each key carries a write version so a read that raced a
// write never fills the cache with the value it read before the write.
type cachedStore struct {
	next  Store
	cache *cache.Cache

	mu       sync.Mutex
	versions map[string]uint64
}

// NewCachedStore wraps next with a read-through cache.
func NewCachedStore(next Store, c *cache.Cache) Store {
	return &cachedStore{next: next, cache: c, versions: map[string]uint64{}}
}

func (s *cachedStore) version(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.versions[key]
}

func (s *cachedStore) fill(key string, seen uint64, val []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.versions[key] != seen {
		return
	}
	s.cache.SetDefault(key, bytes.Clone(val))
}

func (s *cachedStore) invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.versions[key]++
	s.cache.Delete(key)
}

func (s *cachedStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if v, ok := s.cache.Get(key); ok {
		return bytes.Clone(v.([]byte)), true, nil
	}
	seen := s.version(key)
	val, found, err := s.next.Get(ctx, key)
	if err != nil || !found {
		return val, found, err
	}
	s.fill(key, seen, val)
	return val, true, nil
}

func (s *cachedStore) Set(ctx context.Context, key string, value []byte) error {
	defer s.invalidate(key)
	return s.next.Set(ctx, key, value)
}

func (s *cachedStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	defer s.invalidate(key)
	return s.next.Update(ctx, key, fn)
}

func (s *cachedStore) Delete(ctx context.Context, key string) error {
	defer s.invalidate(key)
	return s.next.Delete(ctx, key)
}
