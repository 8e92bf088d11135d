package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

var errNilLoader = errors.New("cache: loader is required")

type item struct {
	value any
	// zero deadline means the item never expires
	deadline time.Time
}

func (i item) expired(now time.Time) bool {
	return !i.deadline.IsZero() && !now.Before(i.deadline)
}

// Stats is a point-in-time view of the store used by the health endpoint.
type Stats struct {
	Entries int
	Hits    uint64
	Misses  uint64
}

// Store is an in-process TTL cache. Concurrent loads of the same key share a
// single call to the loader. A non-positive ttl keeps items until deleted.
type Store struct {
	mu     sync.RWMutex
	items  map[string]item
	ttl    time.Duration
	group  singleflight.Group
	hits   atomic.Uint64
	misses atomic.Uint64
	clock  func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		items: make(map[string]item),
		ttl:   ttl,
		clock: time.Now,
	}
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	s.mu.RLock()
	it, found := s.items[key]
	s.mu.RUnlock()

	switch {
	case !found:
	case it.expired(s.clock()):
		s.evict(key, it.deadline)
	default:
		s.hits.Add(1)
		return it.value, true
	}
	s.misses.Add(1)
	return nil, false
}

// evict removes key only if it still holds the expired item, so a value
// stored by a concurrent Set survives.
func (s *Store) evict(key string, deadline time.Time) {
	s.mu.Lock()
	if cur, ok := s.items[key]; ok && cur.deadline.Equal(deadline) {
		delete(s.items, key)
	}
	s.mu.Unlock()
}

func (s *Store) Set(_ context.Context, key string, value any) {
	if key == "" {
		return
	}

	it := item{value: value}
	if s.ttl > 0 {
		it.deadline = s.clock().Add(s.ttl)
	}

	s.mu.Lock()
	s.items[key] = it
	s.mu.Unlock()
}

func (s *Store) Delete(_ context.Context, key string) {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	s.group.Forget(key)
}

// DeletePrefix drops every key starting with prefix. An empty prefix is a
// no-op; use Purge to clear the store.
func (s *Store) DeletePrefix(_ context.Context, prefix string) {
	if prefix == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.items {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		delete(s.items, key)
		s.group.Forget(key)
	}
}

// Purge drops every item and resets the counters.
func (s *Store) Purge() {
	s.mu.Lock()
	clear(s.items)
	s.mu.Unlock()
	s.hits.Store(0)
	s.misses.Store(0)
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	n := len(s.items)
	s.mu.RUnlock()

	return Stats{Entries: n, Hits: s.hits.Load(), Misses: s.misses.Load()}
}

// GetOrLoad returns the cached value for key or stores what loader returns.
// Loader errors are not cached. An empty key bypasses the cache.
func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, errNilLoader
	}
	if key == "" {
		return loader(ctx)
	}
	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	value, err, _ := s.group.Do(key, func() (any, error) {
		if value, ok := s.Get(ctx, key); ok {
			return value, nil
		}
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		s.Set(ctx, key, value)
		return value, nil
	})
	return value, err
}

// Load is the typed form of GetOrLoad. A nil store calls loader directly.
func Load[T any](ctx context.Context, s *Store, key string, loader func(context.Context) (T, error)) (T, error) {
	if s == nil {
		return loader(ctx)
	}

	value, err := s.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return loader(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, _ := value.(T)
	return typed, nil
}
