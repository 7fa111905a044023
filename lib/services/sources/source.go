package sources

import (
	"context"
	"sync"

	"threepole/lib/utils/logging"
)

// Cache is a fetch-once lookup keyed by a comparable fingerprint.
type Cache[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, error)
}

type FetchFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Source memoizes successful fetches for the life of the process.
// The lock is not held while fetching, so concurrent misses on the same key
// each fetch. Failed fetches are never cached.
type Source[K comparable, V any] struct {
	name   string
	mu     sync.RWMutex
	cache  map[K]V
	fetch  FetchFunc[K, V]
	clone  func(V) V
	logger logging.Logger
}

// New creates a Source. clone copies values on the way in and out so callers
// cannot mutate cached entries; nil means values are copied by assignment.
func New[K comparable, V any](name string, fetch FetchFunc[K, V], clone func(V) V) *Source[K, V] {
	if clone == nil {
		clone = func(v V) V { return v }
	}
	return &Source[K, V]{
		name:   name,
		cache:  make(map[K]V),
		fetch:  fetch,
		clone:  clone,
		logger: logging.NewLogger("SOURCE"),
	}
}

func (s *Source[K, V]) Get(ctx context.Context, key K) (V, error) {
	// Try cache first
	s.mu.RLock()
	cached, found := s.cache[key]
	s.mu.RUnlock()
	if found {
		return s.clone(cached), nil
	}

	s.logger.Debug("CACHE_MISS", map[string]any{
		logging.CACHE: s.name,
		logging.KEY:   key,
	})

	value, err := s.fetch(ctx, key)
	if err != nil {
		var zero V
		return zero, err
	}

	s.mu.Lock()
	s.cache[key] = s.clone(value)
	s.mu.Unlock()

	return s.clone(value), nil
}

// Update patches an existing entry in place. It reports false when key is not cached.
func (s *Source[K, V]) Update(key K, fn func(V) V) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, found := s.cache[key]
	if !found {
		return false
	}
	s.cache[key] = s.clone(fn(value))
	return true
}

func (s *Source[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}
