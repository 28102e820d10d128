// internal/cache/lazy.go
//
// Invalidate-on-event values.
//
// Context
// -------
// Some theme lookups (which footer areas hold widgets, whether the blog
// uses more than one category) are expensive next to a single page render
// but change only when content or widgets change.  A Lazy value computes
// on first read, keeps the result until Invalidate, and recomputes on the
// next read.  Nothing expires on a timer and there is no size bound.
//
// Concurrency
// -----------
// Values live in a go-cache store with NoExpiration.  Concurrent misses for
// the same value are collapsed with singleflight, so exactly one goroutine
// runs the loader and every waiter observes its result.  A failed load is
// returned to the waiters but never stored.
//
// Each key carries a generation that Invalidate bumps.  A load stores its
// result only if the generation it started under is still current, and
// the generation is part of the singleflight key, so a read issued after
// an invalidation never joins a load that began before it.
package cache

import (
	"context"
	"strconv"
	"sync"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/primer/internal/metrics"
)

// Store holds every Lazy value of a process.  The zero value is not usable;
// construct with NewStore.
type Store struct {
	c   *gocache.Cache
	sfg singleflight.Group

	mu   sync.Mutex
	gens map[string]uint64
}

// NewStore returns an empty store without a janitor goroutine.
func NewStore() *Store {
	return &Store{c: gocache.New(gocache.NoExpiration, 0), gens: map[string]uint64{}}
}

func (s *Store) generation(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[key]
}

// setIf stores v under key unless key was invalidated after gen was read.
func (s *Store) setIf(key string, gen uint64, v any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gens[key] != gen {
		return false
	}
	s.c.Set(key, v, gocache.NoExpiration)
	return true
}

func (s *Store) invalidate(key string) {
	s.mu.Lock()
	s.gens[key]++
	s.c.Delete(key)
	s.mu.Unlock()
}

// Loader computes the value on a miss.
type Loader[T any] func(ctx context.Context) (T, error)

// Lazy is one named value inside a Store.
type Lazy[T any] struct {
	store *Store
	key   string
	load  Loader[T]
}

// NewLazy binds a loader to key inside s.
func NewLazy[T any](s *Store, key string, load Loader[T]) *Lazy[T] {
	return &Lazy[T]{store: s, key: key, load: load}
}

// Get returns the cached value, loading it if absent.
func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	if v, ok := l.cached(); ok {
		metrics.CacheLookupsTotal.WithLabelValues(l.key, "hit").Inc()
		return v, nil
	}
	metrics.CacheLookupsTotal.WithLabelValues(l.key, "miss").Inc()

	gen := l.store.generation(l.key)
	flight := l.key + "@" + strconv.FormatUint(gen, 10)
	v, err, _ := l.store.sfg.Do(flight, func() (any, error) {
		// Double-check after the singleflight barrier.
		if v, ok := l.cached(); ok {
			return v, nil
		}
		v, err := l.load(ctx)
		if err != nil {
			return nil, err
		}
		// Invalidated mid-load: hand v to this flight's waiters, keep
		// it out of the store.
		l.store.setIf(l.key, gen, v)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate drops the cached value.  The next Get reloads.
func (l *Lazy[T]) Invalidate() {
	l.store.invalidate(l.key)
	metrics.CacheInvalidationsTotal.WithLabelValues(l.key).Inc()
}

// Key returns the store key.
func (l *Lazy[T]) Key() string { return l.key }

func (l *Lazy[T]) cached() (T, bool) {
	var zero T
	raw, ok := l.store.c.Get(l.key)
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return v, true
}
