package recent

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// ErrNotFound is returned by Delete when the key is not present.
var ErrNotFound = errors.New("recent: key not found")

// ErrInvalidCapacity is returned by New when capacity is not positive.
var ErrInvalidCapacity = errors.New("recent: capacity must be positive")

// ErrIterationUnsupported is returned by Range. Use Keys for a snapshot.
var ErrIterationUnsupported = fmt.Errorf("recent: iteration is not thread-safe, use Keys: %w", errors.ErrUnsupported)

// Option configures a Store.
type Option[K comparable, V any] func(*Store[K, V])

// WithEvictCallback registers fn to be called for every entry dropped
// because the store was full. It is not called for Delete or Clear.
//
// fn runs after the store lock is released, so it may use the store.
func WithEvictCallback[K comparable, V any](fn func(key K, value V)) Option[K, V] {
	return func(s *Store[K, V]) {
		s.onEvict = fn
	}
}

// Store is a capacity-bounded map that drops its least recently used
// entry when a write would exceed capacity. Reads count as use.
//
// All methods are safe for concurrent use. The zero value is not usable;
// create stores with New.
type Store[K comparable, V any] struct {
	mu       sync.Mutex
	lru      *simplelru.LRU[K, V]
	capacity int
	onEvict  func(K, V)
}

// New creates a Store holding at most capacity entries.
func New[K comparable, V any](capacity int, opts ...Option[K, V]) (*Store[K, V], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}

	// Evictions are driven by Store itself, so the inner LRU never reaches
	// its own limit and needs no callback.
	inner, err := simplelru.NewLRU[K, V](capacity, nil)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}

	s := &Store[K, V]{
		lru:      inner,
		capacity: capacity,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// MustNew is like New but panics if capacity is not positive.
func MustNew[K comparable, V any](capacity int, opts ...Option[K, V]) *Store[K, V] {
	s, err := New(capacity, opts...)
	if err != nil {
		panic(err)
	}

	return s
}

// Cap returns the capacity the store was created with.
func (s *Store[K, V]) Cap() int {
	return s.capacity
}

// Get returns the value for key and marks it as most recently used.
func (s *Store[K, V]) Get(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lru.Get(key)
}

// GetOrDefault returns the value for key, marking it as most recently used.
// If key is absent, def is returned and the store is left untouched.
func (s *Store[K, V]) GetOrDefault(key K, def V) V {
	if v, ok := s.Get(key); ok {
		return v
	}

	return def
}

// Set stores value under key as the most recently used entry.
// It reports whether another entry was evicted to make room.
func (s *Store[K, V]) Set(key K, value V) bool {
	_, ev := s.Update(key, func(V, bool) V { return value })

	return ev != nil
}

// Update atomically replaces the value for key with fn(old, ok), where ok
// reports whether key was present. The new value becomes the most recently
// used entry and is returned together with the entry evicted to make room
// for it, or nil if nothing was evicted.
//
// fn runs with the store locked and must not call any Store method. If fn
// panics nothing is written.
func (s *Store[K, V]) Update(key K, fn func(old V, ok bool) V) (V, *Eviction[K, V]) {
	value, ev := s.update(key, fn)
	if ev != nil && s.onEvict != nil {
		s.onEvict(ev.Key, ev.Value)
	}

	return value, ev
}

// Delete removes key. It returns ErrNotFound if key is absent.
func (s *Store[K, V]) Delete(key K) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lru.Remove(key) {
		return fmt.Errorf("delete %v: %w", key, ErrNotFound)
	}

	return nil
}

// Len returns the number of entries.
func (s *Store[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lru.Len()
}

// Keys returns a snapshot of the keys, least recently used first.
// The slice is owned by the caller.
func (s *Store[K, V]) Keys() []K {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lru.Keys()
}

// Clear removes all entries.
func (s *Store[K, V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lru.Purge()
}

// Range always fails with ErrIterationUnsupported and never calls fn.
// A consistent view across a long iteration cannot be promised while other
// goroutines write; take a snapshot with Keys instead.
func (*Store[K, V]) Range(_ func(key K, value V) bool) error {
	return ErrIterationUnsupported
}

// Eviction is an entry dropped because the store was full.
type Eviction[K comparable, V any] struct {
	Key   K
	Value V
}

func (s *Store[K, V]) update(key K, fn func(V, bool) V) (V, *Eviction[K, V]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.lru.Get(key)
	value := fn(old, ok)

	var ev *Eviction[K, V]
	if !ok && s.lru.Len() >= s.capacity {
		if k, v, removed := s.lru.RemoveOldest(); removed {
			ev = &Eviction[K, V]{Key: k, Value: v}
		}
	}
	s.lru.Add(key, value)

	return value, ev
}
