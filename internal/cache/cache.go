// Package cache provides time-boxed key-value stores used to deduplicate
// upstream API calls. The memory store is the default; the Redis store
// serves multi-replica deployments.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultTTL is how long a cached entry stays fresh.
const DefaultTTL = 10 * time.Minute

// Key derives a cache key from coordinates and a data kind. Coordinates are
// rounded to 2 decimal places so nearby lookups share an entry and the key
// space stays bounded.
func Key(lat, lon float64, kind string) string {
	return fmt.Sprintf("weather_%s_%.2f_%.2f", kind, lat, lon)
}

type memoryEntry[T any] struct {
	data      T
	timestamp time.Time
}

// Memory is an in-process TTL store. All access is mutex-guarded; the clock
// is injected so tests control expiry. Put sweeps expired entries, bounding
// growth between reads. There is no size cap or LRU: entries are small and
// TTL-bounded.
type Memory[T any] struct {
	mu      sync.Mutex
	entries map[string]memoryEntry[T]
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory constructs a Memory store with the default TTL and wall clock.
func NewMemory[T any]() *Memory[T] {
	return NewMemoryWithClock[T](DefaultTTL, time.Now)
}

// NewMemoryWithClock constructs a Memory store with an explicit TTL and
// clock (used in tests).
func NewMemoryWithClock[T any](ttl time.Duration, now func() time.Time) *Memory[T] {
	return &Memory[T]{
		entries: make(map[string]memoryEntry[T]),
		ttl:     ttl,
		now:     now,
	}
}

// Get returns the entry stored under key. An expired entry is evicted and
// reported as absent; stale data is never returned.
func (m *Memory[T]) Get(_ context.Context, key string) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero T
	e, ok := m.entries[key]
	if !ok {
		return zero, false
	}
	if m.now().Sub(e.timestamp) > m.ttl {
		delete(m.entries, key)
		return zero, false
	}
	return e.data, true
}

// Put stores data under key, stamping it with the current time. Expired
// entries are purged on the way in.
func (m *Memory[T]) Put(_ context.Context, key string, data T) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, e := range m.entries {
		if now.Sub(e.timestamp) > m.ttl {
			delete(m.entries, k)
		}
	}
	m.entries[key] = memoryEntry[T]{data: data, timestamp: now}
}

// Clear drops every entry.
func (m *Memory[T]) Clear(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]memoryEntry[T])
}

// Len reports the number of stored entries, expired or not.
func (m *Memory[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
