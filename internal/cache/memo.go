// Package cache provides an insert-only memoization cache.
//
// Entries are created at most once per key and live until Drain. This
// matches GPU object caches whose values are immutable for the lifetime
// of their owner: a render pass created for a pixel format is valid until
// renderer teardown and must stay identity-stable so framebuffers created
// against it remain compatible.
package cache

// Memo memoizes the result of a fallible constructor per key.
//
// Memo is not safe for concurrent use; its owners are driven from a
// single thread.
type Memo[K comparable, V any] struct {
	entries map[K]V

	// Statistics for diagnostics.
	hits   uint64
	misses uint64
}

// New creates an empty Memo.
func New[K comparable, V any]() *Memo[K, V] {
	return &Memo[K, V]{
		entries: make(map[K]V),
	}
}

// GetOrCreate returns the cached value for key, invoking create on the
// first request. If create fails, nothing is cached and the error is
// returned; a later call with the same key retries.
func (m *Memo[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	if v, ok := m.entries[key]; ok {
		m.hits++
		return v, nil
	}
	m.misses++
	v, err := create()
	if err != nil {
		return v, err
	}
	m.entries[key] = v
	return v, nil
}

// Get returns the cached value for key without creating one.
func (m *Memo[K, V]) Get(key K) (V, bool) {
	v, ok := m.entries[key]
	return v, ok
}

// Len reports the number of cached entries.
func (m *Memo[K, V]) Len() int { return len(m.entries) }

// Stats returns the hit and miss counts.
func (m *Memo[K, V]) Stats() (hits, misses uint64) {
	return m.hits, m.misses
}

// Drain visits every entry and clears the cache. Callers use it at
// teardown to destroy the cached GPU objects.
func (m *Memo[K, V]) Drain(fn func(K, V)) {
	for k, v := range m.entries {
		fn(k, v)
	}
	clear(m.entries)
}
