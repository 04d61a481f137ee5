package models

import "sync"

// Lazy holds a child collection that is either attached eagerly from a remote
// payload or resolved from storage on first access. A remote-sourced value is
// authoritative: it is never re-queried and never invalidated.
type Lazy[T any] struct {
	mu         sync.Mutex
	value      T
	loaded     bool
	fromRemote bool
}

// SetRemote seeds the value from a remote payload and marks it authoritative.
func (l *Lazy[T]) SetRemote(v T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.value = v
	l.loaded = true
	l.fromRemote = true
}

// Set seeds the value without marking it remote-sourced.
func (l *Lazy[T]) Set(v T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.value = v
	l.loaded = true
}

// Invalidate clears a storage-sourced value so the next Resolve re-queries.
// Remote-sourced values are sticky and are not cleared.
func (l *Lazy[T]) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fromRemote {
		return
	}
	var zero T
	l.value = zero
	l.loaded = false
}

// Resolve returns the cached value, fetching it at most once. A fetch error
// leaves the state unloaded so a later access can retry.
func (l *Lazy[T]) Resolve(fetch func() (T, error)) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loaded {
		return l.value, nil
	}
	v, err := fetch()
	if err != nil {
		var zero T
		return zero, err
	}
	l.value = v
	l.loaded = true
	return v, nil
}

// Loaded reports whether a value is cached.
func (l *Lazy[T]) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}

// FromRemote reports whether the cached value came from a remote payload.
func (l *Lazy[T]) FromRemote() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fromRemote
}
