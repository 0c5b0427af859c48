package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry[V any] struct {
	value     V
	expiresAt time.Time // zero means never
	storedAt  time.Time
}

func (e memoryEntry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

type memoryOptions struct {
	defaultTTL      time.Duration
	cleanupInterval time.Duration
	maxEntries      int
}

// MemoryConfig configures NewMemory.
type MemoryConfig struct {
	// DefaultTTL applies when Set is called with a zero TTL. Default: 1 hour.
	DefaultTTL time.Duration

	// CleanupInterval is how often expired entries are swept. Zero disables
	// the sweeper; expired entries are still never returned.
	CleanupInterval time.Duration

	// MaxEntries caps the cache size. When full, the oldest entry is dropped.
	// Zero means unlimited.
	MaxEntries int
}

// Memory is a process-local cache. Entries expire lazily on read and are
// swept in the background when CleanupInterval is set.
type Memory[V any] struct {
	items  map[string]memoryEntry[V]
	opts   memoryOptions
	done   chan struct{}
	now    func() time.Time
	mu     sync.Mutex
	closed bool
}

// NewMemory creates a new in-memory cache.
func NewMemory[V any](cfg MemoryConfig) *Memory[V] {
	if cfg.DefaultTTL == 0 {
		cfg.DefaultTTL = time.Hour
	}

	m := &Memory[V]{
		items: make(map[string]memoryEntry[V]),
		opts: memoryOptions{
			defaultTTL:      cfg.DefaultTTL,
			cleanupInterval: cfg.CleanupInterval,
			maxEntries:      cfg.MaxEntries,
		},
		done: make(chan struct{}),
		now:  time.Now,
	}
	if cfg.CleanupInterval > 0 {
		go m.janitor()
	}
	return m
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero V
	e, ok := m.items[key]
	if !ok {
		return zero, ErrNotFound
	}
	if e.expired(m.now()) {
		delete(m.items, key)
		return zero, ErrNotFound
	}
	return e.value, nil
}

func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if ttl == 0 {
		ttl = m.opts.defaultTTL
	}
	now := m.now()
	e := memoryEntry[V]{value: value, storedAt: now}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}

	if _, exists := m.items[key]; !exists && m.opts.maxEntries > 0 && len(m.items) >= m.opts.maxEntries {
		m.evictOldest(now)
	}
	m.items[key] = e
	return nil
}

func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	delete(m.items, key)
	return nil
}

func (m *Memory[V]) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	clear(m.items)
	return nil
}

// Len returns the number of stored entries, including expired ones not yet swept.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Close stops the sweeper. Close is idempotent.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	close(m.done)
	return nil
}

func (m *Memory[V]) janitor() {
	ticker := time.NewTicker(m.opts.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Memory[V]) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, e := range m.items {
		if e.expired(now) {
			delete(m.items, k)
		}
	}
}

// evictOldest drops an expired entry if there is one, otherwise the entry
// stored first. Caller must hold the mutex.
func (m *Memory[V]) evictOldest(now time.Time) {
	var (
		oldestKey string
		oldestAt  time.Time
		found     bool
	)
	for k, e := range m.items {
		if e.expired(now) {
			delete(m.items, k)
			return
		}
		if !found || e.storedAt.Before(oldestAt) {
			oldestKey, oldestAt, found = k, e.storedAt, true
		}
	}
	if found {
		delete(m.items, oldestKey)
	}
}

var _ Cache[any] = (*Memory[any])(nil)
