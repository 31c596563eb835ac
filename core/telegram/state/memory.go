package state

import (
	"context"
	"sync"
	"time"
)

type entry[T any] struct {
	value   T
	expires time.Time
}

// Memory keeps sessions in process memory.
type Memory[T any] struct {
	mu       sync.Mutex
	sessions map[int64]entry[T]
	ttl      time.Duration
	now      func() time.Time

	janitor time.Duration
	stop    chan struct{}
	once    sync.Once
}

// MemoryOption configures a Memory store.
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	janitor time.Duration
	now     func() time.Time
}

// WithJanitor starts a background sweep of expired sessions every interval.
func WithJanitor(interval time.Duration) MemoryOption {
	return func(o *memoryOptions) { o.janitor = interval }
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(o *memoryOptions) { o.now = now }
}

// NewMemory returns an in-memory store with the given session TTL.
func NewMemory[T any](ttl time.Duration, opts ...MemoryOption) *Memory[T] {
	o := memoryOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	m := &Memory[T]{
		sessions: make(map[int64]entry[T]),
		ttl:      ttlOrDefault(ttl),
		now:      o.now,
		janitor:  o.janitor,
		stop:     make(chan struct{}),
	}
	if m.janitor > 0 {
		go m.sweepLoop()
	}
	return m
}

// Get implements Store.
func (m *Memory[T]) Get(_ context.Context, chatID int64) (T, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[chatID]
	if !ok || !m.now().Before(e.expires) {
		if ok {
			delete(m.sessions, chatID)
		}
		var zero T
		return zero, false, nil
	}
	return e.value, true, nil
}

// Set implements Store. Every write restarts the TTL.
func (m *Memory[T]) Set(_ context.Context, chatID int64, v T) error {
	m.mu.Lock()
	m.sessions[chatID] = entry[T]{value: v, expires: m.now().Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

// Delete implements Store.
func (m *Memory[T]) Delete(_ context.Context, chatID int64) error {
	m.mu.Lock()
	delete(m.sessions, chatID)
	m.mu.Unlock()
	return nil
}

// Len reports the number of stored sessions, live or not yet swept.
func (m *Memory[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep drops expired sessions and returns how many were removed.
func (m *Memory[T]) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for id, e := range m.sessions {
		if !now.Before(e.expires) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Close stops the janitor. Safe to call more than once.
func (m *Memory[T]) Close() {
	m.once.Do(func() { close(m.stop) })
}

func (m *Memory[T]) sweepLoop() {
	t := time.NewTicker(m.janitor)
	defer t.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-t.C:
			m.Sweep()
		}
	}
}
