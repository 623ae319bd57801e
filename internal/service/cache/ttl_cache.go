package cache

import (
	"sync"
	"time"
)

type entry[T any] struct {
	v   T
	exp time.Time
}

type options struct {
	now func() time.Time
}

// Option configures a TTLCache.
type Option func(*options)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// TTLCache is a process-local map with lazy expiry. Stale entries are removed
// by the Get that finds them; there is no sweeper and no size bound.
// A ttl <= 0 makes every entry stale on arrival.
type TTLCache[T any] struct {
	mu  sync.RWMutex
	m   map[string]entry[T]
	ttl time.Duration
	now func() time.Time
}

func NewTTLCache[T any](ttl time.Duration, opts ...Option) *TTLCache[T] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &TTLCache[T]{m: make(map[string]entry[T]), ttl: ttl, now: o.now}
}

func (c *TTLCache[T]) Get(key string) (T, bool) {
	var zero T
	now := c.now()

	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if now.Before(e.exp) {
		return e.v, true
	}

	c.mu.Lock()
	// a concurrent Set may have refreshed the key since the read lock was released
	if cur, ok := c.m[key]; ok && !now.Before(cur.exp) {
		delete(c.m, key)
	}
	c.mu.Unlock()
	return zero, false
}

func (c *TTLCache[T]) Set(key string, v T) {
	exp := c.now().Add(c.ttl)
	c.mu.Lock()
	c.m[key] = entry[T]{v: v, exp: exp}
	c.mu.Unlock()
}

// Len counts stored entries, stale ones included.
func (c *TTLCache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

// TTL returns the configured time to live.
func (c *TTLCache[T]) TTL() time.Duration { return c.ttl }
