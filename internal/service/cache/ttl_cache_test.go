package cache

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)}
}

func TestTTLCacheSetGet(t *testing.T) {
	clk := newClock()
	c := NewTTLCache[int](30*time.Second, WithClock(clk.Now))

	c.Set("a", 1)
	clk.Advance(10 * time.Second)
	v, ok := c.Get("a")
	if !ok || v != 1 {
		t.Fatalf("expected hit 1, got %v %v", v, ok)
	}
}

func TestTTLCacheMissingKey(t *testing.T) {
	c := NewTTLCache[string](time.Minute)
	if _, ok := c.Get("nope"); ok {
		t.Fatalf("expected miss")
	}
}

func TestTTLCacheExpiryEvicts(t *testing.T) {
	clk := newClock()
	c := NewTTLCache[int](30*time.Second, WithClock(clk.Now))

	c.Set("a", 1)
	clk.Advance(31 * time.Second)
	if c.Len() != 1 {
		t.Fatalf("stale entry should stay until read, len=%d", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected miss after ttl")
	}
	if c.Len() != 0 {
		t.Fatalf("expected eviction on read, len=%d", c.Len())
	}
}

func TestTTLCacheExactExpiryIsStale(t *testing.T) {
	clk := newClock()
	c := NewTTLCache[int](30*time.Second, WithClock(clk.Now))

	c.Set("a", 1)
	clk.Advance(30 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("entry must be stale when now == expiresAt")
	}
}

func TestTTLCacheZeroTTLAlwaysMisses(t *testing.T) {
	for _, ttl := range []time.Duration{0, -time.Second} {
		c := NewTTLCache[int](ttl)
		c.Set("a", 1)
		if _, ok := c.Get("a"); ok {
			t.Fatalf("ttl %v: expected miss", ttl)
		}
	}
}

func TestTTLCacheLastWriterWins(t *testing.T) {
	clk := newClock()
	c := NewTTLCache[int](30*time.Second, WithClock(clk.Now))

	c.Set("a", 1)
	clk.Advance(20 * time.Second)
	c.Set("a", 2)
	clk.Advance(20 * time.Second)
	v, ok := c.Get("a")
	if !ok || v != 2 {
		t.Fatalf("expected refreshed value 2, got %v %v", v, ok)
	}
}

func TestTTLCacheConcurrentAccess(t *testing.T) {
	c := NewTTLCache[int](time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				c.Set("k", i)
				c.Get("k")
			}
		}(i)
	}
	wg.Wait()
	if _, ok := c.Get("k"); !ok {
		t.Fatalf("expected key after concurrent writes")
	}
}
