package latency

import (
	"math"
	"sort"
	"sync"
)

// Tracker keeps the last N round-trip samples (ms) in a ring and reports percentiles.
type Tracker struct {
	mu      sync.Mutex
	samples []float64
	pos     int
	count   int
}

// NewTracker holds up to capacity samples; capacity <= 0 means 1000.
func NewTracker(capacity int) *Tracker {
	if capacity <= 0 {
		capacity = 1000
	}
	return &Tracker{samples: make([]float64, capacity)}
}

func (t *Tracker) Record(ms float64) {
	t.mu.Lock()
	t.samples[t.pos] = ms
	t.pos = (t.pos + 1) % len(t.samples)
	if t.count < len(t.samples) {
		t.count++
	}
	t.mu.Unlock()
}

// Percentiles returns p50, p95 and p99 with linear interpolation, zeros when empty.
func (t *Tracker) Percentiles() (p50, p95, p99 float64) {
	t.mu.Lock()
	sorted := make([]float64, t.count)
	copy(sorted, t.samples[:t.count])
	t.mu.Unlock()

	if len(sorted) == 0 {
		return 0, 0, 0
	}
	sort.Float64s(sorted)
	return percentile(sorted, 0.50), percentile(sorted, 0.95), percentile(sorted, 0.99)
}

func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	rank := p * float64(n-1)
	lower := int(math.Floor(rank))
	if lower+1 >= n {
		return sorted[n-1]
	}
	frac := rank - float64(lower)
	return sorted[lower]*(1-frac) + sorted[lower+1]*frac
}
