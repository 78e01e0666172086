package utils

import (
	"math"
	"sort"
	"sync"
	"time"
)

// LatencyTracker keeps the most recent duration samples in a fixed-size ring
// and answers percentile queries over them. The zero percentile is the
// retained minimum, 100 the retained maximum.
type LatencyTracker struct {
	mu    sync.Mutex
	ring  []time.Duration
	next  int
	used  int
	total int
}

// NewLatencyTracker creates a tracker retaining up to capacity samples.
func NewLatencyTracker(capacity int) *LatencyTracker {
	if capacity <= 0 {
		capacity = 512
	}
	return &LatencyTracker{ring: make([]time.Duration, capacity)}
}

// Observe records one sample, overwriting the oldest once the ring is full.
func (l *LatencyTracker) Observe(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.ring[l.next] = d
	l.next = (l.next + 1) % len(l.ring)
	if l.used < len(l.ring) {
		l.used++
	}
	l.total++
}

// Count returns the number of samples observed over the tracker's lifetime,
// not the number retained, so periodic every-N reporting keeps firing after
// the ring wraps.
func (l *LatencyTracker) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// Percentile returns the nearest-rank p-th percentile (0-100) over the
// retained samples, or zero when nothing has been observed.
func (l *LatencyTracker) Percentile(p float64) time.Duration {
	l.mu.Lock()
	sorted := make([]time.Duration, l.used)
	copy(sorted, l.ring[:l.used])
	l.mu.Unlock()

	if len(sorted) == 0 {
		return 0
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	if p < 0 {
		p = 0
	} else if p > 100 {
		p = 100
	}
	rank := int(math.Ceil(p / 100 * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}
