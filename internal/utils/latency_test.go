package utils

import (
	"testing"
	"time"
)

func TestLatencyTrackerPercentile(t *testing.T) {
	tracker := NewLatencyTracker(10)
	for _, d := range []time.Duration{
		10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond,
		40 * time.Millisecond, 50 * time.Millisecond,
	} {
		tracker.Observe(d)
	}

	if tracker.Count() != 5 {
		t.Fatalf("expected count 5, got %d", tracker.Count())
	}
	if p95 := tracker.Percentile(95); p95 != 50*time.Millisecond {
		t.Fatalf("expected p95 of 50ms, got %v", p95)
	}
	if p0 := tracker.Percentile(0); p0 != 10*time.Millisecond {
		t.Fatalf("expected p0 of 10ms, got %v", p0)
	}
}

func TestLatencyTrackerEmpty(t *testing.T) {
	tracker := NewLatencyTracker(4)
	if p := tracker.Percentile(95); p != 0 {
		t.Fatalf("expected zero percentile on empty tracker, got %v", p)
	}
}

func TestLatencyTrackerRingDropsOldest(t *testing.T) {
	tracker := NewLatencyTracker(3)
	for i := 0; i < 10; i++ {
		tracker.Observe(time.Duration(i) * time.Millisecond)
	}

	// Lifetime count keeps growing even though only 3 samples are retained.
	if tracker.Count() != 10 {
		t.Fatalf("expected lifetime count 10, got %d", tracker.Count())
	}
	// Retained window is the last three observations {7ms, 8ms, 9ms}.
	if p0 := tracker.Percentile(0); p0 != 7*time.Millisecond {
		t.Fatalf("expected retained minimum of 7ms, got %v", p0)
	}
	if p100 := tracker.Percentile(100); p100 != 9*time.Millisecond {
		t.Fatalf("expected retained maximum of 9ms, got %v", p100)
	}
}
