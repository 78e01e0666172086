package features

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/logwardstack/logward-detect/internal/tabular"
	"github.com/logwardstack/logward-detect/internal/utils"
)

func logTable(rows ...[]string) *tabular.Table {
	table := tabular.New("ip", "timestamp", "status", "endpoint")
	for _, row := range rows {
		table.AppendRow(row...)
	}
	return table
}

func TestBuildSingleWindowAggregation(t *testing.T) {
	table := logTable(
		[]string{"10.0.0.1", "2026-02-14 10:00:00", "200", "/index"},
		[]string{"10.0.0.1", "2026-02-14 10:01:00", "404", "/login"},
		[]string{"10.0.0.1", "2026-02-14 10:02:00", "500", "/login"},
		[]string{"10.0.0.1", "2026-02-14 10:03:00", "200", "/api"},
	)

	windows, err := Build(table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(windows))
	}

	w := windows[0]
	if w.TotalRequests != 4 {
		t.Errorf("total_requests = %d, want 4", w.TotalRequests)
	}
	if w.FailedRequests != 2 {
		t.Errorf("failed_requests = %d, want 2", w.FailedRequests)
	}
	if w.SuccessRatio != 0.5 {
		t.Errorf("success_ratio = %v, want 0.5", w.SuccessRatio)
	}
	if w.UniqueEndpoints != 3 {
		t.Errorf("unique_endpoints = %d, want 3", w.UniqueEndpoints)
	}
	if w.RequestRatePerMinute != 4.0/5.0 {
		t.Errorf("request_rate_per_minute = %v, want 0.8", w.RequestRatePerMinute)
	}
	if w.AvgTimeGapSeconds != 60 {
		t.Errorf("avg_time_gap_seconds = %v, want 60", w.AvgTimeGapSeconds)
	}
	wantStart := time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC)
	if !w.WindowStart.Equal(wantStart) {
		t.Errorf("window_start = %v, want %v", w.WindowStart, wantStart)
	}
}

func TestBuildTwoRowFailureScenario(t *testing.T) {
	table := logTable(
		[]string{"10.0.0.1", "2026-02-14 10:00:00", "200", "/"},
		[]string{"10.0.0.1", "2026-02-14 10:01:00", "403", "/"},
	)

	windows, err := Build(table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(windows))
	}
	if windows[0].SuccessRatio != 0.5 {
		t.Fatalf("success_ratio = %v, want 0.5", windows[0].SuccessRatio)
	}
}

func TestBuildSplitsWindowsPerActorAndBucket(t *testing.T) {
	table := logTable(
		[]string{"10.0.0.1", "2026-02-14 10:00:30", "200", "/"},
		[]string{"10.0.0.2", "2026-02-14 10:01:00", "200", "/"},
		[]string{"10.0.0.1", "2026-02-14 10:06:00", "200", "/"},
	)

	windows, err := Build(table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(windows))
	}
	for _, w := range windows {
		if w.TotalRequests != 1 {
			t.Errorf("window %s@%v total = %d, want 1", w.IP, w.WindowStart, w.TotalRequests)
		}
		if w.AvgTimeGapSeconds != 0 {
			t.Errorf("single-event window gap = %v, want 0", w.AvgTimeGapSeconds)
		}
	}
}

func TestBuildApacheTimestamps(t *testing.T) {
	table := logTable(
		[]string{"10.0.0.1", "10/Oct/2000:13:55:36 -0700", "200", "/index"},
		[]string{"10.0.0.2", "[10/Oct/2000:13:55:36 -0700]", "404", "/api"},
	)

	windows, err := Build(table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(windows))
	}
}

func TestBuildApacheTimestampsWithoutZone(t *testing.T) {
	table := logTable(
		[]string{"10.0.0.1", "10/Oct/2000:13:55:36", "200", "/index"},
		[]string{"10.0.0.1", "10/Oct/2000:13:55:40", "200", "/index"},
	)

	windows, err := Build(table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(windows))
	}
	if windows[0].AvgTimeGapSeconds != 4 {
		t.Fatalf("gap = %v, want 4", windows[0].AvgTimeGapSeconds)
	}
}

func TestBuildAllTimestampsUnparsable(t *testing.T) {
	table := logTable(
		[]string{"10.0.0.1", "invalid", "200", "/"},
		[]string{"10.0.0.1", "corrupt", "200", "/"},
	)

	_, err := Build(table)
	var validationErr *utils.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
}

func TestBuildEmptyInput(t *testing.T) {
	table := tabular.New("ip", "timestamp", "status", "endpoint")

	_, err := Build(table)
	var validationErr *utils.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
}

func TestBuildNonNumericStatusDropped(t *testing.T) {
	table := logTable(
		[]string{"10.0.0.1", "2026-02-14 10:00:00", "200", "/"},
		[]string{"10.0.0.1", "2026-02-14 10:01:00", "teapot", "/"},
	)

	windows, err := Build(table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if windows[0].TotalRequests != 1 {
		t.Fatalf("expected dropped row, total = %d", windows[0].TotalRequests)
	}
}

func TestBuildAllStatusesInvalid(t *testing.T) {
	table := logTable(
		[]string{"10.0.0.1", "2026-02-14 10:00:00", "abc", "/"},
	)

	_, err := Build(table)
	var validationErr *utils.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
}

func TestBuildMissingTimestampColumn(t *testing.T) {
	table := tabular.New("ip", "status", "endpoint")
	table.AppendRow("10.0.0.1", "200", "/")

	_, err := Build(table)
	var schemaErr *utils.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %T: %v", err, err)
	}
}

func TestBuildSortsUnorderedInput(t *testing.T) {
	table := logTable(
		[]string{"10.0.0.1", "2026-02-14 10:02:00", "200", "/b"},
		[]string{"10.0.0.1", "2026-02-14 10:00:00", "200", "/a"},
		[]string{"10.0.0.1", "2026-02-14 10:04:00", "200", "/c"},
	)

	windows, err := Build(table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := windows[0].AvgTimeGapSeconds; math.Abs(got-120) > 1e-9 {
		t.Fatalf("gap = %v, want 120 (input must be time-sorted first)", got)
	}
}

func TestParseTimestampsFallbackThreshold(t *testing.T) {
	// generic layout covers more than half the rows, so the CLF fallback
	// must not run and the lone apache-style row stays unparsed
	values := []string{
		"2026-02-14 10:00:00",
		"2026-02-14 10:01:00",
		"2026-02-14 10:02:00",
		"10/Oct/2000:13:55:36 -0700",
	}
	_, ok := parseTimestamps(values)
	if !ok[0] || !ok[1] || !ok[2] {
		t.Fatal("generic rows should parse")
	}
	if ok[3] {
		t.Fatal("fallback should not run when most rows already parsed")
	}
}
