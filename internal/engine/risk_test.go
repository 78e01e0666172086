package engine

import (
	"math"
	"testing"
	"time"

	"github.com/logwardstack/logward-detect/internal/models"
)

func daytime(hour int) time.Time {
	return time.Date(2026, 2, 14, hour, 0, 0, 0, time.UTC)
}

func TestScoreAndRankEmptyInput(t *testing.T) {
	scorer := NewRiskScorer(DefaultWeights(), nil)
	out := scorer.ScoreAndRank(nil)
	if len(out) != 0 {
		t.Fatalf("expected empty output, got %d", len(out))
	}
}

func TestScoreAndRankSortInvariant(t *testing.T) {
	scorer := NewRiskScorer(DefaultWeights(), nil)
	windows := []models.FeatureWindow{
		{IP: "a", WindowStart: daytime(10), RiskScore: 10, SuccessRatio: 1, RequestRatePerMinute: 1},
		{IP: "b", WindowStart: daytime(10), RiskScore: 90, SuccessRatio: 0.2, RequestRatePerMinute: 8},
		{IP: "c", WindowStart: daytime(10), RiskScore: 50, SuccessRatio: 0.7, RequestRatePerMinute: 3},
	}

	out := scorer.ScoreAndRank(windows)
	for i := 1; i < len(out); i++ {
		if out[i].RiskScore > out[i-1].RiskScore {
			t.Fatalf("output not descending at %d: %v > %v", i, out[i].RiskScore, out[i-1].RiskScore)
		}
	}
	if out[0].IP != "b" {
		t.Fatalf("highest-risk actor = %q, want b", out[0].IP)
	}
}

func TestScoreAndRankRangeAndLevels(t *testing.T) {
	scorer := NewRiskScorer(DefaultWeights(), nil)
	windows := []models.FeatureWindow{
		{IP: "a", WindowStart: daytime(23), RiskScore: 100, SuccessRatio: 0, RequestRatePerMinute: 50},
		{IP: "b", WindowStart: daytime(11), RiskScore: 0, SuccessRatio: 1, RequestRatePerMinute: 1},
		{IP: "c", WindowStart: daytime(12), RiskScore: 40, SuccessRatio: 0.8, RequestRatePerMinute: 2},
	}

	out := scorer.ScoreAndRank(windows)
	for _, w := range out {
		if w.RiskScore < 0 || w.RiskScore > 100 {
			t.Fatalf("risk %v outside [0,100]", w.RiskScore)
		}
		want := models.RiskLevelLow
		if w.RiskScore >= 75 {
			want = models.RiskLevelHigh
		} else if w.RiskScore >= 40 {
			want = models.RiskLevelMedium
		}
		if w.RiskLevel != want {
			t.Fatalf("risk %v mapped to %s, want %s", w.RiskScore, w.RiskLevel, want)
		}
	}
	if out[0].RiskScore != 100 || out[0].RiskLevel != models.RiskLevelHigh {
		t.Fatalf("top row = %v/%s, want 100/HIGH", out[0].RiskScore, out[0].RiskLevel)
	}
}

func TestScoreAndRankFlatBatchClamps(t *testing.T) {
	scorer := NewRiskScorer(DefaultWeights(), nil)
	windows := make([]models.FeatureWindow, 3)
	for i := range windows {
		windows[i] = models.FeatureWindow{
			IP:                   "a",
			WindowStart:          daytime(10),
			RiskScore:            60,
			SuccessRatio:         0.5,
			RequestRatePerMinute: 2,
		}
	}

	out := scorer.ScoreAndRank(windows)
	// hybrid = 0.5*60 + 0.2*50 + 0 + 0 = 40 on every row
	for i, w := range out {
		if math.Abs(w.RiskScore-40) > 1e-9 {
			t.Fatalf("row %d risk = %v, want clamped 40", i, w.RiskScore)
		}
		if w.RiskLevel != models.RiskLevelMedium {
			t.Fatalf("row %d level = %s, want MEDIUM", i, w.RiskLevel)
		}
	}
}

func TestScoreAndRankAfterHours(t *testing.T) {
	scorer := NewRiskScorer(DefaultWeights(), nil)

	hours := map[int]bool{
		21: false, 22: true, 23: true, 0: true,
		3: true, 5: true, 6: false, 12: false,
	}
	for hour, want := range hours {
		if got := isAfterHours(hour); got != want {
			t.Errorf("isAfterHours(%d) = %v, want %v", hour, got, want)
		}
	}

	// identical rows except the hour: the after-hours one must rank first
	windows := []models.FeatureWindow{
		{IP: "day", WindowStart: daytime(12), RiskScore: 50, SuccessRatio: 1, RequestRatePerMinute: 2},
		{IP: "night", WindowStart: daytime(23), RiskScore: 50, SuccessRatio: 1, RequestRatePerMinute: 2},
	}
	out := scorer.ScoreAndRank(windows)
	if out[0].IP != "night" {
		t.Fatalf("after-hours window should rank first, got %q", out[0].IP)
	}
}

func TestScoreAndRankZeroWindowStart(t *testing.T) {
	scorer := NewRiskScorer(DefaultWeights(), nil)
	windows := []models.FeatureWindow{
		{IP: "a", RiskScore: 50, SuccessRatio: 1, RequestRatePerMinute: 2},
		{IP: "b", RiskScore: 80, SuccessRatio: 1, RequestRatePerMinute: 2},
	}
	// must not panic; missing window_start contributes 0
	out := scorer.ScoreAndRank(windows)
	if out[0].IP != "b" {
		t.Fatalf("ranking ignored anomaly component: %q first", out[0].IP)
	}
}

func TestScoreAndRankNaNComponentsTreatedAsZero(t *testing.T) {
	scorer := NewRiskScorer(DefaultWeights(), nil)
	windows := []models.FeatureWindow{
		{IP: "a", WindowStart: daytime(10), RiskScore: math.NaN(), SuccessRatio: math.NaN(), RequestRatePerMinute: 2},
		{IP: "b", WindowStart: daytime(10), RiskScore: 70, SuccessRatio: 0.5, RequestRatePerMinute: 4},
	}

	out := scorer.ScoreAndRank(windows)
	for _, w := range out {
		if math.IsNaN(w.RiskScore) {
			t.Fatalf("NaN leaked into final risk for %q", w.IP)
		}
	}
}

func TestScoreAndRankStableTies(t *testing.T) {
	scorer := NewRiskScorer(DefaultWeights(), nil)
	windows := []models.FeatureWindow{
		{IP: "first", WindowStart: daytime(10), RiskScore: 50, SuccessRatio: 1, RequestRatePerMinute: 2},
		{IP: "second", WindowStart: daytime(10), RiskScore: 50, SuccessRatio: 1, RequestRatePerMinute: 2},
	}
	out := scorer.ScoreAndRank(windows)
	if out[0].IP != "first" || out[1].IP != "second" {
		t.Fatalf("tie order not stable: %q, %q", out[0].IP, out[1].IP)
	}
}

func TestNewRiskScorerZeroWeightsFallBack(t *testing.T) {
	scorer := NewRiskScorer(Weights{}, nil)
	if scorer.weights != DefaultWeights() {
		t.Fatalf("zero weights did not fall back to defaults: %+v", scorer.weights)
	}
}
