package engine

import (
	"log/slog"
	"math"
	"sort"

	"github.com/logwardstack/logward-detect/internal/models"
)

// Weights control the contribution of each risk component. They are loaded
// from configuration; zero-valued weights fall back to the defaults.
type Weights struct {
	Anomaly    float64 `yaml:"anomaly"`
	Failure    float64 `yaml:"failure"`
	Spike      float64 `yaml:"spike"`
	AfterHours float64 `yaml:"afterHours"`
}

// DefaultWeights returns the shipped fusion weights.
func DefaultWeights() Weights {
	return Weights{Anomaly: 0.50, Failure: 0.20, Spike: 0.15, AfterHours: 0.15}
}

// Valid reports whether every weight is non-negative.
func (w Weights) Valid() bool {
	return w.Anomaly >= 0 && w.Failure >= 0 && w.Spike >= 0 && w.AfterHours >= 0
}

func (w Weights) isZero() bool {
	return w.Anomaly == 0 && w.Failure == 0 && w.Spike == 0 && w.AfterHours == 0
}

// After-hours band: [22:00, 06:00).
const (
	afterHoursStart = 22
	afterHoursEnd   = 6
)

// Risk level thresholds on the final 0-100 scale.
const (
	highRiskMin   = 75.0
	mediumRiskMin = 40.0
)

// spikeSigmaCap maps a 3-sigma rate deviation to the full 100 spike score.
const spikeSigmaCap = 3.0

// RiskScorer fuses the detection risk with independent behavioural
// heuristics into the final 0-100 score and level.
type RiskScorer struct {
	weights Weights
	logger  *slog.Logger
}

// NewRiskScorer constructs a scorer; zero weights fall back to defaults.
func NewRiskScorer(weights Weights, logger *slog.Logger) *RiskScorer {
	if logger == nil {
		logger = slog.Default()
	}
	if weights.isZero() {
		weights = DefaultWeights()
	}
	return &RiskScorer{weights: weights, logger: logger}
}

// ScoreAndRank overwrites risk_score with the weighted hybrid score, assigns
// risk levels, and returns a new slice sorted descending by risk. Ties keep
// encounter order. An empty input passes through unchanged; there is no
// failure mode for well-formed windows.
func (r *RiskScorer) ScoreAndRank(windows []models.FeatureWindow) []models.FeatureWindow {
	out := append([]models.FeatureWindow(nil), windows...)
	n := len(out)
	if n == 0 {
		return out
	}

	spikes := r.spikeComponents(out)

	hybrid := make([]float64, n)
	for i, w := range out {
		anomaly := nanToZero(w.RiskScore)
		failure := nanToZero((1 - w.SuccessRatio) * 100)
		afterHours := 0.0
		if !w.WindowStart.IsZero() && isAfterHours(w.WindowStart.Hour()) {
			afterHours = 100
		}

		hybrid[i] = r.weights.Anomaly*anomaly +
			r.weights.Failure*failure +
			r.weights.Spike*spikes[i] +
			r.weights.AfterHours*afterHours
	}

	min, max := hybrid[0], hybrid[0]
	for _, h := range hybrid[1:] {
		if h < min {
			min = h
		}
		if h > max {
			max = h
		}
	}

	for i := range out {
		score := 0.0
		if max > min {
			// float rounding can carry the batch max a hair past 100
			score = clamp(100*(hybrid[i]-min)/(max-min), 0, 100)
		} else {
			// flat batch: clamp the raw hybrid value instead of dividing by zero
			score = clamp(hybrid[i], 0, 100)
		}
		out[i].RiskScore = score
		out[i].RiskLevel = levelFor(score)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].RiskScore > out[j].RiskScore })
	return out
}

// spikeComponents standardizes the request rate across the batch and maps
// |z| onto [0,100] with the sigma cap. A single row has nothing to compare
// against and scores 0.
func (r *RiskScorer) spikeComponents(windows []models.FeatureWindow) []float64 {
	n := len(windows)
	out := make([]float64, n)
	if n < 2 {
		return out
	}

	mean := 0.0
	for _, w := range windows {
		mean += w.RequestRatePerMinute
	}
	mean /= float64(n)

	variance := 0.0
	for _, w := range windows {
		diff := w.RequestRatePerMinute - mean
		variance += diff * diff
	}
	variance /= float64(n)
	std := math.Sqrt(variance)
	if std == 0 {
		return out
	}

	for i, w := range windows {
		z := math.Abs(w.RequestRatePerMinute-mean) / std
		out[i] = clamp(z/spikeSigmaCap*100, 0, 100)
	}
	return out
}

func isAfterHours(hour int) bool {
	return hour >= afterHoursStart || hour < afterHoursEnd
}

func levelFor(score float64) models.RiskLevel {
	switch {
	case score >= highRiskMin:
		return models.RiskLevelHigh
	case score >= mediumRiskMin:
		return models.RiskLevelMedium
	default:
		return models.RiskLevelLow
	}
}

func nanToZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
