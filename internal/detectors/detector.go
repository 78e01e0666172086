// Package detectors implements the hybrid anomaly detection engine: a
// statistical z-score path for small batches and an isolation forest for
// larger ones, selected purely by row count.
package detectors

import (
	"github.com/logwardstack/logward-detect/internal/models"
)

// Matrix is a dense row-major feature matrix. NaN marks a missing value
// until imputation runs.
type Matrix [][]float64

// Detector labels each row of a standardized feature matrix. Labels are
// models.LabelNormal / models.LabelAnomaly; scores are directionally
// unified so that higher always means more anomalous.
type Detector interface {
	Name() string
	Detect(scaled Matrix) (labels []int, scores []float64)
	// FlatRisk is the risk assigned to every row when the batch produces a
	// zero anomaly-score spread and min-max scaling is undefined.
	FlatRisk() float64
}

// ensembleMinRows is the batch size at which the isolation forest takes
// over from the statistical path.
const ensembleMinRows = 50

// Select returns the detector responsible for a batch of n rows.
func Select(n int) Detector {
	if n < ensembleMinRows {
		return NewZScore()
	}
	return NewIsolationForest(n)
}

// Detect augments the feature windows with anomaly labels, unified anomaly
// scores, and a 0-100 risk scale min-max normalized across the batch. An
// empty input yields an empty output; there is no failure mode for
// well-formed windows.
func Detect(windows []models.FeatureWindow) []models.FeatureWindow {
	out := append([]models.FeatureWindow(nil), windows...)
	if len(out) == 0 {
		return out
	}

	scaled := standardize(matrixFrom(out))
	detector := Select(len(out))
	labels, scores := detector.Detect(scaled)
	risks := riskScale(scores, detector.FlatRisk())

	for i := range out {
		out[i].AnomalyLabel = labels[i]
		out[i].AnomalyScore = scores[i]
		out[i].RiskScore = risks[i]
	}
	return out
}

// riskScale min-max normalizes scores to [0,100]; a flat batch collapses to
// the detector's neutral value.
func riskScale(scores []float64, flat float64) []float64 {
	out := make([]float64, len(scores))
	if len(scores) == 0 {
		return out
	}
	min, max := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	if max <= min {
		for i := range out {
			out[i] = flat
		}
		return out
	}
	for i, s := range scores {
		scaled := 100 * (s - min) / (max - min)
		// float rounding can land a hair past either end of the range
		if scaled < 0 {
			scaled = 0
		} else if scaled > 100 {
			scaled = 100
		}
		out[i] = scaled
	}
	return out
}
