package detectors

import (
	"math"

	"github.com/logwardstack/logward-detect/internal/models"
)

// ZScore is the statistical path for small batches: any attribute beyond the
// sigma threshold marks the row anomalous, and the mean absolute standardized
// value across attributes becomes the anomaly score.
type ZScore struct {
	threshold float64
}

// NewZScore returns the statistical detector with the fixed 2.5-sigma rule.
func NewZScore() *ZScore {
	return &ZScore{threshold: 2.5}
}

// Name identifies the algorithm for reporting.
func (d *ZScore) Name() string { return "Statistical Z-Score" }

// FlatRisk returns 0; a zero-spread statistical batch carries no signal.
func (d *ZScore) FlatRisk() float64 { return 0 }

// Detect labels rows against the sigma threshold on a standardized matrix.
func (d *ZScore) Detect(scaled Matrix) ([]int, []float64) {
	labels := make([]int, len(scaled))
	scores := make([]float64, len(scaled))

	for i, row := range scaled {
		maxAbs, sumAbs := 0.0, 0.0
		for _, v := range row {
			abs := math.Abs(v)
			sumAbs += abs
			if abs > maxAbs {
				maxAbs = abs
			}
		}

		labels[i] = models.LabelNormal
		if maxAbs > d.threshold {
			labels[i] = models.LabelAnomaly
		}
		if len(row) > 0 {
			scores[i] = sumAbs / float64(len(row))
		}
	}
	return labels, scores
}
