package detectors

import (
	"math"

	"github.com/logwardstack/logward-detect/internal/models"
)

// matrixFrom extracts the numeric behavioural attributes from the windows.
// Non-numeric attributes (actor, window start) never reach the detectors.
func matrixFrom(windows []models.FeatureWindow) Matrix {
	m := make(Matrix, len(windows))
	for i, w := range windows {
		m[i] = []float64{
			float64(w.TotalRequests),
			float64(w.FailedRequests),
			w.SuccessRatio,
			float64(w.UniqueEndpoints),
			w.RequestRatePerMinute,
			w.AvgTimeGapSeconds,
		}
	}
	return m
}

// standardize imputes missing values with the column mean (0 when a column
// is entirely missing) and scales each column to zero mean and unit
// variance. A zero-variance column becomes all zeros instead of raising;
// degenerate batches must stay numerically stable.
func standardize(m Matrix) Matrix {
	if len(m) == 0 {
		return Matrix{}
	}
	rows, cols := len(m), len(m[0])
	out := make(Matrix, rows)
	for i := range out {
		out[i] = make([]float64, cols)
	}

	for c := 0; c < cols; c++ {
		sum, count := 0.0, 0
		for r := 0; r < rows; r++ {
			if !math.IsNaN(m[r][c]) {
				sum += m[r][c]
				count++
			}
		}
		fill := 0.0
		if count > 0 {
			fill = sum / float64(count)
		}

		mean := 0.0
		for r := 0; r < rows; r++ {
			v := m[r][c]
			if math.IsNaN(v) {
				v = fill
			}
			out[r][c] = v
			mean += v
		}
		mean /= float64(rows)

		variance := 0.0
		for r := 0; r < rows; r++ {
			diff := out[r][c] - mean
			variance += diff * diff
		}
		variance /= float64(rows)
		std := math.Sqrt(variance)

		if std == 0 {
			for r := 0; r < rows; r++ {
				out[r][c] = 0
			}
			continue
		}
		for r := 0; r < rows; r++ {
			out[r][c] = (out[r][c] - mean) / std
		}
	}
	return out
}
