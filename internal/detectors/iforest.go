package detectors

import (
	"math"
	"math/rand"
	"sort"

	"github.com/logwardstack/logward-detect/internal/models"
)

// IsolationForest is the ensemble path for larger batches. Trees isolate
// rows by random axis-aligned splits; rows with short average path lengths
// are anomalous. The seed is fixed so identical input yields identical
// labels and scores across runs.
type IsolationForest struct {
	trees         int
	sampleSize    int
	contamination float64
	seed          int64
}

// NewIsolationForest builds the ensemble detector for a batch of n rows,
// with the contamination fraction derived from the batch size.
func NewIsolationForest(n int) *IsolationForest {
	return &IsolationForest{
		trees:         100,
		sampleSize:    256,
		contamination: contaminationFor(n),
		seed:          42,
	}
}

// contaminationFor keeps roughly ten flagged rows, capped at a tenth of the
// batch.
func contaminationFor(n int) float64 {
	if n <= 0 {
		return 0.1
	}
	c := 10.0 / float64(n)
	if c > 0.1 {
		c = 0.1
	}
	return c
}

// Name identifies the algorithm for reporting.
func (d *IsolationForest) Name() string { return "Isolation Forest" }

// FlatRisk returns the neutral midpoint; a forest batch with zero score
// spread gives no ordering to normalize.
func (d *IsolationForest) FlatRisk() float64 { return 50 }

// Contamination exposes the calibrated anomaly fraction.
func (d *IsolationForest) Contamination() float64 { return d.contamination }

// Detect fits the forest on the standardized matrix and scores every row.
// The decision value is the contamination-quantile threshold minus the
// path-length score; its negation is returned so higher means more
// anomalous, matching the statistical path.
func (d *IsolationForest) Detect(scaled Matrix) ([]int, []float64) {
	n := len(scaled)
	labels := make([]int, n)
	scores := make([]float64, n)
	if n == 0 {
		return labels, scores
	}

	rng := rand.New(rand.NewSource(d.seed))
	sample := d.sampleSize
	if sample > n {
		sample = n
	}
	maxDepth := int(math.Ceil(math.Log2(float64(sample))))
	if maxDepth < 1 {
		maxDepth = 1
	}

	trees := make([]*isoNode, d.trees)
	for t := range trees {
		indices := rng.Perm(n)[:sample]
		trees[t] = buildIsoTree(scaled, indices, 0, maxDepth, rng)
	}

	norm := avgPathLength(sample)
	raw := make([]float64, n)
	for i, row := range scaled {
		sum := 0.0
		for _, tree := range trees {
			sum += pathLength(tree, row, 0)
		}
		mean := sum / float64(len(trees))
		if norm > 0 {
			raw[i] = math.Pow(2, -mean/norm)
		} else {
			raw[i] = 0.5
		}
	}

	threshold, spread := contaminationThreshold(raw, d.contamination)
	for i, s := range raw {
		labels[i] = models.LabelNormal
		if spread && s >= threshold {
			labels[i] = models.LabelAnomaly
		}
		scores[i] = s - threshold
	}
	return labels, scores
}

// contaminationThreshold returns the score cutoff separating the
// contamination tail. spread is false when every score is identical, in
// which case nothing is flagged.
func contaminationThreshold(scores []float64, contamination float64) (float64, bool) {
	n := len(scores)
	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)
	if sorted[0] == sorted[n-1] {
		return sorted[0], false
	}

	flagged := int(math.Round(contamination * float64(n)))
	if flagged < 1 {
		flagged = 1
	}
	if flagged >= n {
		flagged = n - 1
	}
	return sorted[n-flagged], true
}

// isoNode is one node of an isolation tree. Leaves carry the number of
// samples they absorbed for the path-length adjustment.
type isoNode struct {
	splitCol int
	splitVal float64
	left     *isoNode
	right    *isoNode
	size     int
	leaf     bool
}

func buildIsoTree(m Matrix, indices []int, depth, maxDepth int, rng *rand.Rand) *isoNode {
	if len(indices) <= 1 || depth >= maxDepth {
		return &isoNode{leaf: true, size: len(indices)}
	}

	cols := len(m[indices[0]])
	// pick a split column with actual spread; give up after a few draws
	// (constant subsamples cannot be split further)
	for attempt := 0; attempt < cols; attempt++ {
		col := rng.Intn(cols)
		min, max := m[indices[0]][col], m[indices[0]][col]
		for _, idx := range indices[1:] {
			v := m[idx][col]
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		if max <= min {
			continue
		}

		split := min + rng.Float64()*(max-min)
		var left, right []int
		for _, idx := range indices {
			if m[idx][col] < split {
				left = append(left, idx)
			} else {
				right = append(right, idx)
			}
		}
		if len(left) == 0 || len(right) == 0 {
			continue
		}
		return &isoNode{
			splitCol: col,
			splitVal: split,
			left:     buildIsoTree(m, left, depth+1, maxDepth, rng),
			right:    buildIsoTree(m, right, depth+1, maxDepth, rng),
		}
	}
	return &isoNode{leaf: true, size: len(indices)}
}

func pathLength(node *isoNode, row []float64, depth int) float64 {
	if node.leaf {
		return float64(depth) + avgPathLength(node.size)
	}
	if row[node.splitCol] < node.splitVal {
		return pathLength(node.left, row, depth+1)
	}
	return pathLength(node.right, row, depth+1)
}

// avgPathLength is c(n), the average path length of an unsuccessful binary
// search over n samples, used to normalize isolation depths.
func avgPathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	if n == 2 {
		return 1
	}
	h := math.Log(float64(n-1)) + 0.5772156649
	return 2*h - 2*float64(n-1)/float64(n)
}
