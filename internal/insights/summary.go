// Package insights condenses a ranked batch into the headline figures the
// serving layer renders.
package insights

import (
	"math"

	"github.com/logwardstack/logward-detect/internal/detectors"
	"github.com/logwardstack/logward-detect/internal/models"
)

// WindowSizeLabel names the aggregation bucket for display.
const WindowSizeLabel = "5 Minutes"

// Summarize computes batch-level figures from the ranked windows.
func Summarize(windows []models.FeatureWindow) (models.ReportSummary, models.ModelInsights) {
	summary := models.ReportSummary{TotalWindows: len(windows)}

	actors := make(map[string]struct{})
	riskSum := 0.0
	var top *models.TopThreat

	for i, w := range windows {
		actors[w.IP] = struct{}{}
		if w.IsAnomaly() {
			summary.TotalAnomalies++
		}
		if w.RiskLevel == models.RiskLevelHigh {
			summary.HighRiskCount++
		}

		score := w.RiskScore
		if math.IsNaN(score) {
			score = 0
		}
		riskSum += score
		summary.RiskDistribution[distributionBin(score)]++

		if top == nil || score > top.RiskScore {
			top = &models.TopThreat{IP: w.IP, RiskScore: score, Anomaly: windows[i].IsAnomaly()}
		}
	}
	summary.TotalActors = len(actors)

	if len(windows) > 0 {
		summary.AvgRiskScore = riskSum / float64(len(windows))
	}

	// bin heights as a share of the fullest bin, for rendering
	maxCount := 0
	for _, c := range summary.RiskDistribution {
		if c > maxCount {
			maxCount = c
		}
	}
	if maxCount > 0 {
		for i, c := range summary.RiskDistribution {
			summary.RiskDistributionPct[i] = float64(c) / float64(maxCount) * 100
		}
	}

	return summary, models.ModelInsights{
		Algorithm:     detectors.Select(len(windows)).Name(),
		WindowSize:    WindowSizeLabel,
		Contamination: "Dynamic",
		TopThreat:     top,
	}
}

// distributionBin maps a 0-100 score to the buckets
// [0,20], (20,40], (40,60], (60,80], (80,100].
func distributionBin(score float64) int {
	switch {
	case score <= 20:
		return 0
	case score <= 40:
		return 1
	case score <= 60:
		return 2
	case score <= 80:
		return 3
	default:
		return 4
	}
}
