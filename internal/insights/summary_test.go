package insights

import (
	"testing"

	"github.com/logwardstack/logward-detect/internal/models"
)

func TestSummarize(t *testing.T) {
	windows := []models.FeatureWindow{
		{IP: "a", RiskScore: 90, RiskLevel: models.RiskLevelHigh, AnomalyLabel: models.LabelAnomaly},
		{IP: "a", RiskScore: 55, RiskLevel: models.RiskLevelMedium, AnomalyLabel: models.LabelNormal},
		{IP: "b", RiskScore: 10, RiskLevel: models.RiskLevelLow, AnomalyLabel: models.LabelNormal},
	}

	summary, modelInsights := Summarize(windows)

	if summary.TotalActors != 2 {
		t.Errorf("total_actors = %d, want 2", summary.TotalActors)
	}
	if summary.TotalWindows != 3 {
		t.Errorf("total_windows = %d, want 3", summary.TotalWindows)
	}
	if summary.TotalAnomalies != 1 {
		t.Errorf("total_anomalies = %d, want 1", summary.TotalAnomalies)
	}
	if summary.HighRiskCount != 1 {
		t.Errorf("high_risk_count = %d, want 1", summary.HighRiskCount)
	}
	wantAvg := (90.0 + 55.0 + 10.0) / 3.0
	if summary.AvgRiskScore != wantAvg {
		t.Errorf("avg_risk_score = %v, want %v", summary.AvgRiskScore, wantAvg)
	}
	wantBins := [5]int{1, 0, 1, 0, 1}
	if summary.RiskDistribution != wantBins {
		t.Errorf("risk_distribution = %v, want %v", summary.RiskDistribution, wantBins)
	}

	if modelInsights.Algorithm != "Statistical Z-Score" {
		t.Errorf("algorithm = %q, want statistical for 3 windows", modelInsights.Algorithm)
	}
	if modelInsights.TopThreat == nil || modelInsights.TopThreat.IP != "a" || !modelInsights.TopThreat.Anomaly {
		t.Errorf("top_threat = %+v, want anomalous actor a", modelInsights.TopThreat)
	}
	if modelInsights.WindowSize != WindowSizeLabel {
		t.Errorf("window_size = %q", modelInsights.WindowSize)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	summary, modelInsights := Summarize(nil)
	if summary.TotalWindows != 0 || summary.TotalActors != 0 {
		t.Fatalf("unexpected summary for empty batch: %+v", summary)
	}
	if modelInsights.TopThreat != nil {
		t.Fatalf("top threat should be nil for empty batch")
	}
}

func TestSummarizeAlgorithmSwitch(t *testing.T) {
	large := make([]models.FeatureWindow, 50)
	_, modelInsights := Summarize(large)
	if modelInsights.Algorithm != "Isolation Forest" {
		t.Fatalf("algorithm = %q, want ensemble at 50 windows", modelInsights.Algorithm)
	}
}
