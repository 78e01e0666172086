package models

import "time"

// Report is the terminal output of one analysis run: the ranked feature
// windows plus summary figures for rendering.
type Report struct {
	SubmissionID string          `json:"submission_id"`
	FileName     string          `json:"file_name,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	Summary      ReportSummary   `json:"summary"`
	Insights     ModelInsights   `json:"insights"`
	Windows      []FeatureWindow `json:"windows"`
}

// ReportSummary carries the headline figures for a batch.
type ReportSummary struct {
	TotalActors    int `json:"total_actors"`
	TotalWindows   int `json:"total_windows"`
	TotalAnomalies int `json:"total_anomalies"`
	HighRiskCount  int `json:"high_risk_count"`

	AvgRiskScore float64 `json:"avg_risk_score"`

	// RiskDistribution counts windows in the buckets
	// [0,20], (20,40], (40,60], (60,80], (80,100].
	RiskDistribution    [5]int     `json:"risk_distribution"`
	RiskDistributionPct [5]float64 `json:"risk_distribution_pct"`
}

// ModelInsights describes which algorithm handled the batch and the
// strongest threat it surfaced.
type ModelInsights struct {
	Algorithm     string     `json:"algorithm"`
	WindowSize    string     `json:"window_size"`
	Contamination string     `json:"contamination"`
	TopThreat     *TopThreat `json:"top_threat,omitempty"`
}

// TopThreat identifies the highest-risk actor window in a batch.
type TopThreat struct {
	IP        string  `json:"ip"`
	RiskScore float64 `json:"risk_score"`
	Anomaly   bool    `json:"anomaly"`
}
