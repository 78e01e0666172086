package models

import "time"

// RiskLevel buckets the final fused risk score.
type RiskLevel string

const (
	RiskLevelHigh   RiskLevel = "HIGH"
	RiskLevelMedium RiskLevel = "MEDIUM"
	RiskLevelLow    RiskLevel = "LOW"
)

// Anomaly labels emitted by the detection stage.
const (
	LabelNormal  = 1
	LabelAnomaly = -1
)

// FeatureWindow aggregates one actor's behaviour inside a single 5-minute
// bucket. The first block is produced by the feature engineering stage and is
// immutable afterwards; the detection and risk stages fill in the rest.
type FeatureWindow struct {
	IP                   string    `json:"ip"`
	WindowStart          time.Time `json:"window_start"`
	TotalRequests        int       `json:"total_requests"`
	FailedRequests       int       `json:"failed_requests"`
	SuccessRatio         float64   `json:"success_ratio"`
	UniqueEndpoints      int       `json:"unique_endpoints"`
	RequestRatePerMinute float64   `json:"request_rate_per_minute"`
	AvgTimeGapSeconds    float64   `json:"avg_time_gap_seconds"`

	AnomalyLabel int       `json:"anomaly_label"`
	AnomalyScore float64   `json:"anomaly_score"`
	RiskScore    float64   `json:"risk_score"`
	RiskLevel    RiskLevel `json:"risk_level"`
}

// IsAnomaly reports whether the detection stage flagged this window.
func (w FeatureWindow) IsAnomaly() bool {
	return w.AnomalyLabel == LabelAnomaly
}
