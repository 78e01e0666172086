// Package engine composes the analysis pipeline: schema normalization,
// feature engineering, hybrid anomaly detection, and risk scoring.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/logwardstack/logward-detect/internal/detectors"
	"github.com/logwardstack/logward-detect/internal/features"
	"github.com/logwardstack/logward-detect/internal/insights"
	"github.com/logwardstack/logward-detect/internal/models"
	"github.com/logwardstack/logward-detect/internal/tabular"
)

// Pipeline runs the full batch transformation for one submission. It holds
// no mutable state between runs, so concurrent invocations are safe.
type Pipeline struct {
	logger *slog.Logger
	scorer *RiskScorer
}

// NewPipeline constructs a pipeline with the given risk scorer.
func NewPipeline(logger *slog.Logger, scorer *RiskScorer) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if scorer == nil {
		scorer = NewRiskScorer(DefaultWeights(), logger)
	}
	return &Pipeline{logger: logger, scorer: scorer}
}

// DetectAndScore runs the detection and risk stages over prepared feature
// windows. An empty input yields an empty ranked result.
func (p *Pipeline) DetectAndScore(windows []models.FeatureWindow) []models.FeatureWindow {
	detected := detectors.Detect(windows)
	return p.scorer.ScoreAndRank(detected)
}

// Analyze executes the whole pipeline over a raw log table and assembles
// the report. Failures abort the run; a report is only returned when every
// stage completed.
func (p *Pipeline) Analyze(ctx context.Context, table *tabular.Table) (models.Report, error) {
	if err := ctx.Err(); err != nil {
		return models.Report{}, err
	}

	windows, err := features.Build(table)
	if err != nil {
		return models.Report{}, err
	}
	p.logger.Debug("feature windows built",
		slog.Int("rows", table.NumRows()), slog.Int("windows", len(windows)))

	ranked := p.DetectAndScore(windows)

	summary, modelInsights := insights.Summarize(ranked)
	return models.Report{
		CreatedAt: time.Now().UTC(),
		Summary:   summary,
		Insights:  modelInsights,
		Windows:   ranked,
	}, nil
}
