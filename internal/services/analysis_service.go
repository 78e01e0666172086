package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/logwardstack/logward-detect/internal/cache"
	"github.com/logwardstack/logward-detect/internal/engine"
	"github.com/logwardstack/logward-detect/internal/metrics"
	"github.com/logwardstack/logward-detect/internal/models"
	"github.com/logwardstack/logward-detect/internal/tabular"
	"github.com/logwardstack/logward-detect/internal/utils"
	pkgcache "github.com/logwardstack/logward-detect/pkg/cache"
)

// AnalysisService orchestrates CSV ingestion, detection and report retention.
type AnalysisService struct {
	logger    *slog.Logger
	pipeline  *engine.Pipeline
	reports   *pkgcache.ResultStore
	shared    cache.Provider
	reportTTL time.Duration
	latencies *utils.LatencyTracker
}

// NewAnalysisService constructs the analysis facade. A nil shared cache
// disables cross-instance memoisation.
func NewAnalysisService(logger *slog.Logger, pipeline *engine.Pipeline, reports *pkgcache.ResultStore, shared cache.Provider, reportTTL time.Duration) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	if shared == nil {
		shared = cache.NoopProvider{}
	}
	if reportTTL <= 0 {
		reportTTL = 10 * time.Minute
	}
	return &AnalysisService{
		logger:    logger,
		pipeline:  pipeline,
		reports:   reports,
		shared:    shared,
		reportTTL: reportTTL,
		latencies: utils.NewLatencyTracker(1024),
	}
}

// Analyze runs the full detection pipeline over a raw CSV payload and
// retains the resulting report for later retrieval.
//
// Identical payloads are memoised through the shared cache keyed by content
// digest, so re-uploads of the same file skip the detection pass. The
// memoised report still receives a fresh submission ID.
func (s *AnalysisService) Analyze(ctx context.Context, fileName string, raw []byte) (*models.Report, error) {
	if s.pipeline == nil {
		return nil, fmt.Errorf("analysis pipeline not configured")
	}
	if len(raw) == 0 {
		return nil, utils.NewValidationError("uploaded file is empty")
	}

	digest := contentDigest(raw)
	if report, ok := s.cachedReport(ctx, digest); ok {
		report.SubmissionID = uuid.NewString()
		report.FileName = fileName
		report.CreatedAt = time.Now().UTC()
		s.reports.Put(report.SubmissionID, report)
		s.logger.Debug("analysis served from cache",
			slog.String("digest", digest), slog.String("file", fileName))
		return report, nil
	}

	table, err := tabular.FromCSV(bytes.NewReader(raw))
	if err != nil {
		metrics.ObserveAnalysis(0, metrics.OutcomeInvalid, 0)
		return nil, utils.NewValidationError("parse CSV: %v", err)
	}

	start := time.Now()
	result, err := s.pipeline.Analyze(ctx, table)
	duration := time.Since(start)
	if err != nil {
		outcome := metrics.OutcomeError
		var se *utils.SchemaError
		var ve *utils.ValidationError
		if errors.As(err, &se) || errors.As(err, &ve) {
			outcome = metrics.OutcomeInvalid
		}
		metrics.ObserveAnalysis(duration, outcome, 0)
		s.logger.Error("analysis failed", slog.String("file", fileName), slog.Any("error", err))
		return nil, err
	}

	report := &result
	report.SubmissionID = uuid.NewString()
	report.FileName = fileName
	report.CreatedAt = time.Now().UTC()

	s.reports.Put(report.SubmissionID, report)
	s.storeCached(ctx, digest, report)

	s.latencies.Observe(duration)
	metrics.ObserveAnalysis(duration, metrics.OutcomeSuccess, len(report.Windows))
	if count := s.latencies.Count(); count >= 20 && count%20 == 0 {
		p95 := s.latencies.Percentile(95)
		s.logger.Info("analysis latency", slog.Duration("p95", p95), slog.Int("samples", count))
	}

	s.logger.Info("analysis complete",
		slog.String("submission_id", report.SubmissionID),
		slog.String("file", fileName),
		slog.Int("windows", len(report.Windows)),
		slog.Int("anomalies", report.Summary.TotalAnomalies),
		slog.Duration("took", duration))

	return report, nil
}

// Report returns a previously produced report by submission ID.
func (s *AnalysisService) Report(id string) (*models.Report, bool) {
	if s.reports == nil {
		return nil, false
	}
	value, ok := s.reports.Get(id)
	if !ok {
		return nil, false
	}
	report, ok := value.(*models.Report)
	return report, ok
}

// LatencyP95 returns the current p95 analysis latency.
func (s *AnalysisService) LatencyP95() time.Duration {
	return s.latencies.Percentile(95)
}

func (s *AnalysisService) cachedReport(ctx context.Context, digest string) (*models.Report, bool) {
	data, err := s.shared.Get(ctx, digest)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("report cache lookup failed", slog.Any("error", err))
		}
		return nil, false
	}
	var report models.Report
	if err := json.Unmarshal(data, &report); err != nil {
		s.logger.Warn("report cache entry corrupt", slog.Any("error", err))
		return nil, false
	}
	return &report, true
}

func (s *AnalysisService) storeCached(ctx context.Context, digest string, report *models.Report) {
	data, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := s.shared.Set(ctx, digest, data, s.reportTTL); err != nil {
		s.logger.Warn("report cache store failed", slog.Any("error", err))
	}
}

func contentDigest(raw []byte) string {
	sum := sha256.Sum256(raw)
	return "report:" + hex.EncodeToString(sum[:])
}
