package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels completed analyses.
	OutcomeSuccess = "success"
	// OutcomeInvalid labels submissions rejected by schema or validation rules.
	OutcomeInvalid = "invalid"
	// OutcomeError labels internal failures.
	OutcomeError = "error"
)

var (
	analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "logward_detect",
			Name:      "analyses_total",
			Help:      "Total number of log analyses handled, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	analysisDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "logward_detect",
			Name:      "analysis_seconds",
			Help:      "Full pipeline latency in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 10},
		},
	)

	windowsScored = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "logward_detect",
			Name:      "windows_scored",
			Help:      "Feature windows produced per analysis.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
)

// Register attaches the service collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		analysesTotal,
		analysisDurationSeconds,
		windowsScored,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveAnalysis records an analysis duration and outcome label.
func ObserveAnalysis(duration time.Duration, outcome string, windows int) {
	switch outcome {
	case OutcomeInvalid, OutcomeError:
	default:
		outcome = OutcomeSuccess
	}
	analysesTotal.WithLabelValues(outcome).Inc()
	if duration < 0 {
		duration = 0
	}
	analysisDurationSeconds.Observe(duration.Seconds())
	if outcome == OutcomeSuccess {
		windowsScored.Observe(float64(windows))
	}
}
