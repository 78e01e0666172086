// Package features turns standardized log tables into per-actor behavioural
// feature windows.
package features

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/logwardstack/logward-detect/internal/models"
	"github.com/logwardstack/logward-detect/internal/schema"
	"github.com/logwardstack/logward-detect/internal/tabular"
	"github.com/logwardstack/logward-detect/internal/utils"
)

const (
	// WindowLength is the fixed aggregation bucket per actor.
	WindowLength = 5 * time.Minute

	windowMinutes   = 5.0
	failedStatusMin = 400
)

// event is one cleaned log row.
type event struct {
	ip       string
	ts       time.Time
	status   int
	endpoint string
}

// windowKey identifies one (actor, bucket) aggregate.
type windowKey struct {
	ip    string
	start time.Time
}

// Build standardizes the raw table and aggregates it into feature windows.
// It fails with a ValidationError on empty input, when no timestamp parses,
// or when cleaning leaves no usable rows; schema failures pass through as
// SchemaError.
func Build(raw *tabular.Table) ([]models.FeatureWindow, error) {
	if raw.NumRows() == 0 {
		return nil, utils.NewValidationError("the uploaded dataset is empty")
	}

	table, err := schema.Standardize(raw)
	if err != nil {
		return nil, err
	}

	timestamps, _ := table.Column(schema.ColumnTimestamp)
	statuses, _ := table.Column(schema.ColumnStatus)
	ips, _ := table.Column(schema.ColumnIP)
	endpoints, _ := table.Column(schema.ColumnEndpoint)

	parsed, ok := parseTimestamps(timestamps)
	anyParsed := false
	for _, v := range ok {
		if v {
			anyParsed = true
			break
		}
	}
	if !anyParsed {
		return nil, utils.NewValidationError("timestamp parsing failed for every row")
	}

	events := make([]event, 0, table.NumRows())
	for i := 0; i < table.NumRows(); i++ {
		if !ok[i] {
			continue
		}
		status, err := strconv.Atoi(strings.TrimSpace(statuses[i]))
		if err != nil {
			// non-numeric status counts as missing and drops the row
			continue
		}
		events = append(events, event{
			ip:       ips[i],
			ts:       parsed[i],
			status:   status,
			endpoint: endpoints[i],
		})
	}
	if len(events) == 0 {
		return nil, utils.NewValidationError("no rows remained after cleaning")
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].ts.Before(events[j].ts) })

	// windows keyed by (ip, left-aligned bucket start), emitted in first-seen
	// order over the time-sorted stream so output is deterministic
	grouped := make(map[windowKey][]event)
	order := make([]windowKey, 0)
	for _, ev := range events {
		key := windowKey{ip: ev.ip, start: ev.ts.Truncate(WindowLength)}
		if _, seen := grouped[key]; !seen {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], ev)
	}

	windows := make([]models.FeatureWindow, 0, len(order))
	for _, key := range order {
		windows = append(windows, aggregate(key, grouped[key]))
	}
	return windows, nil
}

func aggregate(key windowKey, events []event) models.FeatureWindow {
	total := len(events)
	failed := 0
	endpoints := make(map[string]struct{}, total)
	for _, ev := range events {
		if ev.status >= failedStatusMin {
			failed++
		}
		endpoints[ev.endpoint] = struct{}{}
	}

	successRatio := 1.0
	if total > 0 {
		successRatio = 1.0 - float64(failed)/float64(total)
	}

	return models.FeatureWindow{
		IP:                   key.ip,
		WindowStart:          key.start,
		TotalRequests:        total,
		FailedRequests:       failed,
		SuccessRatio:         successRatio,
		UniqueEndpoints:      len(endpoints),
		RequestRatePerMinute: float64(total) / windowMinutes,
		AvgTimeGapSeconds:    avgTimeGap(events),
		AnomalyLabel:         models.LabelNormal,
	}
}

// avgTimeGap is the mean of consecutive timestamp deltas inside the window,
// 0 when fewer than two events are present.
func avgTimeGap(events []event) float64 {
	if len(events) < 2 {
		return 0
	}
	sum := 0.0
	for i := 1; i < len(events); i++ {
		sum += events[i].ts.Sub(events[i-1].ts).Seconds()
	}
	return sum / float64(len(events)-1)
}
