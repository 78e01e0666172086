package features

import (
	"strings"
	"time"
)

// genericLayouts are tried first, covering ISO-style exports.
var genericLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
}

// Common Log Format timestamps, with and without the zone offset.
const (
	clfLayout       = "02/Jan/2006:15:04:05 -0700"
	clfLayoutNoZone = "02/Jan/2006:15:04:05"
)

// parseTimestamps runs the layout ladder over the raw values. Stage one uses
// the generic layouts; each fallback stage only runs while more than half the
// rows are still unparsed. ok[i] reports whether row i parsed.
func parseTimestamps(values []string) (parsed []time.Time, ok []bool) {
	parsed = make([]time.Time, len(values))
	ok = make([]bool, len(values))
	if len(values) == 0 {
		return parsed, ok
	}

	cleaned := make([]string, len(values))
	for i, v := range values {
		cleaned[i] = strings.Trim(strings.TrimSpace(v), "[]")
	}

	unparsed := len(values)
	for i, v := range cleaned {
		if t, err := parseGeneric(v); err == nil {
			parsed[i], ok[i] = t, true
			unparsed--
		}
	}

	for _, layout := range []string{clfLayout, clfLayoutNoZone} {
		if unparsed*2 <= len(values) {
			break
		}
		for i, v := range cleaned {
			if ok[i] {
				continue
			}
			if t, err := time.Parse(layout, v); err == nil {
				parsed[i], ok[i] = t, true
				unparsed--
			}
		}
	}

	return parsed, ok
}

func parseGeneric(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range genericLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
