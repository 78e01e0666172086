// Package schema normalises arbitrary tabular log exports onto the canonical
// attribute set {ip, timestamp, status, endpoint}.
package schema

import (
	"strings"

	"github.com/logwardstack/logward-detect/internal/tabular"
	"github.com/logwardstack/logward-detect/internal/utils"
)

// Canonical column names.
const (
	ColumnIP        = "ip"
	ColumnTimestamp = "timestamp"
	ColumnStatus    = "status"
	ColumnEndpoint  = "endpoint"
)

// Defaults applied when an optional canonical column is absent.
const (
	DefaultIP       = "global"
	DefaultStatus   = "200"
	DefaultEndpoint = "unknown"
)

// variantSet maps a canonical column to its accepted aliases, in match
// priority order. The canonical name itself always wins over any alias.
type variantSet struct {
	canonical string
	variants  []string
}

var columnVariants = []variantSet{
	{canonical: ColumnIP, variants: []string{"ip_address", "source_ip", "client_ip"}},
	{canonical: ColumnTimestamp, variants: []string{"time", "datetime", "event_time"}},
	{canonical: ColumnStatus, variants: []string{"response_code", "status_code"}},
	{canonical: ColumnEndpoint, variants: []string{"url", "uri", "path", "request"}},
}

// Standardize returns a copy of the table with headers trimmed and lowered,
// variant columns renamed to their canonical names, and defaults filled in
// for missing optional columns. A table with no timestamp-equivalent column
// is rejected with a SchemaError. The input table is never mutated.
func Standardize(t *tabular.Table) (*tabular.Table, error) {
	if t == nil {
		return nil, utils.NewSchemaError("no input table")
	}

	out := t.Clone()
	for i, col := range out.Columns {
		out.Columns[i] = strings.ToLower(strings.TrimSpace(col))
	}

	existing := make(map[string]struct{}, len(out.Columns))
	for _, col := range out.Columns {
		existing[col] = struct{}{}
	}

	// canonical name present => aliases ignored; otherwise first alias wins
	rename := make(map[string]string)
	for _, set := range columnVariants {
		if _, ok := existing[set.canonical]; ok {
			continue
		}
		for _, variant := range set.variants {
			if _, ok := existing[variant]; ok {
				rename[variant] = set.canonical
				break
			}
		}
	}
	for i, col := range out.Columns {
		if target, ok := rename[col]; ok {
			out.Columns[i] = target
		}
	}

	if !out.HasColumn(ColumnTimestamp) {
		return nil, utils.NewSchemaError("missing timestamp: no %q column or accepted variant found", ColumnTimestamp)
	}

	if !out.HasColumn(ColumnIP) {
		out.AddConstantColumn(ColumnIP, DefaultIP)
	}
	if !out.HasColumn(ColumnStatus) {
		out.AddConstantColumn(ColumnStatus, DefaultStatus)
	}
	if !out.HasColumn(ColumnEndpoint) {
		out.AddConstantColumn(ColumnEndpoint, DefaultEndpoint)
	}

	return out, nil
}
