// Package aggregate turns classified rows into chart-ready summaries:
// grouped totals for bar/pie/donut charts and aligned multi-series time
// tables for line/area charts. Monetary-style values are accumulated in
// integer cents to avoid floating summation drift.
package aggregate

import (
	"fmt"
	"sort"

	"github.com/MatheusDSantossi/data-analyses-automate/internal/dataset"
	"github.com/MatheusDSantossi/data-analyses-automate/internal/normalize"
)

// MissingGroupKey labels rows whose group-by cell is empty.
const MissingGroupKey = "N/A"

// GroupRow is one aggregated group: the group key, per-metric totals
// (2-decimal rounded) and the number of source rows.
type GroupRow struct {
	GroupKey     string             `json:"groupKey"`
	MetricTotals map[string]float64 `json:"metricTotals"`
	RowCount     int                `json:"rowCount"`
}

// GroupOptions controls sorting and truncation of grouped output.
type GroupOptions struct {
	// TopN truncates to the N largest groups after sorting; 0 keeps all.
	TopN int
	// SortDesc orders groups by descending total; when false the
	// first-seen group order is preserved. Groups without metric fields
	// sort by row count.
	SortDesc bool
}

// DefaultGroupOptions sorts descending and keeps all groups.
func DefaultGroupOptions() GroupOptions {
	return GroupOptions{SortDesc: true}
}

// Groups buckets rows by the stringified value of groupField and sums each
// metric field per bucket. Group keys in the output are unique; totals are
// accumulated in integer cents and rounded to 2 decimals on the way out.
func Groups(rows []dataset.Row, groupField string, metricFields []string, opt GroupOptions) []GroupRow {
	type acc struct {
		cents map[string]int64
		count int
	}
	buckets := make(map[string]*acc)
	var order []string

	for _, row := range rows {
		key := MissingGroupKey
		if v := row[groupField]; v != nil {
			if s := fmt.Sprint(v); s != "" {
				key = s
			}
		}
		a := buckets[key]
		if a == nil {
			a = &acc{cents: make(map[string]int64, len(metricFields))}
			buckets[key] = a
			order = append(order, key)
		}
		a.count++
		for _, m := range metricFields {
			a.cents[m] += normalize.Cents(normalize.ToNumber(row[m]))
		}
	}

	out := make([]GroupRow, 0, len(order))
	for _, key := range order {
		a := buckets[key]
		totals := make(map[string]float64, len(metricFields))
		for _, m := range metricFields {
			totals[m] = normalize.FromCents(a.cents[m])
		}
		out = append(out, GroupRow{GroupKey: key, MetricTotals: totals, RowCount: a.count})
	}

	if opt.SortDesc {
		sort.SliceStable(out, func(i, j int) bool {
			return combinedTotal(out[i]) > combinedTotal(out[j])
		})
	}
	if opt.TopN > 0 && len(out) > opt.TopN {
		out = out[:opt.TopN]
	}
	return out
}

func combinedTotal(g GroupRow) float64 {
	if len(g.MetricTotals) == 0 {
		return float64(g.RowCount)
	}
	var t float64
	for _, v := range g.MetricTotals {
		t += v
	}
	return t
}
