package recommend

import (
	"strings"
)

// ChartType is the set of chart kinds the renderer understands.
type ChartType string

const (
	ChartBar   ChartType = "bar"
	ChartLine  ChartType = "line"
	ChartPie   ChartType = "pie"
	ChartDonut ChartType = "donut"
	ChartArea  ChartType = "area"
)

// KnownChartType reports whether t names a renderable chart kind.
func KnownChartType(t ChartType) bool {
	switch t {
	case ChartBar, ChartLine, ChartPie, ChartDonut, ChartArea:
		return true
	}
	return false
}

// IsTimeSeries reports whether the chart kind needs a date axis.
func (t ChartType) IsTimeSeries() bool {
	return t == ChartLine || t == ChartArea
}

// Aggregation is how a metric is reduced per group.
type Aggregation string

const (
	AggSum   Aggregation = "sum"
	AggAvg   Aggregation = "avg"
	AggCount Aggregation = "count"
	AggNone  Aggregation = "none"
)

// NormalizeAggregation maps free-form AI output onto a known aggregation,
// defaulting to sum.
func NormalizeAggregation(s string) Aggregation {
	switch Aggregation(strings.ToLower(strings.TrimSpace(s))) {
	case AggAvg, "average", "mean":
		return AggAvg
	case AggCount:
		return AggCount
	case AggNone:
		return AggNone
	default:
		return AggSum
	}
}

// RawRecommendation is one untrusted chart suggestion exactly as the AI
// produced it. Field types are deliberately loose; nothing here is
// usable until Reconcile has resolved it against the real schema.
type RawRecommendation struct {
	ChartType   string   `json:"chartType"`
	Title       string   `json:"title"`
	GroupBy     string   `json:"groupBy"`
	Metric      string   `json:"metric"`
	Aggregation string   `json:"aggregation"`
	Granularity string   `json:"granularity"`
	DateField   string   `json:"dateField"`
	TopN        int      `json:"topN"`
	Score       *float64 `json:"score"`
	Explain     string   `json:"explain"`
}

// Recommendation is a validated chart suggestion whose column references
// are guaranteed to exist in the dataset.
type Recommendation struct {
	ChartType   ChartType   `json:"chartType"`
	Title       string      `json:"title"`
	GroupBy     string      `json:"groupBy,omitempty"`
	Metric      string      `json:"metric,omitempty"`
	Aggregation Aggregation `json:"aggregation"`
	Granularity string      `json:"granularity,omitempty"`
	DateField   string      `json:"dateField,omitempty"`
	TopN        int         `json:"topN,omitempty"`
	Score       float64     `json:"score"`
	Explain     string      `json:"explain,omitempty"`
}

// ComboKey identifies the (groupBy, metric) data binding of a
// recommendation. Recommendations sharing a combo key show the same data
// and are treated as duplicates.
func (r Recommendation) ComboKey() string {
	return ComboKey(r.GroupBy, r.Metric)
}

// ComboKey builds the dedup key for a group-by/metric pair. Empty fields
// stay empty so "no group" and "no metric" are first-class keys.
func ComboKey(groupBy, metric string) string {
	return groupBy + "||" + metric
}

// ComboSet tracks combo keys already shown this session. Append-only
// until a new file load resets it.
type ComboSet map[string]struct{}

func (s ComboSet) Add(key string)      { s[key] = struct{}{} }
func (s ComboSet) Has(key string) bool { _, ok := s[key]; return ok }

// Keys returns the set contents in unspecified order.
func (s ComboSet) Keys() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	return out
}
