package charts

import (
	"regexp"

	"github.com/google/uuid"

	"github.com/MatheusDSantossi/data-analyses-automate/internal/aggregate"
	"github.com/MatheusDSantossi/data-analyses-automate/internal/dataset"
	"github.com/MatheusDSantossi/data-analyses-automate/internal/normalize"
	"github.com/MatheusDSantossi/data-analyses-automate/internal/recommend"
	"github.com/MatheusDSantossi/data-analyses-automate/internal/schema"
)

// Payload carries the renderable data of one chart: grouped rows for
// bar/pie/donut, categories+series for line/area. Exactly one shape is
// populated.
type Payload struct {
	GroupRows  []aggregate.GroupRow `json:"groupRows,omitempty"`
	Categories []string             `json:"categories,omitempty"`
	Series     []aggregate.Series   `json:"series,omitempty"`
}

// GeneratedChart is a reconciled, materialized chart ready for
// rendering. Invalid charts carry an error string instead of a payload
// so a batch never loses slots to one bad recommendation.
type GeneratedChart struct {
	ID                   string                   `json:"id"`
	Kind                 recommend.ChartType      `json:"kind"`
	Title                string                   `json:"title"`
	Recommendation       recommend.Recommendation `json:"recommendation"`
	Payload              *Payload                 `json:"payload,omitempty"`
	Valid                bool                     `json:"valid"`
	Error                string                   `json:"error,omitempty"`
	Regenerating         bool                     `json:"regenerating"`
	RegenerationAttempts int                      `json:"regenerationAttempts"`
}

// Options tunes materialization without touching the recommendation.
type Options struct {
	Locale    string
	DateHints normalize.DateHints
	// DefaultTopN truncates grouped charts when the recommendation
	// carries no TopN of its own; 0 keeps all groups.
	DefaultTopN int
}

// dateNamePattern picks the most likely date column by header name when a
// time-series recommendation does not name one.
var dateNamePattern = regexp.MustCompile(`(?i)date|data|dt`)

// Materialize turns a validated recommendation plus the dataset into a
// GeneratedChart. It never returns an error: anything that cannot be
// charted comes back as an invalid chart with a reason, so the caller
// can render a degraded slot in place.
func Materialize(rec recommend.Recommendation, ds *dataset.Dataset, profiles []schema.ColumnProfile, opt Options) GeneratedChart {
	chart := GeneratedChart{
		ID:             uuid.NewString(),
		Kind:           rec.ChartType,
		Title:          rec.Title,
		Recommendation: rec,
	}
	switch rec.ChartType {
	case recommend.ChartBar, recommend.ChartPie, recommend.ChartDonut:
		return materializeGrouped(chart, rec, ds, opt)
	case recommend.ChartLine, recommend.ChartArea:
		return materializeTimeSeries(chart, rec, ds, profiles, opt)
	default:
		chart.Error = "Unsupported chart type"
		return chart
	}
}

func materializeGrouped(chart GeneratedChart, rec recommend.Recommendation, ds *dataset.Dataset, opt Options) GeneratedChart {
	if rec.GroupBy == "" || !ds.HasColumn(rec.GroupBy) {
		chart.Error = "Group-by column not found in data"
		return chart
	}
	countOnly := rec.Aggregation == recommend.AggCount && rec.Metric == ""
	if !countOnly && (rec.Metric == "" || !ds.HasColumn(rec.Metric)) {
		chart.Error = "Metric column not found in data"
		return chart
	}
	gopt := aggregate.DefaultGroupOptions()
	gopt.TopN = topN(rec, opt)
	var metrics []string
	if !countOnly {
		metrics = []string{rec.Metric}
	}
	rows := aggregate.Groups(ds.Rows, rec.GroupBy, metrics, gopt)
	if rec.Aggregation == recommend.AggAvg {
		for i := range rows {
			if rows[i].RowCount == 0 {
				continue
			}
			for m, total := range rows[i].MetricTotals {
				rows[i].MetricTotals[m] = normalize.Round2(total / float64(rows[i].RowCount))
			}
		}
	}
	chart.Payload = &Payload{GroupRows: rows}
	chart.Valid = true
	return chart
}

func materializeTimeSeries(chart GeneratedChart, rec recommend.Recommendation, ds *dataset.Dataset, profiles []schema.ColumnProfile, opt Options) GeneratedChart {
	dateField := resolveDateField(rec, ds, profiles)
	if dateField == "" {
		chart.Error = "No date column available for a time-series chart"
		return chart
	}
	if rec.Metric == "" || !ds.HasColumn(rec.Metric) {
		chart.Error = "Metric column not found in data"
		return chart
	}
	result := aggregate.TimeSeries(ds.Rows, aggregate.TimeSeriesOptions{
		DateField:    dateField,
		ValueField:   rec.Metric,
		GroupByField: rec.GroupBy,
		Granularity:  aggregate.NormalizeGranularity(rec.Granularity),
		TopN:         topN(rec, opt),
		Locale:       opt.Locale,
		DateHints:    opt.DateHints,
	})
	chart.Payload = &Payload{Categories: result.Categories, Series: result.Series}
	chart.Valid = true
	return chart
}

// resolveDateField picks the date axis: the recommendation's explicit
// field first, then the detected date column with a date-like header
// name, then any detected date column.
func resolveDateField(rec recommend.Recommendation, ds *dataset.Dataset, profiles []schema.ColumnProfile) string {
	if rec.DateField != "" && ds.HasColumn(rec.DateField) {
		return rec.DateField
	}
	dateCols := schema.DateColumns(profiles)
	for _, c := range dateCols {
		if dateNamePattern.MatchString(c) {
			return c
		}
	}
	if len(dateCols) > 0 {
		return dateCols[0]
	}
	return ""
}

func topN(rec recommend.Recommendation, opt Options) int {
	if rec.TopN > 0 {
		return rec.TopN
	}
	return opt.DefaultTopN
}
