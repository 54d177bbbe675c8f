package recommend

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/MatheusDSantossi/data-analyses-automate/internal/dataset"
	"github.com/MatheusDSantossi/data-analyses-automate/internal/normalize"
	"github.com/MatheusDSantossi/data-analyses-automate/internal/schema"
)

// fallbackSampleCap bounds how many rows the fallback ranking scans.
const fallbackSampleCap = 500

// DefaultMaxResults caps a reconciled batch when the caller passes 0.
const DefaultMaxResults = 4

// Result is the output of one reconciliation pass.
type Result struct {
	Charts []Recommendation
	// DateColumnsAvailable reports whether any column qualified as a
	// date column, which gates line/area charts.
	DateColumnsAvailable bool
}

// Reconcile validates untrusted AI chart suggestions against the real
// schema and repairs or replaces what it can. Unresolvable column
// references drop the suggestion, time-series charts without a date
// column are converted rather than discarded, forbidden and duplicate
// combos are filtered out, and when nothing survives a deterministic
// fallback set is synthesized from the column profiles. The returned
// list is never longer than maxResults.
func Reconcile(raws []RawRecommendation, sample []dataset.Row, profiles []schema.ColumnProfile, forbidden ComboSet, maxResults int) Result {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if forbidden == nil {
		forbidden = ComboSet{}
	}
	columns := schema.Names(profiles)
	dateCols := schema.DateColumns(profiles)
	hasDates := len(dateCols) > 0

	var resolved []Recommendation
	for _, raw := range raws {
		rec, ok := resolveFields(raw, columns)
		if !ok {
			continue
		}
		if rec.ChartType.IsTimeSeries() && !hasDates {
			if rec.GroupBy != "" {
				rec.ChartType = ChartDonut
				rec.Granularity = ""
				rec.DateField = ""
				rec.Explain = appendNote(rec.Explain, "shown as donut because no date column was found")
			} else {
				repl, ok := synthesizeOne(sample, profiles, forbidden)
				if !ok {
					continue
				}
				rec = repl
			}
		}
		resolved = append(resolved, rec)
	}

	charts := filterAndRank(resolved, forbidden, maxResults)
	if len(charts) == 0 {
		charts = synthesizeFallback(sample, profiles, forbidden, maxResults)
	}
	charts = diversityNudge(charts)
	if len(charts) > maxResults {
		charts = charts[:maxResults]
	}
	return Result{Charts: charts, DateColumnsAvailable: hasDates}
}

// resolveFields maps a raw suggestion's loose column references onto real
// column names. A non-empty reference that matches nothing rejects the
// whole suggestion.
func resolveFields(raw RawRecommendation, columns []string) (Recommendation, bool) {
	groupBy, ok := MatchColumn(raw.GroupBy, columns)
	if !ok {
		return Recommendation{}, false
	}
	metric, ok := MatchColumn(raw.Metric, columns)
	if !ok {
		return Recommendation{}, false
	}
	dateField, ok := MatchColumn(raw.DateField, columns)
	if !ok {
		dateField = ""
	}
	var score float64
	if raw.Score != nil && !math.IsNaN(*raw.Score) {
		score = math.Max(0, math.Min(1, *raw.Score))
	}
	return Recommendation{
		ChartType:   ChartType(strings.ToLower(strings.TrimSpace(raw.ChartType))),
		Title:       strings.TrimSpace(raw.Title),
		GroupBy:     groupBy,
		Metric:      metric,
		Aggregation: NormalizeAggregation(raw.Aggregation),
		Granularity: strings.ToLower(strings.TrimSpace(raw.Granularity)),
		DateField:   dateField,
		TopN:        raw.TopN,
		Score:       score,
		Explain:     strings.TrimSpace(raw.Explain),
	}, true
}

// filterAndRank drops forbidden combos, orders by score descending and
// keeps the first occurrence of each combo key.
func filterAndRank(recs []Recommendation, forbidden ComboSet, maxResults int) []Recommendation {
	kept := recs[:0:0]
	for _, r := range recs {
		if forbidden.Has(r.ComboKey()) {
			continue
		}
		kept = append(kept, r)
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Score > kept[j].Score })

	seen := map[string]struct{}{}
	out := make([]Recommendation, 0, len(kept))
	for _, r := range kept {
		key := r.ComboKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
		if len(out) >= maxResults {
			break
		}
	}
	return out
}

// synthesizeFallback builds deterministic bar charts from the schema when
// the AI produced nothing usable: top categorical columns by distinct
// sample values crossed with top numeric columns by summed magnitude.
func synthesizeFallback(sample []dataset.Row, profiles []schema.ColumnProfile, forbidden ComboSet, maxResults int) []Recommendation {
	cats := rankCategoricals(sample, profiles)
	nums := rankNumerics(sample, profiles)

	var out []Recommendation
	for _, cat := range cats {
		for _, num := range nums {
			if cat == num || forbidden.Has(ComboKey(cat, num)) {
				continue
			}
			out = append(out, Recommendation{
				ChartType:   ChartBar,
				Title:       fmt.Sprintf("Total %s by %s", num, cat),
				GroupBy:     cat,
				Metric:      num,
				Aggregation: AggSum,
				Score:       fallbackScore(len(out)),
				Explain:     "generated from the dataset structure",
			})
			if len(out) >= maxResults {
				return out
			}
		}
	}
	if len(out) == 0 {
		rec := Recommendation{
			ChartType:   ChartBar,
			Title:       "Row count",
			Aggregation: AggCount,
			Score:       fallbackScore(0),
			Explain:     "generated from the dataset structure",
		}
		if len(cats) > 0 {
			rec.GroupBy = cats[0]
			rec.Title = "Rows by " + cats[0]
		}
		if !forbidden.Has(rec.ComboKey()) {
			out = append(out, rec)
		}
	}
	return out
}

// synthesizeOne returns the single best fallback recommendation, used to
// replace a time-series suggestion that cannot be rescued in place.
func synthesizeOne(sample []dataset.Row, profiles []schema.ColumnProfile, forbidden ComboSet) (Recommendation, bool) {
	recs := synthesizeFallback(sample, profiles, forbidden, 1)
	if len(recs) == 0 {
		return Recommendation{}, false
	}
	return recs[0], true
}

func fallbackScore(rank int) float64 {
	s := 0.5 - float64(rank)*0.05
	if s < 0.05 {
		s = 0.05
	}
	return s
}

// rankCategoricals orders categorical column names by distinct value
// count in the sample, highest first. Ties keep schema order.
func rankCategoricals(sample []dataset.Row, profiles []schema.ColumnProfile) []string {
	sample = capSample(sample)
	type ranked struct {
		name     string
		distinct int
	}
	var cols []ranked
	for _, p := range profiles {
		if p.Kind != schema.KindCategorical {
			continue
		}
		seen := map[string]struct{}{}
		for _, row := range sample {
			v, ok := row[p.Name]
			if !ok || v == nil {
				continue
			}
			seen[fmt.Sprintf("%v", v)] = struct{}{}
		}
		cols = append(cols, ranked{p.Name, len(seen)})
	}
	sort.SliceStable(cols, func(i, j int) bool { return cols[i].distinct > cols[j].distinct })
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.name
	}
	return out
}

// rankNumerics orders numeric column names by summed absolute magnitude
// over the sample, highest first.
func rankNumerics(sample []dataset.Row, profiles []schema.ColumnProfile) []string {
	sample = capSample(sample)
	type ranked struct {
		name      string
		magnitude float64
	}
	var cols []ranked
	for _, p := range profiles {
		if p.Kind != schema.KindNumeric {
			continue
		}
		var sum float64
		for _, row := range sample {
			sum += math.Abs(normalize.ToNumber(row[p.Name]))
		}
		cols = append(cols, ranked{p.Name, sum})
	}
	sort.SliceStable(cols, func(i, j int) bool { return cols[i].magnitude > cols[j].magnitude })
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.name
	}
	return out
}

func capSample(rows []dataset.Row) []dataset.Row {
	if len(rows) > fallbackSampleCap {
		return rows[:fallbackSampleCap]
	}
	return rows
}

// diversityNudge converts the first group-by chart to donut when every
// surviving chart is a bar or line, so a batch is never visually uniform.
func diversityNudge(recs []Recommendation) []Recommendation {
	if len(recs) == 0 {
		return recs
	}
	for _, r := range recs {
		if r.ChartType != ChartBar && r.ChartType != ChartLine {
			return recs
		}
	}
	for i, r := range recs {
		if r.GroupBy != "" {
			recs[i].ChartType = ChartDonut
			recs[i].Granularity = ""
			recs[i].DateField = ""
			break
		}
	}
	return recs
}

func appendNote(explain, note string) string {
	if explain == "" {
		return note
	}
	return explain + " (" + note + ")"
}
