package aggregate

import (
	"fmt"
	"sort"
	"time"

	"github.com/MatheusDSantossi/data-analyses-automate/internal/dataset"
	"github.com/MatheusDSantossi/data-analyses-automate/internal/normalize"
)

// Granularity is the time-bucket resolution for time-series aggregation.
type Granularity string

const (
	GranularityDay       Granularity = "day"
	GranularityMonthYear Granularity = "month-year"
	GranularityYear      Granularity = "year"
	GranularityNone      Granularity = "none"
)

// NormalizeGranularity maps loose AI-supplied granularity strings onto the
// supported set, defaulting to month-year.
func NormalizeGranularity(s string) Granularity {
	switch Granularity(s) {
	case GranularityDay:
		return GranularityDay
	case GranularityYear:
		return GranularityYear
	case GranularityMonthYear, Granularity("month"):
		return GranularityMonthYear
	default:
		return GranularityMonthYear
	}
}

// SingleSeriesName labels the sole series when no group-by is supplied.
const SingleSeriesName = "__all__"

// UnknownGroupName labels rows whose group-by cell is empty in time-series
// output.
const UnknownGroupName = "Unknown"

// Series is one named line of a time-series table. Data is positionally
// aligned to the parent result's Categories.
type Series struct {
	Name  string    `json:"name"`
	Data  []float64 `json:"data"`
	Total float64   `json:"total"`
}

// TimeSeriesResult holds chronologically sorted bucket labels and the
// aligned per-group series. Every series has exactly len(Categories)
// data points; buckets a group never hit are zero-filled.
type TimeSeriesResult struct {
	Categories []string `json:"categories"`
	Series     []Series `json:"series"`
}

// TimeSeriesOptions configures a time-series aggregation pass.
type TimeSeriesOptions struct {
	DateField    string
	ValueField   string
	GroupByField string // empty means a single aggregated series
	Granularity  Granularity
	TopN         int // keep only the N groups with the largest totals; 0 keeps all
	Locale       string
	DateHints    normalize.DateHints
}

// TimeSeries buckets rows by the parsed date field at the requested
// granularity and sums the value field per (group, bucket) in integer
// cents. Rows whose date cell does not parse are skipped silently.
func TimeSeries(rows []dataset.Row, opt TimeSeriesOptions) TimeSeriesResult {
	if opt.Granularity == "" || opt.Granularity == GranularityNone {
		opt.Granularity = GranularityMonthYear
	}

	groupCents := make(map[string]map[string]int64) // group -> bucket key -> cents
	bucketLabels := make(map[string]string)
	var groupOrder []string

	for _, row := range rows {
		t, ok := normalize.ParseFlexibleDateHint(row[opt.DateField], opt.DateHints)
		if !ok {
			continue
		}
		key, label := bucketKeyAndLabel(t, opt.Granularity, opt.Locale)
		bucketLabels[key] = label

		group := SingleSeriesName
		if opt.GroupByField != "" {
			group = UnknownGroupName
			if v := row[opt.GroupByField]; v != nil {
				if s := fmt.Sprint(v); s != "" {
					group = s
				}
			}
		}
		g := groupCents[group]
		if g == nil {
			g = make(map[string]int64)
			groupCents[group] = g
			groupOrder = append(groupOrder, group)
		}
		g[key] += normalize.Cents(normalize.ToNumber(row[opt.ValueField]))
	}

	// chronological, de-duplicated bucket key list
	keys := make([]string, 0, len(bucketLabels))
	for k := range bucketLabels {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return bucketKeyTime(keys[i]).Before(bucketKeyTime(keys[j]))
	})

	// rank groups by total value descending
	type ranked struct {
		name  string
		cents map[string]int64
		total int64
	}
	groups := make([]ranked, 0, len(groupOrder))
	for _, name := range groupOrder {
		var total int64
		for _, c := range groupCents[name] {
			total += c
		}
		groups = append(groups, ranked{name: name, cents: groupCents[name], total: total})
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].total > groups[j].total })
	if opt.TopN > 0 && len(groups) > opt.TopN {
		groups = groups[:opt.TopN]
	}

	res := TimeSeriesResult{Categories: make([]string, len(keys))}
	for i, k := range keys {
		res.Categories[i] = bucketLabels[k]
	}
	for _, g := range groups {
		data := make([]float64, len(keys))
		for i, k := range keys {
			data[i] = normalize.FromCents(g.cents[k])
		}
		res.Series = append(res.Series, Series{Name: g.name, Data: data, Total: normalize.FromCents(g.total)})
	}
	return res
}

// bucketKeyAndLabel produces the sortable bucket key and its display
// label: day -> "2006-01-02", month-year -> "2006-01" labeled "Jan 2006",
// year -> "2006".
func bucketKeyAndLabel(t time.Time, g Granularity, locale string) (string, string) {
	switch g {
	case GranularityYear:
		key := fmt.Sprintf("%04d", t.Year())
		return key, key
	case GranularityDay:
		key := t.Format("2006-01-02")
		return key, fmt.Sprintf("%s %02d, %d", monthLabel(t.Month(), locale), t.Day(), t.Year())
	default:
		key := t.Format("2006-01")
		return key, fmt.Sprintf("%s %d", monthLabel(t.Month(), locale), t.Year())
	}
}

// bucketKeyTime parses a bucket key back into a representative instant for
// chronological sorting.
func bucketKeyTime(key string) time.Time {
	switch len(key) {
	case 4:
		t, _ := time.Parse("2006", key)
		return t
	case 7:
		t, _ := time.Parse("2006-01", key)
		return t
	default:
		t, _ := time.Parse("2006-01-02", key)
		return t
	}
}

var shortMonths = map[string][12]string{
	"en-US": {"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
	"pt-BR": {"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"},
}

func monthLabel(m time.Month, locale string) string {
	if names, ok := shortMonths[locale]; ok {
		return names[m-1]
	}
	return shortMonths["en-US"][m-1]
}
