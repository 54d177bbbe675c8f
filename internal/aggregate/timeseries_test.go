package aggregate

import (
	"testing"

	"github.com/MatheusDSantossi/data-analyses-automate/internal/dataset"
	"github.com/MatheusDSantossi/data-analyses-automate/internal/normalize"
)

func TestTimeSeriesAlignmentAndGapFilling(t *testing.T) {
	rows := []dataset.Row{
		{"Data": "05/01/2024", "Valor": "100,00", "Loja": "Norte"},
		{"Data": "10/02/2024", "Valor": "200,00", "Loja": "Norte"},
		{"Data": "15/03/2024", "Valor": "50,00", "Loja": "Norte"},
		{"Data": "20/01/2024", "Valor": "300,00", "Loja": "Sul"},
		// Sul has no February or March rows; its series must be
		// zero-filled for those buckets.
	}
	got := TimeSeries(rows, TimeSeriesOptions{
		DateField:    "Data",
		ValueField:   "Valor",
		GroupByField: "Loja",
		Granularity:  GranularityMonthYear,
	})

	if len(got.Categories) != 3 {
		t.Fatalf("categories = %v", got.Categories)
	}
	want := []string{"Jan 2024", "Feb 2024", "Mar 2024"}
	for i, w := range want {
		if got.Categories[i] != w {
			t.Fatalf("categories = %v, want %v", got.Categories, want)
		}
	}
	if len(got.Series) != 2 {
		t.Fatalf("series count = %d", len(got.Series))
	}
	for _, s := range got.Series {
		if len(s.Data) != len(got.Categories) {
			t.Fatalf("series %q has %d points for %d categories", s.Name, len(s.Data), len(got.Categories))
		}
	}
	// Norte totals 350 > Sul 300, so Norte ranks first.
	if got.Series[0].Name != "Norte" || got.Series[0].Total != 350 {
		t.Fatalf("first series = %+v", got.Series[0])
	}
	sul := got.Series[1]
	if sul.Name != "Sul" {
		t.Fatalf("second series = %+v", sul)
	}
	if sul.Data[0] != 300 || sul.Data[1] != 0 || sul.Data[2] != 0 {
		t.Fatalf("Sul data not gap-filled: %v", sul.Data)
	}
}

func TestTimeSeriesZeroHintsReadDayFirst(t *testing.T) {
	// Ambiguous cells must be bucketed the same way the default parser
	// reads them when no hints are supplied.
	rows := []dataset.Row{
		{"Data": "05/01/2024", "Valor": "100,00"},
	}
	got := TimeSeries(rows, TimeSeriesOptions{DateField: "Data", ValueField: "Valor"})
	if len(got.Categories) != 1 || got.Categories[0] != "Jan 2024" {
		t.Fatalf("categories = %v, want [Jan 2024]", got.Categories)
	}

	got = TimeSeries(rows, TimeSeriesOptions{
		DateField:  "Data",
		ValueField: "Valor",
		DateHints:  normalize.DateHints{MonthFirst: true},
	})
	if len(got.Categories) != 1 || got.Categories[0] != "May 2024" {
		t.Fatalf("month-first categories = %v, want [May 2024]", got.Categories)
	}
}

func TestTimeSeriesSingleSeries(t *testing.T) {
	rows := []dataset.Row{
		{"Data": "2024-01-05", "Valor": 10},
		{"Data": "2024-01-20", "Valor": 15},
		{"Data": "2024-02-01", "Valor": 5},
	}
	got := TimeSeries(rows, TimeSeriesOptions{DateField: "Data", ValueField: "Valor"})
	if len(got.Series) != 1 || got.Series[0].Name != SingleSeriesName {
		t.Fatalf("series = %+v", got.Series)
	}
	if got.Series[0].Total != 30 {
		t.Fatalf("total = %v", got.Series[0].Total)
	}
	if got.Series[0].Data[0] != 25 || got.Series[0].Data[1] != 5 {
		t.Fatalf("data = %v", got.Series[0].Data)
	}
}

func TestTimeSeriesSkipsUnparseableDates(t *testing.T) {
	rows := []dataset.Row{
		{"Data": "2024-01-05", "Valor": 10},
		{"Data": "not a date", "Valor": 999},
		{"Data": nil, "Valor": 999},
	}
	got := TimeSeries(rows, TimeSeriesOptions{DateField: "Data", ValueField: "Valor"})
	if len(got.Categories) != 1 || got.Series[0].Total != 10 {
		t.Fatalf("unparseable dates not skipped: %+v", got)
	}
}

func TestTimeSeriesUnknownGroupAndTopN(t *testing.T) {
	rows := []dataset.Row{
		{"Data": "2024-01-01", "Valor": 100, "Loja": "A"},
		{"Data": "2024-01-02", "Valor": 50, "Loja": nil},
		{"Data": "2024-01-03", "Valor": 10, "Loja": "B"},
	}
	got := TimeSeries(rows, TimeSeriesOptions{
		DateField:    "Data",
		ValueField:   "Valor",
		GroupByField: "Loja",
		Granularity:  GranularityDay,
		TopN:         2,
	})
	if len(got.Series) != 2 {
		t.Fatalf("TopN not applied: %d series", len(got.Series))
	}
	if got.Series[0].Name != "A" || got.Series[1].Name != UnknownGroupName {
		t.Fatalf("series order = %q, %q", got.Series[0].Name, got.Series[1].Name)
	}
}

func TestTimeSeriesGranularities(t *testing.T) {
	rows := []dataset.Row{
		{"Data": "2023-12-31", "Valor": 1},
		{"Data": "2024-01-01", "Valor": 2},
	}
	year := TimeSeries(rows, TimeSeriesOptions{DateField: "Data", ValueField: "Valor", Granularity: GranularityYear})
	if len(year.Categories) != 2 || year.Categories[0] != "2023" || year.Categories[1] != "2024" {
		t.Fatalf("year buckets = %v", year.Categories)
	}
	day := TimeSeries(rows, TimeSeriesOptions{DateField: "Data", ValueField: "Valor", Granularity: GranularityDay})
	if len(day.Categories) != 2 || day.Categories[0] != "Dec 31, 2023" {
		t.Fatalf("day buckets = %v", day.Categories)
	}
}

func TestTimeSeriesLocaleLabels(t *testing.T) {
	rows := []dataset.Row{{"Data": "2024-02-10", "Valor": 1}}
	got := TimeSeries(rows, TimeSeriesOptions{DateField: "Data", ValueField: "Valor", Locale: "pt-BR"})
	if got.Categories[0] != "fev 2024" {
		t.Fatalf("pt-BR label = %q", got.Categories[0])
	}
}

func TestNormalizeGranularity(t *testing.T) {
	cases := map[string]Granularity{
		"day":        GranularityDay,
		"month":      GranularityMonthYear,
		"month-year": GranularityMonthYear,
		"year":       GranularityYear,
		"":           GranularityMonthYear,
		"bogus":      GranularityMonthYear,
	}
	for in, want := range cases {
		if got := NormalizeGranularity(in); got != want {
			t.Errorf("NormalizeGranularity(%q) = %q, want %q", in, got, want)
		}
	}
}
