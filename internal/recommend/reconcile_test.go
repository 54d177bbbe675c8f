package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MatheusDSantossi/data-analyses-automate/internal/dataset"
	"github.com/MatheusDSantossi/data-analyses-automate/internal/schema"
)

func score(v float64) *float64 { return &v }

func testProfilesAndSample(t *testing.T, withDates bool) ([]schema.ColumnProfile, []dataset.Row) {
	t.Helper()
	ds := &dataset.Dataset{Columns: []string{"Categoria", "Valor", "Quantidade"}}
	if withDates {
		ds.Columns = append(ds.Columns, "Data")
	}
	cats := []string{"A", "B", "C"}
	for i := 0; i < 20; i++ {
		row := dataset.Row{
			"Categoria":  cats[i%3],
			"Valor":      "1.000,50",
			"Quantidade": "3",
		}
		if withDates {
			row["Data"] = "2024-01-15"
		}
		ds.Rows = append(ds.Rows, row)
	}
	profiles := schema.ClassifyColumns(ds, 0)
	return profiles, ds.Rows
}

func TestReconcileResolvesFuzzyFieldNames(t *testing.T) {
	profiles, sample := testProfilesAndSample(t, false)
	raws := []RawRecommendation{
		{ChartType: "bar", GroupBy: "categoria", Metric: "VALOR", Aggregation: "sum", Score: score(0.9)},
	}
	res := Reconcile(raws, sample, profiles, nil, 4)
	require.Len(t, res.Charts, 1)
	assert.Equal(t, "Categoria", res.Charts[0].GroupBy)
	assert.Equal(t, "Valor", res.Charts[0].Metric)
	assert.False(t, res.DateColumnsAvailable)
}

func TestReconcileDropsUnresolvableFields(t *testing.T) {
	profiles, sample := testProfilesAndSample(t, false)
	raws := []RawRecommendation{
		{ChartType: "bar", GroupBy: "Nonexistent Column", Metric: "Valor", Score: score(0.9)},
	}
	res := Reconcile(raws, sample, profiles, nil, 4)
	// The bad suggestion is dropped; fallback synthesis fills the gap.
	require.NotEmpty(t, res.Charts)
	for _, c := range res.Charts {
		assert.NotEqual(t, "Nonexistent Column", c.GroupBy)
	}
}

func TestReconcileNeverReturnsForbiddenCombos(t *testing.T) {
	profiles, sample := testProfilesAndSample(t, false)
	forbidden := ComboSet{}
	forbidden.Add(ComboKey("Categoria", "Valor"))

	raws := []RawRecommendation{
		{ChartType: "bar", GroupBy: "Categoria", Metric: "Valor", Score: score(0.95)},
		{ChartType: "pie", GroupBy: "Categoria", Metric: "Quantidade", Score: score(0.5)},
	}
	res := Reconcile(raws, sample, profiles, forbidden, 4)
	require.NotEmpty(t, res.Charts)
	for _, c := range res.Charts {
		assert.False(t, forbidden.Has(c.ComboKey()), "combo %q is forbidden", c.ComboKey())
	}
}

func TestReconcileFallbackOnEmptyInput(t *testing.T) {
	profiles, sample := testProfilesAndSample(t, false)
	res := Reconcile(nil, sample, profiles, nil, 4)
	require.NotEmpty(t, res.Charts, "fallback synthesis must produce charts")
	first := res.Charts[0]
	assert.Equal(t, "Categoria", first.GroupBy)
	assert.Equal(t, "Valor", first.Metric)
	assert.Equal(t, AggSum, first.Aggregation)
}

func TestReconcileFallbackSkipsForbiddenPairs(t *testing.T) {
	profiles, sample := testProfilesAndSample(t, false)
	forbidden := ComboSet{}
	forbidden.Add(ComboKey("Categoria", "Valor"))
	res := Reconcile(nil, sample, profiles, forbidden, 4)
	require.NotEmpty(t, res.Charts)
	for _, c := range res.Charts {
		assert.False(t, forbidden.Has(c.ComboKey()))
	}
}

func TestReconcileLineWithoutDatesBecomesDonut(t *testing.T) {
	profiles, sample := testProfilesAndSample(t, false)
	raws := []RawRecommendation{
		{ChartType: "line", GroupBy: "Categoria", Metric: "Valor", Score: score(0.8)},
	}
	res := Reconcile(raws, sample, profiles, nil, 4)
	require.NotEmpty(t, res.Charts)
	assert.Equal(t, ChartDonut, res.Charts[0].ChartType)
	assert.Equal(t, "Categoria", res.Charts[0].GroupBy)
	assert.Equal(t, "Valor", res.Charts[0].Metric)
}

func TestReconcileLineWithDatesSurvives(t *testing.T) {
	profiles, sample := testProfilesAndSample(t, true)
	raws := []RawRecommendation{
		{ChartType: "line", Metric: "Valor", DateField: "Data", Granularity: "month-year", Score: score(0.8)},
	}
	res := Reconcile(raws, sample, profiles, nil, 4)
	require.NotEmpty(t, res.Charts)
	assert.Equal(t, ChartLine, res.Charts[0].ChartType)
	assert.True(t, res.DateColumnsAvailable)
}

func TestReconcileDeduplicatesKeepingHigherScore(t *testing.T) {
	profiles, sample := testProfilesAndSample(t, false)
	raws := []RawRecommendation{
		{ChartType: "bar", Title: "low", GroupBy: "Categoria", Metric: "Valor", Score: score(0.3)},
		{ChartType: "pie", Title: "high", GroupBy: "Categoria", Metric: "Valor", Score: score(0.9)},
	}
	res := Reconcile(raws, sample, profiles, nil, 4)

	var matches []Recommendation
	for _, c := range res.Charts {
		if c.ComboKey() == ComboKey("Categoria", "Valor") {
			matches = append(matches, c)
		}
	}
	require.Len(t, matches, 1, "combo must appear exactly once")
	assert.Equal(t, "high", matches[0].Title)
}

func TestReconcileDiversityNudge(t *testing.T) {
	profiles, sample := testProfilesAndSample(t, false)
	raws := []RawRecommendation{
		{ChartType: "bar", GroupBy: "Categoria", Metric: "Valor", Score: score(0.9)},
		{ChartType: "bar", GroupBy: "Categoria", Metric: "Quantidade", Score: score(0.8)},
	}
	res := Reconcile(raws, sample, profiles, nil, 4)
	require.Len(t, res.Charts, 2)
	assert.Equal(t, ChartDonut, res.Charts[0].ChartType)
	assert.Equal(t, ChartBar, res.Charts[1].ChartType)
}

func TestReconcileTruncatesToMaxResults(t *testing.T) {
	profiles, sample := testProfilesAndSample(t, false)
	raws := []RawRecommendation{
		{ChartType: "bar", GroupBy: "Categoria", Metric: "Valor", Score: score(0.9)},
		{ChartType: "pie", GroupBy: "Categoria", Metric: "Quantidade", Score: score(0.8)},
	}
	res := Reconcile(raws, sample, profiles, nil, 1)
	assert.Len(t, res.Charts, 1)
}
