package charts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MatheusDSantossi/data-analyses-automate/internal/dataset"
	"github.com/MatheusDSantossi/data-analyses-automate/internal/recommend"
	"github.com/MatheusDSantossi/data-analyses-automate/internal/schema"
)

func chartDataset() (*dataset.Dataset, []schema.ColumnProfile) {
	ds := &dataset.Dataset{
		Name:    "vendas.csv",
		Columns: []string{"Categoria", "Valor", "Data"},
		Rows: []dataset.Row{
			{"Categoria": "A", "Valor": "1.000,50", "Data": "05/01/2024"},
			{"Categoria": "A", "Valor": "500,00", "Data": "10/02/2024"},
			{"Categoria": "B", "Valor": "200", "Data": "15/02/2024"},
		},
	}
	return ds, schema.ClassifyColumns(ds, 0)
}

func TestMaterializeBarChart(t *testing.T) {
	ds, profiles := chartDataset()
	rec := recommend.Recommendation{
		ChartType:   recommend.ChartBar,
		Title:       "Sales by category",
		GroupBy:     "Categoria",
		Metric:      "Valor",
		Aggregation: recommend.AggSum,
	}
	chart := Materialize(rec, ds, profiles, Options{})
	require.True(t, chart.Valid, "error: %s", chart.Error)
	assert.NotEmpty(t, chart.ID)
	require.NotNil(t, chart.Payload)
	require.Len(t, chart.Payload.GroupRows, 2)
	assert.Equal(t, "A", chart.Payload.GroupRows[0].GroupKey)
	assert.Equal(t, 1500.50, chart.Payload.GroupRows[0].MetricTotals["Valor"])
}

func TestMaterializeAvgAggregation(t *testing.T) {
	ds, profiles := chartDataset()
	rec := recommend.Recommendation{
		ChartType:   recommend.ChartPie,
		GroupBy:     "Categoria",
		Metric:      "Valor",
		Aggregation: recommend.AggAvg,
	}
	chart := Materialize(rec, ds, profiles, Options{})
	require.True(t, chart.Valid)
	assert.Equal(t, 750.25, chart.Payload.GroupRows[0].MetricTotals["Valor"])
}

func TestMaterializeMissingColumnsNeverPanics(t *testing.T) {
	ds, profiles := chartDataset()

	noGroup := Materialize(recommend.Recommendation{
		ChartType: recommend.ChartBar, Metric: "Valor",
	}, ds, profiles, Options{})
	assert.False(t, noGroup.Valid)
	assert.Contains(t, noGroup.Error, "Group-by")

	noMetric := Materialize(recommend.Recommendation{
		ChartType: recommend.ChartDonut, GroupBy: "Categoria", Metric: "Lucro",
	}, ds, profiles, Options{})
	assert.False(t, noMetric.Valid)
	assert.Contains(t, noMetric.Error, "Metric")
}

func TestMaterializeUnsupportedChartType(t *testing.T) {
	ds, profiles := chartDataset()
	chart := Materialize(recommend.Recommendation{ChartType: "scatter3d"}, ds, profiles, Options{})
	assert.False(t, chart.Valid)
	assert.Equal(t, "Unsupported chart type", chart.Error)
}

func TestMaterializeLineChartResolvesDateColumn(t *testing.T) {
	ds, profiles := chartDataset()
	// No explicit DateField; "Data" matches the date name pattern.
	rec := recommend.Recommendation{
		ChartType:   recommend.ChartLine,
		Metric:      "Valor",
		Granularity: "month-year",
	}
	chart := Materialize(rec, ds, profiles, Options{})
	require.True(t, chart.Valid, "error: %s", chart.Error)
	require.NotNil(t, chart.Payload)
	require.Len(t, chart.Payload.Categories, 2)
	require.Len(t, chart.Payload.Series, 1)
	assert.Len(t, chart.Payload.Series[0].Data, 2)
	assert.Equal(t, 1700.50, chart.Payload.Series[0].Total)
}

func TestMaterializeLineChartGrouped(t *testing.T) {
	ds, profiles := chartDataset()
	rec := recommend.Recommendation{
		ChartType: recommend.ChartArea,
		GroupBy:   "Categoria",
		Metric:    "Valor",
		DateField: "Data",
	}
	chart := Materialize(rec, ds, profiles, Options{})
	require.True(t, chart.Valid)
	assert.Len(t, chart.Payload.Series, 2)
	for _, s := range chart.Payload.Series {
		assert.Len(t, s.Data, len(chart.Payload.Categories))
	}
}

func TestMaterializeCountOnlyChart(t *testing.T) {
	ds, profiles := chartDataset()
	rec := recommend.Recommendation{
		ChartType:   recommend.ChartBar,
		GroupBy:     "Categoria",
		Aggregation: recommend.AggCount,
	}
	chart := Materialize(rec, ds, profiles, Options{})
	require.True(t, chart.Valid, "error: %s", chart.Error)
	require.Len(t, chart.Payload.GroupRows, 2)
	assert.Equal(t, 2, chart.Payload.GroupRows[0].RowCount)
}
