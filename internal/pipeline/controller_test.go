package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MatheusDSantossi/data-analyses-automate/internal/ai"
	"github.com/MatheusDSantossi/data-analyses-automate/internal/dataset"
)

func testDataset() *dataset.Dataset {
	ds := &dataset.Dataset{
		Name:    "vendas.csv",
		Columns: []string{"Categoria", "Regiao", "Valor", "Quantidade"},
	}
	cats := []string{"Eletronicos", "Roupas", "Alimentos", "Livros"}
	regions := []string{"Norte", "Sul"}
	for i := 0; i < 40; i++ {
		ds.Rows = append(ds.Rows, dataset.Row{
			"Categoria":  cats[i%len(cats)],
			"Regiao":     regions[i%len(regions)],
			"Valor":      fmt.Sprintf("%d,50", 100+i),
			"Quantidade": fmt.Sprintf("%d", 1+i%5),
		})
	}
	return ds
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestController(gen ai.Generator) *Controller {
	log := quietLogger()
	analyzer := NewAnalyzer(gen, log, Options{MaxCharts: 2})
	return NewController(analyzer, log)
}

func TestAnalyzeProducesChartsWithoutAI(t *testing.T) {
	c := newTestController(nil)
	analysis, err := c.Analyze(context.Background(), testDataset())
	require.NoError(t, err)
	require.NotEmpty(t, analysis.Charts)
	for _, chart := range analysis.Charts {
		assert.True(t, chart.Valid, "chart %q invalid: %s", chart.Title, chart.Error)
		assert.NotEmpty(t, chart.ID)
	}
	assert.NotEmpty(t, analysis.Cards)
}

func TestAnalyzeRejectsEmptyDataset(t *testing.T) {
	c := newTestController(nil)
	_, err := c.Analyze(context.Background(), &dataset.Dataset{Name: "empty"})
	require.Error(t, err)
}

func TestAnalyzeSurvivesMalformedAIReply(t *testing.T) {
	gen := ai.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		return "I cannot help with that.", nil
	})
	c := newTestController(gen)
	analysis, err := c.Analyze(context.Background(), testDataset())
	require.NoError(t, err)
	assert.NotEmpty(t, analysis.Charts, "fallback must fill in for a useless reply")
}

func TestRegenerateReplacesChartAndKeepsID(t *testing.T) {
	c := newTestController(nil)
	analysis, err := c.Analyze(context.Background(), testDataset())
	require.NoError(t, err)
	chartID := analysis.Charts[0].ID
	before := analysis.Charts[0].Recommendation.ComboKey()

	newChart, err := c.Regenerate(context.Background(), chartID)
	require.NoError(t, err)
	assert.Equal(t, chartID, newChart.ID)
	assert.Equal(t, 1, newChart.RegenerationAttempts)
	assert.NotEqual(t, before, newChart.Recommendation.ComboKey(),
		"regeneration must not repeat a shown combo")
	assert.False(t, newChart.Regenerating)
}

func TestRegenerateAttemptLimit(t *testing.T) {
	var aiCalls atomic.Int64
	gen := ai.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		aiCalls.Add(1)
		return "no json", nil
	})
	c := newTestController(gen)
	analysis, err := c.Analyze(context.Background(), testDataset())
	require.NoError(t, err)
	chartID := analysis.Charts[0].ID

	for i := 1; i <= MaxRegenerationAttempts; i++ {
		_, err := c.Regenerate(context.Background(), chartID)
		if err != nil {
			require.ErrorIs(t, err, ErrNoAlternative,
				"attempt %d failed with unexpected error", i)
		}
	}
	callsBefore := aiCalls.Load()

	_, err = c.Regenerate(context.Background(), chartID)
	require.ErrorIs(t, err, ErrRegenerationLimit)
	assert.Equal(t, callsBefore, aiCalls.Load(),
		"the over-limit request must not reach the AI collaborator")

	// Still rejected on further attempts.
	_, err = c.Regenerate(context.Background(), chartID)
	require.ErrorIs(t, err, ErrRegenerationLimit)
}

func TestRegenerateUnknownChart(t *testing.T) {
	c := newTestController(nil)
	_, err := c.Regenerate(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNoAnalysis)

	_, err = c.Analyze(context.Background(), testDataset())
	require.NoError(t, err)
	_, err = c.Regenerate(context.Background(), "nope")
	require.ErrorIs(t, err, ErrUnknownChart)
}

func TestRegenerateNoAlternativeKeepsChart(t *testing.T) {
	// Two columns only: one categorical, one numeric. The initial
	// analysis shows the single possible combo, so a regeneration has
	// nothing unseen left to offer.
	ds := &dataset.Dataset{
		Name:    "tiny.csv",
		Columns: []string{"Categoria", "Valor"},
	}
	for i := 0; i < 10; i++ {
		ds.Rows = append(ds.Rows, dataset.Row{
			"Categoria": fmt.Sprintf("c%d", i%3),
			"Valor":     fmt.Sprintf("%d", 10+i),
		})
	}
	log := quietLogger()
	c := NewController(NewAnalyzer(nil, log, Options{MaxCharts: 1}), log)
	analysis, err := c.Analyze(context.Background(), ds)
	require.NoError(t, err)
	require.Len(t, analysis.Charts, 1)
	chartID := analysis.Charts[0].ID
	originalCombo := analysis.Charts[0].Recommendation.ComboKey()

	var sawAlternative bool
	for i := 0; i < MaxRegenerationAttempts; i++ {
		if _, err := c.Regenerate(context.Background(), chartID); err == nil {
			sawAlternative = true
		} else {
			require.ErrorIs(t, err, ErrNoAlternative)
		}
	}
	current := c.Current()
	require.NotNil(t, current)
	chart := current.Charts[0]
	assert.Equal(t, chartID, chart.ID)
	assert.False(t, chart.Regenerating, "failed regeneration must not leave the chart stuck")
	if !sawAlternative {
		assert.Equal(t, originalCombo, chart.Recommendation.ComboKey())
		assert.True(t, chart.Valid)
	}
}

func TestAnalyzeResetsRegenerationState(t *testing.T) {
	c := newTestController(nil)
	analysis, err := c.Analyze(context.Background(), testDataset())
	require.NoError(t, err)
	chartID := analysis.Charts[0].ID
	for i := 0; i <= MaxRegenerationAttempts; i++ {
		_, _ = c.Regenerate(context.Background(), chartID)
	}
	require.Positive(t, c.Attempts(chartID))

	fresh, err := c.Analyze(context.Background(), testDataset())
	require.NoError(t, err)
	assert.Zero(t, c.Attempts(chartID))
	assert.NotEmpty(t, fresh.Charts)
}
