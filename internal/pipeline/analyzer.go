package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MatheusDSantossi/data-analyses-automate/internal/ai"
	"github.com/MatheusDSantossi/data-analyses-automate/internal/charts"
	"github.com/MatheusDSantossi/data-analyses-automate/internal/dataset"
	"github.com/MatheusDSantossi/data-analyses-automate/internal/normalize"
	"github.com/MatheusDSantossi/data-analyses-automate/internal/recommend"
	"github.com/MatheusDSantossi/data-analyses-automate/internal/schema"
)

// Options tunes one analysis pass.
type Options struct {
	// SampleLimit bounds the rows inspected for classification and
	// fallback ranking; 0 uses the schema package default.
	SampleLimit int
	// MaxCharts caps the reconciled chart batch.
	MaxCharts int
	// DefaultTopN truncates grouped charts; 0 keeps all groups.
	DefaultTopN int
	Locale      string
	DateHints   normalize.DateHints
	// SkipAI skips the external call entirely and builds charts from
	// fallback synthesis only.
	SkipAI bool
}

func (o Options) withDefaults() Options {
	if o.SampleLimit <= 0 {
		o.SampleLimit = schema.DefaultSampleLimit
	}
	if o.MaxCharts <= 0 {
		o.MaxCharts = recommend.DefaultMaxResults
	}
	return o
}

// Analysis is the result of one full pass over a dataset.
type Analysis struct {
	Dataset  *dataset.Dataset        `json:"-"`
	Name     string                  `json:"dataset"`
	RowCount int                     `json:"rowCount"`
	Profiles []schema.ColumnProfile  `json:"columns"`
	Charts   []charts.GeneratedChart `json:"charts"`
	Cards    []recommend.Card        `json:"cards"`
	DateCols []string                `json:"dateColumns,omitempty"`
}

// Analyzer runs the classify -> prompt -> reconcile -> materialize
// pipeline for one dataset. It is stateless; session state lives in the
// Controller.
type Analyzer struct {
	gen ai.Generator
	log *slog.Logger
	opt Options
}

// NewAnalyzer builds an Analyzer. gen may be nil, which behaves like
// Options.SkipAI.
func NewAnalyzer(gen ai.Generator, log *slog.Logger, opt Options) *Analyzer {
	if log == nil {
		log = slog.Default()
	}
	return &Analyzer{gen: gen, log: log, opt: opt.withDefaults()}
}

// Analyze classifies the dataset, asks the AI collaborator for chart
// suggestions, reconciles them against the real schema and materializes
// the survivors. AI failures degrade to fallback synthesis and never
// fail the pass; only an empty dataset is an error.
func (a *Analyzer) Analyze(ctx context.Context, ds *dataset.Dataset) (*Analysis, error) {
	if ds == nil || len(ds.Rows) == 0 {
		return nil, fmt.Errorf("dataset %q has no rows", datasetName(ds))
	}
	profiles := schema.ClassifyColumns(ds, a.opt.SampleLimit)
	if len(profiles) == 0 {
		return nil, fmt.Errorf("dataset %q has no columns", ds.Name)
	}
	sample := ds.Sample(a.opt.SampleLimit)

	var raws []recommend.RawRecommendation
	var rawCards []recommend.RawCard
	if a.gen != nil && !a.opt.SkipAI {
		prompt := recommend.BuildAnalysisPrompt(ds.Name, len(ds.Rows), profiles, a.opt.MaxCharts)
		text, err := a.gen.Generate(ctx, prompt)
		if err != nil {
			a.log.Warn("AI call failed, using fallback charts", "dataset", ds.Name, "error", err)
		} else if resp, perr := recommend.ParseResponse(text); perr != nil {
			a.log.Warn("AI reply unusable, using fallback charts", "dataset", ds.Name, "error", perr)
		} else {
			raws = resp.RecommendedCharts
			rawCards = resp.RecommendedCards
		}
	}

	result := recommend.Reconcile(raws, sample, profiles, nil, a.opt.MaxCharts)
	generated := make([]charts.GeneratedChart, 0, len(result.Charts))
	copt := charts.Options{Locale: a.opt.Locale, DateHints: a.opt.DateHints, DefaultTopN: a.opt.DefaultTopN}
	for _, rec := range result.Charts {
		generated = append(generated, charts.Materialize(rec, ds, profiles, copt))
	}
	cards := recommend.ReconcileCards(rawCards, ds.Rows, profiles)

	a.log.Info("analysis complete",
		"dataset", ds.Name,
		"rows", len(ds.Rows),
		"columns", len(profiles),
		"charts", len(generated),
		"cards", len(cards))

	return &Analysis{
		Dataset:  ds,
		Name:     ds.Name,
		RowCount: len(ds.Rows),
		Profiles: profiles,
		Charts:   generated,
		Cards:    cards,
		DateCols: schema.DateColumns(profiles),
	}, nil
}

// regenerateOne asks the AI for a single alternative chart for slot rec,
// excluding forbidden combos, and reconciles the reply. A nil Generator
// or unusable reply still reaches the reconciler so fallback synthesis
// can rescue the request.
func (a *Analyzer) regenerateOne(ctx context.Context, ds *dataset.Dataset, profiles []schema.ColumnProfile, current recommend.Recommendation, forbidden recommend.ComboSet) (recommend.Recommendation, bool) {
	var raws []recommend.RawRecommendation
	if a.gen != nil && !a.opt.SkipAI {
		prompt := recommend.BuildRegeneratePrompt(ds.Name, len(ds.Rows), profiles, current, forbidden)
		text, err := a.gen.Generate(ctx, prompt)
		if err != nil {
			a.log.Warn("AI regeneration call failed", "dataset", ds.Name, "error", err)
		} else if resp, perr := recommend.ParseResponse(text); perr != nil {
			a.log.Warn("AI regeneration reply unusable", "dataset", ds.Name, "error", perr)
		} else {
			raws = resp.RecommendedCharts
		}
	}
	sample := ds.Sample(a.opt.SampleLimit)
	result := recommend.Reconcile(raws, sample, profiles, forbidden, 1)
	if len(result.Charts) == 0 {
		return recommend.Recommendation{}, false
	}
	return result.Charts[0], true
}

// materialize exposes chart materialization with the analyzer's options.
func (a *Analyzer) materialize(rec recommend.Recommendation, ds *dataset.Dataset, profiles []schema.ColumnProfile) charts.GeneratedChart {
	return charts.Materialize(rec, ds, profiles, charts.Options{
		Locale:      a.opt.Locale,
		DateHints:   a.opt.DateHints,
		DefaultTopN: a.opt.DefaultTopN,
	})
}

func datasetName(ds *dataset.Dataset) string {
	if ds == nil {
		return ""
	}
	return ds.Name
}
