package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/MatheusDSantossi/data-analyses-automate/internal/charts"
	"github.com/MatheusDSantossi/data-analyses-automate/internal/dataset"
	"github.com/MatheusDSantossi/data-analyses-automate/internal/recommend"
)

// MaxRegenerationAttempts is the per-chart cap on user-requested
// alternatives. It is a feature limit, separate from any network retry
// policy inside the AI client.
const MaxRegenerationAttempts = 5

var (
	// ErrRegenerationLimit rejects further regeneration for a chart slot
	// until a fresh analysis resets the counters.
	ErrRegenerationLimit = errors.New("regeneration limit reached for this chart")
	// ErrRegenerationInFlight means a regeneration for the same chart id
	// is already running; the duplicate request is a no-op.
	ErrRegenerationInFlight = errors.New("regeneration already in progress for this chart")
	// ErrNoAlternative means neither the AI nor fallback synthesis found
	// an unseen chart; the existing chart is kept unchanged.
	ErrNoAlternative = errors.New("no alternative chart available")
	// ErrUnknownChart means the chart id does not belong to the current
	// analysis.
	ErrUnknownChart = errors.New("unknown chart id")
	// ErrNoAnalysis means Regenerate was called before any Analyze.
	ErrNoAnalysis = errors.New("no analysis loaded")
)

// Controller owns the mutable session state around an Analyzer: the
// current analysis, per-chart attempt counters, the in-flight set and
// the combos already shown to the user. Regeneration requests for
// different chart ids may run concurrently; repeated requests for the
// same id are serialized by the in-flight set.
type Controller struct {
	analyzer *Analyzer
	log      *slog.Logger

	mu         sync.Mutex
	generation int
	analysis   *Analysis
	attempts   map[string]int
	inFlight   map[string]struct{}
	forbidden  recommend.ComboSet
}

// NewController wraps an Analyzer with session state.
func NewController(a *Analyzer, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		analyzer:  a,
		log:       log,
		attempts:  map[string]int{},
		inFlight:  map[string]struct{}{},
		forbidden: recommend.ComboSet{},
	}
}

// Analyze runs a full pass and resets all per-session state: attempt
// counters, in-flight markers and the forbidden-combo set. Any
// regeneration still running against the previous dataset is discarded
// when it completes.
func (c *Controller) Analyze(ctx context.Context, ds *dataset.Dataset) (*Analysis, error) {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	analysis, err := c.analyzer.Analyze(ctx, ds)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		// A newer dataset was loaded while this pass ran.
		return analysis, nil
	}
	c.analysis = analysis
	c.attempts = map[string]int{}
	c.inFlight = map[string]struct{}{}
	c.forbidden = recommend.ComboSet{}
	for _, chart := range analysis.Charts {
		c.forbidden.Add(chart.Recommendation.ComboKey())
	}
	return analysis, nil
}

// Current returns the analysis loaded by the last Analyze, or nil.
func (c *Controller) Current() *Analysis {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.analysis
}

// Attempts returns the regeneration counter for a chart id.
func (c *Controller) Attempts(chartID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts[chartID]
}

// Regenerate replaces one chart slot with an unseen alternative. The
// chart keeps its id so callers can track the slot across replacements.
// After MaxRegenerationAttempts the request is rejected without calling
// the AI collaborator. When nothing unseen can be found the existing
// chart is left untouched and ErrNoAlternative is returned.
func (c *Controller) Regenerate(ctx context.Context, chartID string) (*charts.GeneratedChart, error) {
	c.mu.Lock()
	if c.analysis == nil {
		c.mu.Unlock()
		return nil, ErrNoAnalysis
	}
	idx := c.chartIndexLocked(chartID)
	if idx < 0 {
		c.mu.Unlock()
		return nil, ErrUnknownChart
	}
	if _, busy := c.inFlight[chartID]; busy {
		c.mu.Unlock()
		return nil, ErrRegenerationInFlight
	}
	c.attempts[chartID]++
	attempts := c.attempts[chartID]
	if attempts > MaxRegenerationAttempts {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %d attempts used", ErrRegenerationLimit, attempts-1)
	}
	c.inFlight[chartID] = struct{}{}
	c.analysis.Charts[idx].Regenerating = true
	c.analysis.Charts[idx].RegenerationAttempts = attempts

	gen := c.generation
	ds := c.analysis.Dataset
	profiles := c.analysis.Profiles
	current := c.analysis.Charts[idx].Recommendation
	forbidden := recommend.ComboSet{}
	for k := range c.forbidden {
		forbidden.Add(k)
	}
	c.mu.Unlock()

	// The in-flight marker is released on every exit path so a failed
	// regeneration never leaves the slot stuck.
	defer func() {
		c.mu.Lock()
		delete(c.inFlight, chartID)
		if c.generation == gen {
			if i := c.chartIndexLocked(chartID); i >= 0 {
				c.analysis.Charts[i].Regenerating = false
			}
		}
		c.mu.Unlock()
	}()

	rec, ok := c.analyzer.regenerateOne(ctx, ds, profiles, current, forbidden)
	if !ok {
		c.log.Warn("regeneration found no alternative", "chart", chartID, "attempts", attempts)
		return nil, ErrNoAlternative
	}
	newChart := c.analyzer.materialize(rec, ds, profiles)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		// The dataset changed while the AI call was running; drop the
		// stale result instead of merging it into the new analysis.
		return nil, ErrUnknownChart
	}
	i := c.chartIndexLocked(chartID)
	if i < 0 {
		return nil, ErrUnknownChart
	}
	newChart.ID = chartID
	newChart.RegenerationAttempts = attempts
	c.analysis.Charts[i] = newChart
	c.forbidden.Add(rec.ComboKey())
	c.log.Info("chart regenerated", "chart", chartID, "attempts", attempts, "combo", rec.ComboKey())
	out := newChart
	return &out, nil
}

func (c *Controller) chartIndexLocked(chartID string) int {
	for i := range c.analysis.Charts {
		if c.analysis.Charts[i].ID == chartID {
			return i
		}
	}
	return -1
}
