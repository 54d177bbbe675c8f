// Package schema infers a compact column model from a bounded sample of
// rows. The profiles drive chart eligibility (date columns gate
// time-series charts) and feed the AI prompt's column summary.
package schema

import (
	"fmt"
	"math"

	"github.com/MatheusDSantossi/data-analyses-automate/internal/dataset"
	"github.com/MatheusDSantossi/data-analyses-automate/internal/normalize"
)

// ColumnKind is the inferred role of a column.
type ColumnKind string

const (
	KindNumeric     ColumnKind = "numeric"
	KindCategorical ColumnKind = "categorical"
	KindDate        ColumnKind = "date"
)

// NumericRange holds observed min/max for a numeric column.
type NumericRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ColumnProfile is the compact per-column summary computed from a sample.
// Profiles are immutable once produced; a new analysis pass recomputes
// them from scratch.
type ColumnProfile struct {
	Name              string        `json:"name"`
	Kind              ColumnKind    `json:"type"`
	SampleValues      []string      `json:"sample"`
	UniqueSampleCount int           `json:"uniqueSampleCount"`
	NumericRange      *NumericRange `json:"numericSummary,omitempty"`
}

const (
	// DefaultSampleLimit bounds how many rows a classification pass
	// inspects; full-dataset scans are never needed for type inference.
	DefaultSampleLimit = 200

	maxSampleValues = 8

	numericRatioThreshold = 0.6
	dateRatioThreshold    = 0.6
)

// ClassifyColumns profiles every column of the dataset from a bounded row
// sample. A column is numeric when more than 60% of its sampled non-null
// values convert to a nonzero number, date when at least 60% parse as
// dates, categorical otherwise. An empty dataset yields an empty slice.
func ClassifyColumns(ds *dataset.Dataset, sampleLimit int) []ColumnProfile {
	if ds == nil || len(ds.Columns) == 0 {
		return nil
	}
	if sampleLimit <= 0 {
		sampleLimit = DefaultSampleLimit
	}
	sample := ds.Sample(sampleLimit)

	profiles := make([]ColumnProfile, 0, len(ds.Columns))
	for _, col := range ds.Columns {
		profiles = append(profiles, profileColumn(col, sample))
	}
	return profiles
}

func profileColumn(name string, sample []dataset.Row) ColumnProfile {
	p := ColumnProfile{Name: name}
	seen := make(map[string]struct{})

	nonNull := 0
	numericCount := 0
	dateCount := 0
	numMin := math.Inf(1)
	numMax := math.Inf(-1)

	for _, row := range sample {
		v := row[name]
		if v == nil {
			continue
		}
		s := stringify(v)
		if s == "" {
			continue
		}
		nonNull++
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			if len(p.SampleValues) < maxSampleValues {
				p.SampleValues = append(p.SampleValues, s)
			}
		}
		if n := normalize.ToNumber(v); n != 0 {
			numericCount++
			if n < numMin {
				numMin = n
			}
			if n > numMax {
				numMax = n
			}
		}
		if normalize.LooksLikeDate(v) {
			dateCount++
		}
	}
	p.UniqueSampleCount = len(seen)

	if nonNull == 0 {
		p.Kind = KindCategorical
		return p
	}
	numericRatio := float64(numericCount) / float64(nonNull)
	dateRatio := float64(dateCount) / float64(nonNull)

	switch {
	// date wins over numeric: epoch-style values satisfy both heuristics
	case dateRatio >= dateRatioThreshold:
		p.Kind = KindDate
	case numericRatio > numericRatioThreshold:
		p.Kind = KindNumeric
		p.NumericRange = &NumericRange{Min: numMin, Max: numMax}
	default:
		p.Kind = KindCategorical
	}
	return p
}

// DetectDateColumns returns the names of columns whose sampled non-empty
// values parse as dates at or above the given ratio threshold (0 means the
// 0.6 default). Used to gate line/area chart eligibility.
func DetectDateColumns(ds *dataset.Dataset, sampleLimit int, threshold float64) []string {
	if ds == nil || len(ds.Columns) == 0 {
		return nil
	}
	if sampleLimit <= 0 {
		sampleLimit = DefaultSampleLimit
	}
	if threshold <= 0 {
		threshold = dateRatioThreshold
	}
	sample := ds.Sample(sampleLimit)

	var out []string
	for _, col := range ds.Columns {
		nonNull := 0
		dateCount := 0
		for _, row := range sample {
			v := row[col]
			if v == nil || stringify(v) == "" {
				continue
			}
			nonNull++
			if normalize.LooksLikeDate(v) {
				dateCount++
			}
		}
		if nonNull > 0 && float64(dateCount)/float64(nonNull) >= threshold {
			out = append(out, col)
		}
	}
	return out
}

// DateColumns filters already-computed profiles down to date column names.
func DateColumns(profiles []ColumnProfile) []string {
	var out []string
	for _, p := range profiles {
		if p.Kind == KindDate {
			out = append(out, p.Name)
		}
	}
	return out
}

// Names returns all profile column names in order.
func Names(profiles []ColumnProfile) []string {
	out := make([]string, len(profiles))
	for i, p := range profiles {
		out[i] = p.Name
	}
	return out
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
