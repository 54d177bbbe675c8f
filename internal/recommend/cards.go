package recommend

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/MatheusDSantossi/data-analyses-automate/internal/dataset"
	"github.com/MatheusDSantossi/data-analyses-automate/internal/normalize"
	"github.com/MatheusDSantossi/data-analyses-automate/internal/schema"
)

// CardKind names a dashboard summary card.
type CardKind string

const (
	CardMetric      CardKind = "metric"
	CardCount       CardKind = "count"
	CardTopCategory CardKind = "topCategory"
	CardAvg         CardKind = "avg"
	CardMinMax      CardKind = "minMax"
)

// Card is one computed dashboard summary value.
type Card struct {
	Kind   CardKind `json:"kind"`
	Title  string   `json:"title"`
	Column string   `json:"column,omitempty"`
	Value  string   `json:"value"`
}

// ReconcileCards resolves untrusted card suggestions against real columns
// and computes their values. Cards referencing unknown columns or kinds
// are dropped. An empty input falls back to a synthesized default set.
func ReconcileCards(raws []RawCard, rows []dataset.Row, profiles []schema.ColumnProfile) []Card {
	columns := schema.Names(profiles)
	var out []Card
	for _, raw := range raws {
		kind := CardKind(strings.TrimSpace(raw.Kind))
		col, ok := MatchColumn(raw.Column, columns)
		if !ok {
			continue
		}
		card, ok := computeCard(kind, raw.Title, col, rows)
		if !ok {
			continue
		}
		out = append(out, card)
	}
	if len(out) == 0 {
		out = SynthesizeCards(rows, profiles)
	}
	return out
}

// SynthesizeCards builds a default card set from the schema: total and
// average of the top numeric column, row count, and the most frequent
// value of the top categorical column.
func SynthesizeCards(rows []dataset.Row, profiles []schema.ColumnProfile) []Card {
	var out []Card
	if nums := rankNumerics(rows, profiles); len(nums) > 0 {
		if c, ok := computeCard(CardMetric, "Total "+nums[0], nums[0], rows); ok {
			out = append(out, c)
		}
		if c, ok := computeCard(CardAvg, "Average "+nums[0], nums[0], rows); ok {
			out = append(out, c)
		}
	}
	if c, ok := computeCard(CardCount, "Rows", "", rows); ok {
		out = append(out, c)
	}
	if cats := rankCategoricals(rows, profiles); len(cats) > 0 {
		if c, ok := computeCard(CardTopCategory, "Top "+cats[0], cats[0], rows); ok {
			out = append(out, c)
		}
	}
	return out
}

func computeCard(kind CardKind, title, column string, rows []dataset.Row) (Card, bool) {
	card := Card{Kind: kind, Title: title, Column: column}
	switch kind {
	case CardCount:
		card.Value = strconv.Itoa(len(rows))
		if card.Title == "" {
			card.Title = "Rows"
		}
	case CardMetric:
		if column == "" {
			return Card{}, false
		}
		var cents int64
		for _, row := range rows {
			cents += normalize.Cents(normalize.ToNumber(row[column]))
		}
		card.Value = formatNumber(normalize.FromCents(cents))
	case CardAvg:
		if column == "" {
			return Card{}, false
		}
		var cents int64
		var n int
		for _, row := range rows {
			v, ok := row[column]
			if !ok || v == nil {
				continue
			}
			cents += normalize.Cents(normalize.ToNumber(v))
			n++
		}
		if n == 0 {
			card.Value = "0"
		} else {
			card.Value = formatNumber(normalize.FromCents(cents) / float64(n))
		}
	case CardMinMax:
		if column == "" {
			return Card{}, false
		}
		min, max, any := math.Inf(1), math.Inf(-1), false
		for _, row := range rows {
			v, ok := row[column]
			if !ok || v == nil {
				continue
			}
			n := normalize.ToNumber(v)
			if n < min {
				min = n
			}
			if n > max {
				max = n
			}
			any = true
		}
		if !any {
			return Card{}, false
		}
		card.Value = formatNumber(min) + " / " + formatNumber(max)
	case CardTopCategory:
		if column == "" {
			return Card{}, false
		}
		counts := map[string]int{}
		var top string
		var topN int
		for _, row := range rows {
			v, ok := row[column]
			if !ok || v == nil {
				continue
			}
			s := fmt.Sprintf("%v", v)
			if s == "" {
				continue
			}
			counts[s]++
			if counts[s] > topN {
				top, topN = s, counts[s]
			}
		}
		if top == "" {
			return Card{}, false
		}
		card.Value = top
	default:
		return Card{}, false
	}
	return card, true
}

func formatNumber(v float64) string {
	r := normalize.Round2(v)
	if r == math.Trunc(r) {
		return strconv.FormatFloat(r, 'f', 0, 64)
	}
	return strconv.FormatFloat(r, 'f', 2, 64)
}
