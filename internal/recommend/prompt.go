package recommend

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MatheusDSantossi/data-analyses-automate/internal/schema"
)

// Prompt size guard. We approximate 1 token ~= 4 characters, which is
// rough but good enough to keep a huge schema summary from blowing the
// model's context window.
const maxPromptTokens = 6000

// CountTokens estimates the number of tokens in the given text.
func CountTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	tokens := len([]rune(text)) / 4
	if tokens == 0 {
		return 1
	}
	return tokens
}

// TruncateToTokenLimit naively truncates text to roughly fit within a
// token limit.
func TruncateToTokenLimit(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(text)
	charLimit := limit * 4
	if charLimit >= len(runes) {
		return text
	}
	return string(runes[:charLimit])
}

const responseShape = `{
  "recommendedCharts": [
    {"chartType": "bar|line|pie|donut|area", "title": "...", "groupBy": "column or empty",
     "metric": "column or empty", "aggregation": "sum|avg|count|none",
     "granularity": "day|month-year|year|none", "topN": 0, "score": 0.0, "explain": "..."}
  ],
  "recommendedCards": [
    {"kind": "metric|count|topCategory|avg|minMax", "title": "...", "column": "column or empty"}
  ]
}`

// BuildAnalysisPrompt renders the first-pass prompt: dataset shape, the
// per-column profiles and the exact JSON envelope the model must return.
func BuildAnalysisPrompt(datasetName string, rowCount int, profiles []schema.ColumnProfile, maxCharts int) string {
	var b strings.Builder
	b.WriteString("You are a data visualization assistant. " +
		"Given the column summary of a spreadsheet, recommend the most insightful charts.\n\n")
	fmt.Fprintf(&b, "Dataset: %s (%d rows, %d columns)\n\n", datasetName, rowCount, len(profiles))
	b.WriteString("Columns:\n")
	b.WriteString(columnSummary(profiles))
	if dates := schema.DateColumns(profiles); len(dates) > 0 {
		fmt.Fprintf(&b, "\nDate columns available for time-series charts: %s\n", strings.Join(dates, ", "))
	} else {
		b.WriteString("\nNo date columns were detected; do not recommend line or area charts.\n")
	}
	fmt.Fprintf(&b, "\nRecommend up to %d charts. Use only column names listed above.\n", maxCharts)
	b.WriteString("Respond with ONLY a JSON object in this shape, no prose:\n")
	b.WriteString(responseShape)
	return TruncateToTokenLimit(b.String(), maxPromptTokens)
}

// BuildRegeneratePrompt renders the alternative-chart prompt for one
// slot, carrying the combos the user has already seen so the model does
// not repeat them.
func BuildRegeneratePrompt(datasetName string, rowCount int, profiles []schema.ColumnProfile, current Recommendation, forbidden ComboSet) string {
	var b strings.Builder
	b.WriteString("You are a data visualization assistant. The user rejected a chart and wants a different one.\n\n")
	fmt.Fprintf(&b, "Dataset: %s (%d rows, %d columns)\n\n", datasetName, rowCount, len(profiles))
	b.WriteString("Columns:\n")
	b.WriteString(columnSummary(profiles))
	fmt.Fprintf(&b, "\nRejected chart: %s grouped by %q with metric %q.\n", current.ChartType, current.GroupBy, current.Metric)
	if keys := forbidden.Keys(); len(keys) > 0 {
		b.WriteString("Already shown groupBy||metric combinations, do NOT suggest these again:\n")
		for _, k := range keys {
			b.WriteString("  - " + k + "\n")
		}
	}
	if dates := schema.DateColumns(profiles); len(dates) > 0 {
		fmt.Fprintf(&b, "Date columns available for time-series charts: %s\n", strings.Join(dates, ", "))
	} else {
		b.WriteString("No date columns were detected; do not recommend line or area charts.\n")
	}
	b.WriteString("\nRecommend exactly 1 chart using a different column combination.\n")
	b.WriteString("Respond with ONLY a JSON object in this shape, no prose:\n")
	b.WriteString(responseShape)
	return TruncateToTokenLimit(b.String(), maxPromptTokens)
}

// columnSummary renders profiles as compact one-line JSON entries.
func columnSummary(profiles []schema.ColumnProfile) string {
	var b strings.Builder
	for _, p := range profiles {
		line, err := json.Marshal(p)
		if err != nil {
			continue
		}
		b.WriteString("  ")
		b.Write(line)
		b.WriteByte('\n')
	}
	return b.String()
}
