// Package normalize converts raw, locale-ambiguous cell values into
// canonical numbers and dates. The heuristics are deliberately expressed
// as ordered, named rule tables so each branch stays auditable and can be
// unit-tested on its own.
package normalize

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numberRule rewrites a pre-cleaned numeric string (digits, '.', ',', '-')
// into a strconv-parseable form. Rules are tried in order; the first one
// whose match succeeds is applied.
type numberRule struct {
	name  string
	match func(s string) bool
	apply func(s string) string
}

var commaDecimalRe = regexp.MustCompile(`,\d{1,3}$`)

// Decision table for separator disambiguation. Order matters:
//  1. both-separators: '.' and ',' both present. The separator appearing
//     last is the decimal one, so "1.234,56" and "1,234.56" both read as
//     1234.56.
//  2. comma-decimal: only ',' and it is followed by 1-3 trailing digits
//     ("1234,56" -> "1234.56"). This intentionally reads "12,345" as
//     12.345; existing datasets rely on that reading.
//  3. comma-thousands: any remaining commas are thousands separators
//     ("1,234" after rule 2 never reaches here, but "12,34,56" does).
//  4. plain: pass through.
var numberRules = []numberRule{
	{
		name:  "both-separators",
		match: func(s string) bool { return strings.Contains(s, ".") && strings.Contains(s, ",") },
		apply: func(s string) string {
			if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
				return strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
			}
			return strings.ReplaceAll(s, ",", "")
		},
	},
	{
		name:  "comma-decimal",
		match: func(s string) bool { return strings.Contains(s, ",") && commaDecimalRe.MatchString(s) },
		apply: func(s string) string { return strings.ReplaceAll(s, ",", ".") },
	},
	{
		name:  "comma-thousands",
		match: func(s string) bool { return strings.Contains(s, ",") },
		apply: func(s string) string { return strings.ReplaceAll(s, ",", "") },
	},
	{
		name:  "plain",
		match: func(s string) bool { return true },
		apply: func(s string) string { return s },
	},
}

// ToNumber converts an arbitrary cell value to a float64. It never fails:
// nil, empty strings, NaN and unparseable text all yield 0. Native numeric
// types pass through unchanged.
func ToNumber(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0
		}
		return x
	case float32:
		return ToNumber(float64(x))
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case json.Number:
		return ToNumber(string(x))
	case string:
		return stringToNumber(x)
	default:
		return 0
	}
}

func stringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	cleaned := cleanNumeric(s)
	if cleaned == "" || cleaned == "-" {
		return 0
	}
	for _, rule := range numberRules {
		if !rule.match(cleaned) {
			continue
		}
		f, err := strconv.ParseFloat(rule.apply(cleaned), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

// cleanNumeric strips currency symbols, spaces and any other characters
// that are not digits, separators, or a leading minus.
func cleanNumeric(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',':
			b.WriteRune(r)
		case r == '-' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Round2 rounds to 2 decimal places (cent precision).
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Cents converts a float value to integer cents. Aggregations accumulate
// in cents space to avoid floating summation drift on monetary values.
func Cents(v float64) int64 {
	return int64(math.Round(v * 100))
}

// FromCents converts integer cents back to a float.
func FromCents(c int64) float64 {
	return float64(c) / 100
}
