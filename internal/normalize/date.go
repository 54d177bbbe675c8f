package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// DateHints configures ambiguous-date disambiguation. When both the day
// and month parts of a slash/dash date are <= 12 there is no way to tell
// them apart; the zero value reads day-first, MonthFirst flips it.
type DateHints struct {
	MonthFirst bool
}

// DefaultDateHints is the zero value: day-first ("03/04/2020" is April
// 3rd), matching the datasets this tool was built around.
func DefaultDateHints() DateHints { return DateHints{} }

var (
	isoPrefixRe  = regexp.MustCompile(`^\d{4}[-/]\d{1,2}[-/]\d{1,2}`)
	slashDateRe  = regexp.MustCompile(`^(\d{1,2})[/\-](\d{1,2})[/\-](\d{2,4})$`)
	bareDigitsRe = regexp.MustCompile(`^\d{10}(\d{3})?$`)
)

// dateRule attempts one recognition strategy; ok is false when the rule
// does not apply or cannot produce a valid instant. Rules run in order.
type dateRule struct {
	name  string
	parse func(s string, hints DateHints) (time.Time, bool)
}

var dateRules = []dateRule{
	{"iso", parseISO},
	{"day-month-year", parseSlashDate},
	{"named-month", parseNamedMonth},
	{"unix-epoch", parseEpoch},
	{"generic", parseGeneric},
}

// ParseFlexibleDate converts a cell value into a concrete time. The second
// return is false when no recognition rule applies.
func ParseFlexibleDate(v any) (time.Time, bool) {
	return ParseFlexibleDateHint(v, DefaultDateHints())
}

// ParseFlexibleDateHint is ParseFlexibleDate with explicit disambiguation
// hints.
func ParseFlexibleDateHint(v any, hints DateHints) (time.Time, bool) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if x.IsZero() {
			return time.Time{}, false
		}
		return x, true
	case *time.Time:
		if x == nil || x.IsZero() {
			return time.Time{}, false
		}
		return *x, true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Time{}, false
		}
		for _, rule := range dateRules {
			if t, ok := rule.parse(s, hints); ok {
				return t, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// LooksLikeDate reports whether a cell value would parse as a date.
func LooksLikeDate(v any) bool {
	_, ok := ParseFlexibleDate(v)
	return ok
}

var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006-1-2",
	"2006/1/2",
}

func parseISO(s string, _ DateHints) (time.Time, bool) {
	if !isoPrefixRe.MatchString(s) {
		return time.Time{}, false
	}
	for _, l := range isoLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseSlashDate handles D/M/YYYY and M/D/YYYY style strings with 2-4
// digit years. Whichever part exceeds 12 must be the day; when both parts
// are <= 12 the hint decides, day-first by default.
func parseSlashDate(s string, hints DateHints) (time.Time, bool) {
	m := slashDateRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	a, _ := strconv.Atoi(m[1])
	b, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if year < 100 {
		year += 2000
	}

	day, month := a, b
	switch {
	case a > 12 && b <= 12:
		day, month = a, b
	case b > 12 && a <= 12:
		day, month = b, a
	case a > 12 && b > 12:
		return time.Time{}, false
	case hints.MonthFirst:
		day, month = b, a
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// reject rollovers like 31/02
	if t.Day() != day || t.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return t, true
}

var namedMonthLayouts = []string{
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"Jan-2006",
	"Jan 2006",
	"January 2006",
	"Jan 2 2006",
}

func parseNamedMonth(s string, _ DateHints) (time.Time, bool) {
	hasAlpha := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasAlpha = true
			break
		}
	}
	if !hasAlpha {
		return time.Time{}, false
	}
	for _, l := range namedMonthLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseEpoch interprets bare 10-digit numbers as Unix seconds and 13-digit
// numbers as milliseconds.
func parseEpoch(s string, _ DateHints) (time.Time, bool) {
	if !bareDigitsRe.MatchString(s) {
		return time.Time{}, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	if len(s) == 13 {
		return time.UnixMilli(n).UTC(), true
	}
	return time.Unix(n, 0).UTC(), true
}

var genericLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"01/02/2006 15:04",
	"01/02/2006 15:04:05",
	"2006.01.02",
}

func parseGeneric(s string, _ DateHints) (time.Time, bool) {
	for _, l := range genericLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
