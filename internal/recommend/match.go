package recommend

import "strings"

// NormalizeKey lowercases a column reference and strips spaces,
// underscores, dashes and punctuation so loosely spelled AI field names
// can line up with real headers.
func NormalizeKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r > 127:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MatchColumn resolves a free-text field name against the real column
// names. Match order: exact, case-insensitive, normalized, then
// substring containment in either direction. Returns false when nothing
// matches; an empty field resolves to empty without error.
func MatchColumn(field string, columns []string) (string, bool) {
	field = strings.TrimSpace(field)
	if field == "" {
		return "", true
	}
	for _, c := range columns {
		if c == field {
			return c, true
		}
	}
	for _, c := range columns {
		if strings.EqualFold(c, field) {
			return c, true
		}
	}
	nf := NormalizeKey(field)
	if nf != "" {
		for _, c := range columns {
			if NormalizeKey(c) == nf {
				return c, true
			}
		}
		for _, c := range columns {
			nc := NormalizeKey(c)
			if nc == "" {
				continue
			}
			if strings.Contains(nc, nf) || strings.Contains(nf, nc) {
				return c, true
			}
		}
	}
	return "", false
}
