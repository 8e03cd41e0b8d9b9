package model

import (
	"regexp"
	"strconv"
	"strings"
)

// DateKind classifies how a GEDCOM date value is structured
type DateKind string

const (
	DateSimple DateKind = "simple" // single date, possibly qualified (ABT, BEF, ...)
	DateRange  DateKind = "range"  // BET <date> AND <date>
	DatePeriod DateKind = "period" // FROM <date> TO <date>
	DatePhrase DateKind = "phrase" // free-text phrase, e.g. "(before the war)"
)

// DateValue holds a parsed GEDCOM date. Text always preserves the raw
// value for round-tripping; the year fields are best-effort extractions.
type DateValue struct {
	Kind   DateKind
	Text   string // raw GEDCOM date value
	Year   string // year of a simple date ("" if unknown)
	Year1  string // first endpoint of a range/period
	Year2  string // second endpoint of a range/period
	Phrase string // phrase text for DatePhrase
}

// phraseYearRe extracts the first 3-4 digit year token from a date
// phrase, allowing a leading minus for earlier-era dates.
var phraseYearRe = regexp.MustCompile(`-?\d{3,4}`)

// WhenYear returns the year string for the date, or "" if none can be
// determined. For ranges and periods the second endpoint is reported by
// default; last=true selects the first endpoint.
func (d *DateValue) WhenYear(last bool) string {
	if d == nil {
		return ""
	}
	switch d.Kind {
	case DateRange, DatePeriod:
		if last {
			return d.Year1
		}
		return d.Year2
	case DatePhrase:
		return phraseYearRe.FindString(d.Phrase)
	default:
		return d.Year
	}
}

// WhenYearNum returns the year as an integer, or 0 if unavailable.
func (d *DateValue) WhenYearNum(last bool) int {
	return YearFromField(d.WhenYear(last))
}

// YearFromField extracts a best-effort numeric year from a free-form
// field. "BC"/"B.C." suffixes yield negative years; otherwise the first
// 4 digits or any digit characters are used. Returns 0 when no year can
// be extracted.
func YearFromField(field string) int {
	field = strings.TrimSpace(field)
	if field == "" {
		return 0
	}
	lower := strings.ToLower(field)
	for _, suffix := range []string{"b.c", "bc"} {
		if i := strings.Index(lower, suffix); i > 0 {
			if n := extractDigits(field[:i]); n != 0 {
				return -n
			}
		}
	}
	if len(field) > 3 && field[3] >= '0' && field[3] <= '9' {
		if n, err := strconv.Atoi(field[:4]); err == nil {
			return n
		}
	}
	if n, err := strconv.Atoi(field); err == nil {
		return n
	}
	return extractDigits(field)
}

// extractDigits collapses a field to its digit characters (keeping a
// leading minus) and parses them. Returns 0 when nothing parses.
func extractDigits(s string) int {
	var digits strings.Builder
	for _, ch := range s {
		if (ch >= '0' && ch <= '9') || ch == '-' {
			digits.WriteRune(ch)
		}
	}
	if digits.Len() == 0 {
		return 0
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0
	}
	return n
}
