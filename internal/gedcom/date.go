package gedcom

import (
	"regexp"
	"strings"

	"github.com/ancestree/gedfilter/internal/model"
)

var yearTokenRe = regexp.MustCompile(`-?\d{3,4}`)

// dateQualifiers are approximation/bound prefixes on simple dates.
var dateQualifiers = []string{"ABT ", "CAL ", "EST ", "BEF ", "AFT "}

// ParseDate parses a GEDCOM DATE value into a model.DateValue. The
// grammar covered: "BET <d> AND <d>" (range), "FROM <d> TO <d>"
// (period), "(<phrase>)" and "INT <d> (<phrase>)" (phrase with optional
// interpreted date), and plain dates with an optional qualifier prefix.
// Returns nil for an empty value.
func ParseDate(value string) *model.DateValue {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	upper := strings.ToUpper(value)

	if rest, ok := strings.CutPrefix(upper, "BET "); ok {
		if first, second, found := strings.Cut(rest, " AND "); found {
			return &model.DateValue{
				Kind:  model.DateRange,
				Text:  value,
				Year1: lastYearToken(first),
				Year2: lastYearToken(second),
			}
		}
	}
	if rest, ok := strings.CutPrefix(upper, "FROM "); ok {
		if first, second, found := strings.Cut(rest, " TO "); found {
			return &model.DateValue{
				Kind:  model.DatePeriod,
				Text:  value,
				Year1: lastYearToken(first),
				Year2: lastYearToken(second),
			}
		}
	}
	if strings.HasPrefix(value, "(") {
		return &model.DateValue{
			Kind:   model.DatePhrase,
			Text:   value,
			Phrase: strings.TrimSuffix(strings.TrimPrefix(value, "("), ")"),
		}
	}
	if rest, ok := strings.CutPrefix(upper, "INT "); ok {
		// interpreted date: keep the date part, drop the phrase
		if datePart, _, found := strings.Cut(rest, "("); found {
			return &model.DateValue{
				Kind: model.DateSimple,
				Text: value,
				Year: lastYearToken(datePart),
			}
		}
	}

	simple := upper
	for _, q := range dateQualifiers {
		if rest, ok := strings.CutPrefix(simple, q); ok {
			simple = rest
			break
		}
	}
	return &model.DateValue{
		Kind: model.DateSimple,
		Text: value,
		Year: lastYearToken(simple),
	}
}

// lastYearToken returns the last 3-4 digit token of a date part, which
// is where the year sits in GEDCOM's "7 JUN 1863" layout.
func lastYearToken(s string) string {
	tokens := yearTokenRe.FindAllString(s, -1)
	if len(tokens) == 0 {
		return ""
	}
	return tokens[len(tokens)-1]
}
