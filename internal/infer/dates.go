package infer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dshap474/tabular/pkg/contracts/domain"
)

// datePattern is one recognized date format: a shape regex, a parse
// layout, and an intrinsic confidence weight. Unambiguous formats carry
// more weight than two-digit-year shorthands.
type datePattern struct {
	name     string
	re       *regexp.Regexp
	layout   string
	weight   float64
	dataType domain.DataType
}

var datePatterns = []datePattern{
	{"ISO 8601 date", regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`), "2006-01-02", 1.0, domain.TypeDate},
	{"ISO 8601 datetime", regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}(:\d{2})?(\.\d+)?(Z|[+-]\d{2}:?\d{2})?$`), "", 1.0, domain.TypeDatetime},
	{"MM/DD/YYYY", regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`), "1/2/2006", 0.9, domain.TypeDate},
	{"YYYY/MM/DD", regexp.MustCompile(`^\d{4}/\d{1,2}/\d{1,2}$`), "2006/1/2", 0.9, domain.TypeDate},
	{"MM-DD-YYYY", regexp.MustCompile(`^\d{1,2}-\d{1,2}-\d{4}$`), "1-2-2006", 0.85, domain.TypeDate},
	{"MM/DD/YY", regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2}$`), "1/2/06", 0.7, domain.TypeDate},
	{"MM-DD-YY", regexp.MustCompile(`^\d{1,2}-\d{1,2}-\d{2}$`), "1-2-06", 0.7, domain.TypeDate},
}

// genericLayouts are tried by the generic parse fallback.
var genericLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"02 Jan 06",
}

// dateCandidate is one scored hypothesis about the column's date format.
type dateCandidate struct {
	name       string
	ratio      float64
	confidence float64
	dataType   domain.DataType
}

// checkDate classifies the column as a date when the best candidate
// matches more than half the sample and its weighted confidence clears
// 0.7. Pattern matching, generic parsing (weight 0.8), and unix-timestamp
// detection (weight 0.9) each contribute an independent candidate; a
// declared layout contributes one more at full weight.
func checkDate(values []string, hints Hints) (Result, bool) {
	var best dateCandidate

	if hints.DateFormat != "" {
		best = declaredLayoutCandidate(values, hints.DateFormat)
	}

	for _, p := range datePatterns {
		matches := 0
		for _, v := range values {
			if p.re.MatchString(v) {
				matches++
			}
		}
		ratio := float64(matches) / float64(len(values))
		c := dateCandidate{p.name, ratio, ratio * p.weight, p.dataType}
		if c.confidence > best.confidence {
			best = c
		}
	}

	if c := genericParseCandidate(values); c.confidence > best.confidence {
		best = c
	}
	if c := timestampCandidate(values); c.confidence > best.confidence {
		best = c
	}

	if best.ratio <= 0.5 || best.confidence <= 0.7 {
		return Result{}, false
	}
	return Result{
		Type:       best.dataType,
		Confidence: best.confidence,
		Examples:   examples(values),
		Pattern:    best.name,
		Reasoning:  fmt.Sprintf("detected %s format in %.0f%% of sampled values", best.name, best.ratio*100),
	}, true
}

// declaredLayoutCandidate scores the caller's Go time layout. Declared
// knowledge outranks shape heuristics, so it carries full weight.
func declaredLayoutCandidate(values []string, layout string) dateCandidate {
	matches := 0
	dataType := domain.TypeDate
	if strings.Contains(layout, ":") {
		dataType = domain.TypeDatetime
	}
	for _, v := range values {
		if _, err := time.Parse(layout, v); err == nil {
			matches++
		}
	}
	ratio := float64(matches) / float64(len(values))
	return dateCandidate{"declared layout", ratio, ratio, dataType}
}

// genericParseCandidate counts values parseable by any known layout with
// a year in [1900, 2100).
func genericParseCandidate(values []string) dateCandidate {
	matches := 0
	for _, v := range values {
		if t, ok := parseAnyLayout(v); ok && t.Year() >= 1900 && t.Year() < 2100 {
			matches++
		}
	}
	ratio := float64(matches) / float64(len(values))
	return dateCandidate{"parseable date", ratio, ratio * 0.8, domain.TypeDate}
}

func parseAnyLayout(v string) (time.Time, bool) {
	for _, layout := range genericLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var digitsOnly = regexp.MustCompile(`^\d+$`)

// timestampCandidate detects 10-digit (seconds) and 13-digit
// (milliseconds) unix timestamps whose resulting year is in [1970, 2100).
func timestampCandidate(values []string) dateCandidate {
	matches := 0
	name := "unix timestamp (s)"
	for _, v := range values {
		if !digitsOnly.MatchString(v) {
			continue
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		var t time.Time
		switch len(v) {
		case 10:
			t = time.Unix(n, 0).UTC()
		case 13:
			t = time.UnixMilli(n).UTC()
			name = "unix timestamp (ms)"
		default:
			continue
		}
		if t.Year() >= 1970 && t.Year() < 2100 {
			matches++
		}
	}
	ratio := float64(matches) / float64(len(values))
	return dateCandidate{name, ratio, ratio * 0.9, domain.TypeDatetime}
}

// ParseTimestamp converts a date-classified raw value to a time.Time
// using the detected pattern name, falling back to generic parsing.
// Used by callers that want typed values after classification.
func ParseTimestamp(v, pattern string) (time.Time, bool) {
	for _, p := range datePatterns {
		if p.name == pattern && p.layout != "" && p.re.MatchString(v) {
			if t, err := time.Parse(p.layout, v); err == nil {
				return t, true
			}
		}
	}
	return parseAnyLayout(v)
}
