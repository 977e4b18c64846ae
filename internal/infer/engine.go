// Package infer implements heuristic type inference for table columns.
// A column's sampled values are classified into one of the fixed semantic
// data types with a confidence score. Classification priority is fixed:
// date beats numeric (percentage beats currency beats float/integer),
// numeric beats boolean, and string is the fallback.
package infer

import (
	"fmt"
	"strings"
	"time"

	"github.com/dshap474/tabular/pkg/contracts/domain"
)

// DefaultSampleSize is the number of values sampled per column.
const DefaultSampleSize = 100

// maxExamples caps the representative values carried on a result.
const maxExamples = 3

// Result is the outcome of classifying one column.
type Result struct {
	Type       domain.DataType
	Confidence float64
	Examples   []string
	Pattern    string
	Reasoning  string

	// Detected non-default separators, propagated for the caller's
	// formatting needs when the column is numeric.
	DecimalSeparator   string
	ThousandsSeparator string
}

// Hints carries caller-declared formatting overrides. Zero values mean
// "infer from the data". DateFormat is a Go time layout tried at full
// weight ahead of the built-in patterns; the separators bypass locale
// detection for markers they cover.
type Hints struct {
	DateFormat         string
	DecimalSeparator   string
	ThousandsSeparator string
}

// Engine classifies column values. It is stateless apart from its sample
// size and safe for concurrent use.
type Engine struct {
	sampleSize int
}

// NewEngine creates an inference engine. A non-positive sampleSize falls
// back to DefaultSampleSize.
func NewEngine(sampleSize int) *Engine {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	return &Engine{sampleSize: sampleSize}
}

// Infer classifies the column with no formatting overrides. Null and
// empty values are dropped before sampling; a column with nothing left
// is unknown with confidence zero. The pipeline short-circuits at the
// first confident match.
func (e *Engine) Infer(values []domain.Value) Result {
	return e.InferWithHints(values, Hints{})
}

// InferWithHints classifies the column honoring the caller's declared
// formats.
func (e *Engine) InferWithHints(values []domain.Value, hints Hints) Result {
	sample := e.sampleStrings(values)
	if len(sample) == 0 {
		return Result{
			Type:      domain.TypeUnknown,
			Reasoning: "column contains no non-empty values",
		}
	}

	if r, ok := checkDate(sample, hints); ok {
		return r
	}
	if r, ok := checkNumeric(sample, hints); ok {
		return r
	}
	if r, ok := checkBoolean(sample); ok {
		return r
	}

	return Result{
		Type:       domain.TypeString,
		Confidence: 0.95,
		Examples:   examples(sample),
		Reasoning:  "no date, numeric, or boolean pattern matched",
	}
}

// sampleStrings drops null/empty values, then stringifies and trims up to
// sampleSize of the remainder.
func (e *Engine) sampleStrings(values []domain.Value) []string {
	sample := make([]string, 0, min(len(values), e.sampleSize))
	for _, v := range values {
		if v == nil {
			continue
		}
		s := strings.TrimSpace(stringify(v))
		if s == "" {
			continue
		}
		sample = append(sample, s)
		if len(sample) == e.sampleSize {
			break
		}
	}
	return sample
}

// stringify renders a cell for pattern matching. Dates keep their ISO
// form so already-typed spreadsheet cells classify as dates again.
func stringify(v domain.Value) string {
	switch t := v.(type) {
	case string:
		return t
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format(time.RFC3339)
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", t), "0"), ".")
	default:
		return fmt.Sprint(v)
	}
}

// booleanTokens is the fixed case-insensitive boolean vocabulary.
var booleanTokens = map[string]struct{}{
	"true": {}, "false": {},
	"yes": {}, "no": {},
	"y": {}, "n": {},
	"1": {}, "0": {},
}

// checkBoolean classifies boolean when more than 90% of values are in the
// fixed token set.
func checkBoolean(values []string) (Result, bool) {
	matches := 0
	for _, v := range values {
		if _, ok := booleanTokens[strings.ToLower(v)]; ok {
			matches++
		}
	}
	ratio := float64(matches) / float64(len(values))
	if ratio <= 0.9 {
		return Result{}, false
	}
	return Result{
		Type:       domain.TypeBoolean,
		Confidence: ratio,
		Examples:   examples(values),
		Reasoning:  fmt.Sprintf("%d of %d values are boolean tokens", matches, len(values)),
	}, true
}

// examples picks up to three distinct representative values.
func examples(values []string) []string {
	out := make([]string, 0, maxExamples)
	seen := make(map[string]struct{}, maxExamples)
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
		if len(out) == maxExamples {
			break
		}
	}
	return out
}
