package infer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dshap474/tabular/pkg/contracts/domain"
)

var percentageRe = regexp.MustCompile(`^[\d,.]+\s?%$`)

// currencySymbols is the fixed set of recognized leading/trailing symbols.
var currencySymbols = []string{"$", "€", "£", "¥", "₹", "₽"}

// checkNumeric classifies percentage, currency, integer, and float
// columns, in that priority order. Percentage and currency each need an
// 0.8 match ratio to win outright; otherwise cleaned values are parsed
// and a combined numeric ratio of at least 0.8 classifies the column as
// integer or float by majority vote.
func checkNumeric(values []string, hints Hints) (Result, bool) {
	if r, ok := checkPercentage(values); ok {
		return r, true
	}
	if r, ok := checkCurrency(values, hints); ok {
		return r, true
	}

	var ints, floats int
	var decimalSep, thousandsSep string
	for _, v := range values {
		_, isInt, seps, ok := parseNumericHinted(v, hints)
		if !ok {
			continue
		}
		if isInt {
			ints++
		} else {
			floats++
		}
		if seps.decimal != "" {
			decimalSep = seps.decimal
		}
		if seps.thousands != "" {
			thousandsSep = seps.thousands
		}
	}

	ratio := float64(ints+floats) / float64(len(values))
	if ratio < 0.8 {
		return Result{}, false
	}

	dataType := domain.TypeFloat
	if ints >= floats {
		dataType = domain.TypeInteger
	}
	return Result{
		Type:               dataType,
		Confidence:         ratio,
		Examples:           examples(values),
		Reasoning:          fmt.Sprintf("%d integer and %d float values out of %d sampled", ints, floats, len(values)),
		DecimalSeparator:   decimalSep,
		ThousandsSeparator: thousandsSep,
	}, true
}

func checkPercentage(values []string) (Result, bool) {
	matches := 0
	for _, v := range values {
		if percentageRe.MatchString(v) {
			matches++
		}
	}
	ratio := float64(matches) / float64(len(values))
	if ratio < 0.8 {
		return Result{}, false
	}
	return Result{
		Type:       domain.TypePercentage,
		Confidence: ratio,
		Examples:   examples(values),
		Pattern:    "percentage",
		Reasoning:  fmt.Sprintf("%d of %d values end in %%", matches, len(values)),
	}, true
}

func checkCurrency(values []string, hints Hints) (Result, bool) {
	matches := 0
	symbol := ""
	for _, v := range values {
		stripped, sym, ok := stripCurrencySymbol(v)
		if !ok {
			continue
		}
		if _, _, _, numOK := parseNumericHinted(stripped, hints); numOK {
			matches++
			symbol = sym
		}
	}
	ratio := float64(matches) / float64(len(values))
	if ratio < 0.8 {
		return Result{}, false
	}
	return Result{
		Type:       domain.TypeCurrency,
		Confidence: ratio,
		Examples:   examples(values),
		Pattern:    "currency " + symbol,
		Reasoning:  fmt.Sprintf("%d of %d values carry a currency symbol", matches, len(values)),
	}, true
}

// stripCurrencySymbol removes a single leading or trailing currency
// symbol (with optional adjacent space) and reports which one was found.
func stripCurrencySymbol(v string) (string, string, bool) {
	for _, sym := range currencySymbols {
		if rest, ok := strings.CutPrefix(v, sym); ok {
			return strings.TrimSpace(rest), sym, true
		}
		if rest, ok := strings.CutSuffix(v, sym); ok {
			return strings.TrimSpace(rest), sym, true
		}
	}
	return v, "", false
}

// separators records which locale markers a value used.
type separators struct {
	decimal   string // set when the decimal marker is not "."
	thousands string
}

// parseNumericHinted honors declared separators verbatim instead of
// inferring them: the thousands marker is stripped, the decimal marker
// rewritten to ".", and whatever remains goes to strconv. Without hints
// it falls through to locale inference.
func parseNumericHinted(raw string, hints Hints) (float64, bool, separators, bool) {
	if hints.DecimalSeparator == "" && hints.ThousandsSeparator == "" {
		return parseNumeric(raw)
	}

	s := strings.ReplaceAll(raw, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, false, separators{}, false
	}

	var seps separators
	if ts := hints.ThousandsSeparator; ts != "" && strings.Contains(s, ts) {
		s = strings.ReplaceAll(s, ts, "")
		seps.thousands = ts
	}
	if ds := hints.DecimalSeparator; ds != "" && strings.Contains(s, ds) {
		if strings.Count(s, ds) > 1 {
			return 0, false, separators{}, false
		}
		s = strings.Replace(s, ds, ".", 1)
		if ds != "." {
			seps.decimal = ds
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, separators{}, false
	}

	// A declared thousands marker does not make a value fractional; only
	// a surviving decimal point does.
	isInt := v == math.Trunc(v) && !strings.Contains(s, ".")
	return v, isInt, seps, true
}

// parseNumeric cleans locale separators out of a raw value and parses it.
// isInt is true only when the parsed value is integral AND the raw string
// carried no decimal or thousands marker at all, so "10.0" counts as a
// float even though numerically integral.
func parseNumeric(raw string) (float64, bool, separators, bool) {
	s := strings.ReplaceAll(raw, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, false, separators{}, false
	}

	cleaned, seps, ok := normalizeSeparators(s)
	if !ok {
		return 0, false, separators{}, false
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false, separators{}, false
	}

	hadMarker := strings.ContainsAny(raw, ",.")
	isInt := v == math.Trunc(v) && !hadMarker
	return v, isInt, seps, true
}

// normalizeSeparators rewrites a numeric string into strconv form.
// A single comma with at most two trailing digits and no dot is a
// European decimal separator; repeated commas with at most one dot are
// thousands separators, and symmetrically for dot-as-thousands.
func normalizeSeparators(s string) (string, separators, bool) {
	commas := strings.Count(s, ",")
	dots := strings.Count(s, ".")

	switch {
	case commas == 0 && dots <= 1:
		return s, separators{}, true

	case commas == 1 && dots == 0:
		idx := strings.LastIndex(s, ",")
		trailing := len(s) - idx - 1
		if trailing <= 2 {
			// European decimal comma: "3,14" or "12,5".
			return strings.Replace(s, ",", ".", 1), separators{decimal: ","}, true
		}
		// Thousands grouping: "1,234".
		return strings.ReplaceAll(s, ",", ""), separators{thousands: ","}, true

	case commas >= 1 && dots <= 1:
		// Commas group thousands; an optional dot is the decimal:
		// "1,234,567.89".
		if dots == 1 && strings.LastIndex(s, ".") < strings.LastIndex(s, ",") {
			// "1.234,56": dot groups thousands, comma is the decimal.
			out := strings.ReplaceAll(s, ".", "")
			out = strings.Replace(out, ",", ".", 1)
			return out, separators{decimal: ",", thousands: "."}, true
		}
		return strings.ReplaceAll(s, ",", ""), separators{thousands: ","}, true

	case dots >= 1 && commas <= 1:
		// Dots group thousands; an optional comma is the decimal:
		// "1.234.567,89".
		out := strings.ReplaceAll(s, ".", "")
		seps := separators{thousands: "."}
		if commas == 1 {
			out = strings.Replace(out, ",", ".", 1)
			seps.decimal = ","
		}
		return out, seps, true

	default:
		return "", separators{}, false
	}
}
