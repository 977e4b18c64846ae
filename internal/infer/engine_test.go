package infer

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshap474/tabular/pkg/contracts/domain"
)

func values(ss ...string) []domain.Value {
	out := make([]domain.Value, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func TestInferClassification(t *testing.T) {
	tests := []struct {
		name     string
		values   []domain.Value
		wantType domain.DataType
	}{
		{"iso dates", values("2024-01-02", "2023-05-06", "2022-12-31"), domain.TypeDate},
		{"iso datetimes", values("2024-01-02T10:30:00Z", "2023-05-06 08:15:00"), domain.TypeDatetime},
		{"us dates", values("1/2/2024", "12/31/2023", "7/4/2022"), domain.TypeDate},
		{"dashed dates", values("1-2-2024", "12-31-2023"), domain.TypeDate},
		{"unix seconds", values("1700000000", "1712345678", "1609459200"), domain.TypeDatetime},
		{"unix milliseconds", values("1700000000000", "1712345678000"), domain.TypeDatetime},
		{"integers", values("1", "42", "-7", "1000"), domain.TypeInteger},
		{"floats", values("1.5", "2.25", "-0.75"), domain.TypeFloat},
		{"percentages", values("10%", "20.5%", "99 %"), domain.TypePercentage},
		{"currency prefix", values("$10", "$2,500.00", "$0.99"), domain.TypeCurrency},
		{"currency suffix", values("10€", "2500€", "7€"), domain.TypeCurrency},
		{"booleans", values("yes", "no", "yes", "no"), domain.TypeBoolean},
		{"true false", values("true", "false", "TRUE", "False"), domain.TypeBoolean},
		{"strings", values("alpha", "beta", "gamma"), domain.TypeString},
		{"mixed garbage", values("abc", "2024-01-02", "12", "x"), domain.TypeString},
	}

	engine := NewEngine(0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.Infer(tt.values)
			assert.Equal(t, tt.wantType, got.Type, "reasoning: %s", got.Reasoning)
			assert.Greater(t, got.Confidence, 0.0)
		})
	}
}

func TestInferEmptyColumn(t *testing.T) {
	engine := NewEngine(0)

	got := engine.Infer(nil)
	assert.Equal(t, domain.TypeUnknown, got.Type)
	assert.Zero(t, got.Confidence)

	got = engine.Infer([]domain.Value{nil, "", "  "})
	assert.Equal(t, domain.TypeUnknown, got.Type)
	assert.Zero(t, got.Confidence)
}

func TestInferTrailingDecimalIsFloat(t *testing.T) {
	// "10.0" is numerically integral but the raw string carries a decimal
	// marker, so the column stays float.
	engine := NewEngine(0)
	got := engine.Infer(values("10.0", "20.0", "30.0"))
	assert.Equal(t, domain.TypeFloat, got.Type)
}

func TestInferIntegerFloatMajority(t *testing.T) {
	engine := NewEngine(0)

	got := engine.Infer(values("1", "2", "3", "4.5"))
	assert.Equal(t, domain.TypeInteger, got.Type)

	got = engine.Infer(values("1.5", "2.5", "3.5", "4"))
	assert.Equal(t, domain.TypeFloat, got.Type)
}

func TestInferNumericRatioThreshold(t *testing.T) {
	// 3 of 5 parse as numbers: below the 0.8 ratio, so string wins.
	engine := NewEngine(0)
	got := engine.Infer(values("1", "2", "3", "abc", "def"))
	assert.Equal(t, domain.TypeString, got.Type)
}

func TestInferDateThresholds(t *testing.T) {
	engine := NewEngine(0)

	// 8 of 10 ISO dates: ratio 0.8, confidence 0.8, both clear.
	col := values(
		"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04",
		"2024-01-05", "2024-01-06", "2024-01-07", "2024-01-08",
		"x", "y")
	got := engine.Infer(col)
	assert.Equal(t, domain.TypeDate, got.Type)

	// 6 of 10: ratio clears 0.5 but confidence 0.6 misses 0.7.
	col = values(
		"2024-01-01", "2024-01-02", "2024-01-03",
		"2024-01-04", "2024-01-05", "2024-01-06",
		"a", "b", "c", "d")
	got = engine.Infer(col)
	assert.NotEqual(t, domain.TypeDate, got.Type)
}

func TestInferEuropeanDecimals(t *testing.T) {
	engine := NewEngine(0)
	got := engine.Infer(values("3,14", "2,71", "1,41"))
	require.Equal(t, domain.TypeFloat, got.Type)
	assert.Equal(t, ",", got.DecimalSeparator)
}

func TestInferThousandsSeparators(t *testing.T) {
	engine := NewEngine(0)

	got := engine.Infer(values("1,234", "12,500", "999,000"))
	require.True(t, got.Type.IsNumeric(), "got %s", got.Type)
	assert.Equal(t, ",", got.ThousandsSeparator)

	got = engine.Infer(values("1.234,56", "12.500,00"))
	require.Equal(t, domain.TypeFloat, got.Type)
	assert.Equal(t, ",", got.DecimalSeparator)
	assert.Equal(t, ".", got.ThousandsSeparator)
}

func TestInferDeclaredDateLayout(t *testing.T) {
	// Dotted European dates read as integers once the dots are stripped
	// as thousands separators; the declared layout settles it.
	engine := NewEngine(0)
	col := values("31.12.2023", "15.06.2024", "01.01.2024")

	got := engine.Infer(col)
	assert.Equal(t, domain.TypeInteger, got.Type)

	got = engine.InferWithHints(col, Hints{DateFormat: "02.01.2006"})
	require.Equal(t, domain.TypeDate, got.Type)
	assert.Equal(t, "declared layout", got.Pattern)
}

func TestInferDeclaredDatetimeLayout(t *testing.T) {
	engine := NewEngine(0)
	got := engine.InferWithHints(
		values("31.12.2023 08:30", "01.06.2024 17:45"),
		Hints{DateFormat: "02.01.2006 15:04"})
	assert.Equal(t, domain.TypeDatetime, got.Type)
}

func TestInferDeclaredDecimalSeparator(t *testing.T) {
	// "1,234" alone would read as thousands grouping; the declared comma
	// makes every value a fraction.
	engine := NewEngine(0)
	got := engine.InferWithHints(
		values("1,234", "5,5", "2,75"),
		Hints{DecimalSeparator: ","})
	require.Equal(t, domain.TypeFloat, got.Type)
	assert.Equal(t, ",", got.DecimalSeparator)
}

func TestInferDeclaredThousandsSeparator(t *testing.T) {
	// "1.234" alone would read as a float; the declared dot grouping
	// makes these integers.
	engine := NewEngine(0)
	got := engine.InferWithHints(
		values("1.234", "2.468", "999.000"),
		Hints{ThousandsSeparator: "."})
	require.Equal(t, domain.TypeInteger, got.Type)
	assert.Equal(t, ".", got.ThousandsSeparator)
}

func TestInferTypedSpreadsheetDates(t *testing.T) {
	// Cells already converted from workbook serials arrive as time.Time
	// and must classify as dates again.
	engine := NewEngine(0)
	col := []domain.Value{
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
	}
	got := engine.Infer(col)
	assert.Equal(t, domain.TypeDate, got.Type)
}

func TestInferSampleSizeCapsWork(t *testing.T) {
	// With a sample size of 10, only the first ten non-null values decide:
	// all dates, so the trailing garbage is never seen.
	col := make([]domain.Value, 0, 30)
	for i := 1; i <= 10; i++ {
		col = append(col, fmt.Sprintf("2024-01-%02d", i))
	}
	for i := 0; i < 20; i++ {
		col = append(col, "garbage")
	}
	engine := NewEngine(10)
	got := engine.Infer(col)
	assert.Equal(t, domain.TypeDate, got.Type)
}

func TestInferExamplesAreDistinctAndCapped(t *testing.T) {
	engine := NewEngine(0)
	got := engine.Infer(values("a", "a", "b", "b", "c", "d", "e"))
	require.Equal(t, domain.TypeString, got.Type)
	assert.Equal(t, []string{"a", "b", "c"}, got.Examples)
}

func TestInferStringConfidence(t *testing.T) {
	engine := NewEngine(0)
	got := engine.Infer(values("one", "two", "three"))
	require.Equal(t, domain.TypeString, got.Type)
	assert.InDelta(t, 0.95, got.Confidence, 1e-9)
}

func TestCheckBooleanRatio(t *testing.T) {
	// 9 of 10 boolean tokens is not enough: the ratio must exceed 0.9.
	vals := []string{"yes", "no", "yes", "no", "yes", "no", "yes", "no", "yes", "maybe"}
	_, ok := checkBoolean(vals)
	assert.False(t, ok)

	vals = append(vals[:9], "no")
	r, ok := checkBoolean(vals)
	require.True(t, ok)
	assert.Equal(t, domain.TypeBoolean, r.Type)
}

func TestParseTimestamp(t *testing.T) {
	got, ok := ParseTimestamp("1/2/2024", "MM/DD/YYYY")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), got)

	got, ok = ParseTimestamp("2024-06-15", "something else")
	require.True(t, ok)
	assert.Equal(t, 2024, got.Year())

	_, ok = ParseTimestamp("not a date", "MM/DD/YYYY")
	assert.False(t, ok)
}

func TestParseNumericEdgeCases(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantInt bool
		ok      bool
	}{
		{"42", 42, true, true},
		{"-7", -7, true, true},
		{"3.14", 3.14, false, true},
		{"10.0", 10, false, true},
		{"1,234", 1234, false, true},
		{"1,234,567.89", 1234567.89, false, true},
		{"1.234.567,89", 1234567.89, false, true},
		{"3,14", 3.14, false, true},
		{"", 0, false, false},
		{"abc", 0, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v, isInt, _, ok := parseNumeric(tt.raw)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.InDelta(t, tt.want, v, 1e-9)
				assert.Equal(t, tt.wantInt, isInt)
			}
		})
	}
}
