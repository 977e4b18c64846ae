package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dshap474/tabular/pkg/contracts/domain"
)

func TestNormalizeColumnName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"First Name", "first_name"},
		{"  first   name  ", "first_name"},
		{"Price ($)", "price"},
		{"Total %", "total"},
		{"order-id", "orderid"},
		{"Column_1", "column_1"},
		{"__weird__", "weird"},
		{"UPPER", "upper"},
		{"", "unnamed_column"},
		{"   ", "unnamed_column"},
		{"!!!", "unnamed_column"},
		{"名前", "unnamed_column"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeColumnName(tt.in))
		})
	}
}

func TestNormalizeColumnNameIdempotent(t *testing.T) {
	inputs := []string{"First Name", "Price ($)", "a b c", "", "x__y", "Total %"}
	for _, in := range inputs {
		once := NormalizeColumnName(in)
		assert.Equal(t, once, NormalizeColumnName(once), "input %q", in)
	}
}

func TestNormalizeHeadersDeduplication(t *testing.T) {
	got := normalizeHeaders([]string{"Name", "name", "NAME", "Age"})
	assert.Equal(t, []string{"name", "name_2", "name_3", "age"}, got)
}

func TestNormalizeHeadersBlankFallbacks(t *testing.T) {
	got := normalizeHeaders([]string{"", "  ", "value"})
	assert.Equal(t, []string{"unnamed_column", "unnamed_column_2", "value"}, got)
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Value
	}{
		{"hello", "hello"},
		{"  padded  ", "padded"},
		{"", nil},
		{"   ", nil},
		{"null", nil},
		{"NULL", nil},
		{"na", nil},
		{"NA", nil},
		{"n/a", "n/a"},
		{"0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanCell(tt.in))
		})
	}
}

func TestIsEmptyRow(t *testing.T) {
	assert.True(t, isEmptyRow([]domain.Value{nil, nil, nil}))
	assert.True(t, isEmptyRow(nil))
	assert.False(t, isEmptyRow([]domain.Value{nil, "x", nil}))
}
