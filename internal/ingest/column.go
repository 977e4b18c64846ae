package ingest

import (
	"fmt"

	"github.com/dshap474/tabular/internal/infer"
	"github.com/dshap474/tabular/pkg/contracts/domain"
)

// AssembleColumnInfo combines a column's raw values with the inference
// engine's output into per-column metadata. Null counting treats nil and
// empty strings as null; unique counting is set cardinality over the raw,
// unconverted values. Pure function, no side effects.
func AssembleColumnInfo(engine *infer.Engine, name, originalName string, values []domain.Value) domain.ColumnInfo {
	return assembleColumnInfoHinted(engine, name, originalName, values, infer.Hints{})
}

func assembleColumnInfoHinted(engine *infer.Engine, name, originalName string, values []domain.Value, hints infer.Hints) domain.ColumnInfo {
	inference := engine.InferWithHints(values, hints)
	nullCount, uniqueCount := countValues(values)

	return domain.ColumnInfo{
		Name:         name,
		OriginalName: originalName,
		InferredType: inference.Type,
		SampleValues: inference.Examples,
		NullCount:    nullCount,
		UniqueCount:  uniqueCount,
		Confidence:   inference.Confidence,
	}
}

// assembleTable builds the column store and per-column metadata from
// cleaned rows. Row cells beyond the header width were already dropped.
func assembleTable(engine *infer.Engine, headers, originalHeaders []string, rows [][]domain.Value, opts domain.ParseOptions) (*domain.ParsedTable, []domain.ColumnInfo) {
	table := domain.NewParsedTable()
	columns := make([]domain.ColumnInfo, 0, len(headers))
	hints := infer.Hints{
		DateFormat:         opts.DateFormat,
		DecimalSeparator:   opts.DecimalSeparator,
		ThousandsSeparator: opts.ThousandsSeparator,
	}

	for c, name := range headers {
		values := make([]domain.Value, len(rows))
		for r, row := range rows {
			values[r] = row[c]
		}
		table.AddColumn(name, values)

		original := name
		if c < len(originalHeaders) {
			original = originalHeaders[c]
		}
		if opts.TypesEnabled() {
			columns = append(columns, assembleColumnInfoHinted(engine, name, original, values, hints))
		} else {
			columns = append(columns, countOnlyColumnInfo(name, original, values))
		}
	}
	return table, columns
}

// countValues counts null cells (nil or empty string) and the set
// cardinality of the remaining raw values.
func countValues(values []domain.Value) (nullCount, uniqueCount int) {
	distinct := make(map[string]struct{})
	for _, v := range values {
		if v == nil {
			nullCount++
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			nullCount++
			continue
		}
		distinct[fmt.Sprint(v)] = struct{}{}
	}
	return nullCount, len(distinct)
}
