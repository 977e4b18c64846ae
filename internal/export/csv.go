// Package export writes parsed tables back out as CSV, preserving the
// typed cell values in their canonical text form. Used by the CLI's -o
// flag.
package export

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dshap474/tabular/pkg/contracts/domain"
)

// WriteOptions configures CSV writing behavior.
type WriteOptions struct {
	Delimiter rune
	BOMPrefix bool // add a UTF-8 BOM for Excel compatibility
}

// CSVWriter serializes parsed tables to CSV files.
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a CSV writer.
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger.With(slog.String("component", "csv_writer"))}
}

// WriteTable writes the table to path, headers first, creating parent
// directories as needed.
func (w *CSVWriter) WriteTable(path string, table *domain.ParsedTable, opts WriteOptions) error {
	if table == nil {
		return fmt.Errorf("nil table")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer file.Close()

	if opts.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	if opts.Delimiter != 0 {
		writer.Comma = opts.Delimiter
	}
	defer writer.Flush()

	if err := writer.Write(table.Columns); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}

	rowCount := table.RowCount()
	record := make([]string, len(table.Columns))
	for r := 0; r < rowCount; r++ {
		for c, value := range table.Row(r) {
			record[c] = FormatValue(value)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", r, err)
		}
	}

	w.logger.Info("table exported",
		slog.String("path", path),
		slog.Int("rows", rowCount),
		slog.Int("columns", table.ColumnCount()))

	return writer.Error()
}

// FormatValue renders a typed cell in its canonical text form: dates as
// ISO 8601 (date-only when midnight), floats without trailing zeros,
// nil as the empty string.
func FormatValue(value domain.Value) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format("2006-01-02")
		}
		return v.Format(time.RFC3339)
	case float64:
		return trimFloat(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(v)
	}
}

func trimFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}
