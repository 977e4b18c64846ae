package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"

	"github.com/dshap474/tabular/internal/config"
	"github.com/dshap474/tabular/internal/detect"
	apierrors "github.com/dshap474/tabular/internal/errors"
	"github.com/dshap474/tabular/internal/infer"
	"github.com/dshap474/tabular/pkg/contracts/domain"
)

// lowConfidenceDelimiter is the detection confidence below which a
// warning is attached to the result.
const lowConfidenceDelimiter = 0.8

// CSVParser decodes delimited text files into parsed tables.
type CSVParser struct {
	logger   *slog.Logger
	detector *detect.Detector
	engine   *infer.Engine
	cfg      config.IngestConfig
}

// NewCSVParser creates a CSV parser with the given limits.
func NewCSVParser(cfg config.IngestConfig, logger *slog.Logger) *CSVParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVParser{
		logger:   logger.With(slog.String("component", "csv_parser")),
		detector: detect.NewDetector(),
		engine:   infer.NewEngine(cfg.SampleSize),
		cfg:      cfg,
	}
}

// Parse reads the file fully as text, resolves the delimiter, cleans
// cells, applies row limits, and assembles the column store. Every
// failure path returns a success=false result with structured errors.
func (p *CSVParser) Parse(ctx context.Context, file domain.InputFile, opts domain.ParseOptions) domain.ParseResult {
	start := time.Now()
	meta := domain.FileMetadata{
		ParseID:      uuid.New().String(),
		FileName:     file.Name,
		FileSize:     file.Size,
		FileType:     domain.FileTypeCSV,
		ParseOptions: opts,
	}
	text, warnings := decodeText(file.Content, opts.Encoding, nil)
	text = strings.TrimPrefix(text, "\ufeff")

	delimiter := opts.Delimiter
	var detected domain.DelimiterDetection
	if delimiter == "" {
		detected = p.detector.Detect(text, p.cfg.DetectLines)
		delimiter = detected.Delimiter
		if detected.Confidence < lowConfidenceDelimiter {
			warnings = append(warnings, fmt.Sprintf(
				"delimiter detection confidence is low (%.2f for %q); consider declaring a delimiter",
				detected.Confidence, detected.Delimiter))
		}
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = []rune(delimiter)[0]
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return failure(meta, warnings, apierrors.ParseFailure(err))
	}
	if len(records) == 0 {
		return failure(meta, warnings, apierrors.ErrNoHeaders)
	}

	headerRow := records[0]
	if isBlankHeader(headerRow) {
		return failure(meta, warnings, apierrors.ErrNoHeaders)
	}
	headers := normalizeHeaders(headerRow)

	dataRows := records[1:]
	meta.OriginalRowCount = len(dataRows)
	if len(dataRows) == 0 {
		return failure(meta, warnings, apierrors.ErrNoData)
	}

	if skip := opts.SkipFirstNRows; skip > 0 {
		if skip >= len(dataRows) {
			return failure(meta, warnings, apierrors.ErrNoDataAfterSkip)
		}
		dataRows = dataRows[skip:]
	}

	if opts.MaxRows > 0 && len(dataRows) > opts.MaxRows {
		warnings = append(warnings, fmt.Sprintf(
			"row count %d exceeds max_rows %d; table truncated", len(dataRows), opts.MaxRows))
		dataRows = dataRows[:opts.MaxRows]
	}

	rows, overflow := cleanRows(dataRows, len(headers), opts.SkipEmpty())
	if overflow > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"%d row(s) had more cells than headers; extra cells were dropped", overflow))
	}
	if len(rows) == 0 {
		return failure(meta, warnings, apierrors.ErrNoData)
	}

	table, columns := assembleTable(p.engine, headers, headerRow, rows, opts)
	meta.FinalRowCount = len(rows)
	meta.ColumnCount = len(headers)
	meta.Columns = columns
	meta.ProcessingTime = time.Since(start)

	p.logger.InfoContext(ctx, "csv parse complete",
		slog.String("parse_id", meta.ParseID),
		slog.String("file_name", file.Name),
		slog.String("delimiter", delimiter),
		slog.Int("rows", meta.FinalRowCount),
		slog.Int("columns", meta.ColumnCount),
		slog.Duration("duration", meta.ProcessingTime))

	return domain.ParseResult{
		Success:  true,
		Data:     table,
		Metadata: meta,
		Warnings: warnings,
	}
}

// Preview returns headers plus a capped row window without running type
// inference. Total counts are -1 since no full parse occurred.
func (p *CSVParser) Preview(ctx context.Context, file domain.InputFile, opts domain.ParseOptions, limit int) (domain.PreviewResult, *apierrors.APIError) {
	text, warnings := decodeText(file.Content, opts.Encoding, nil)
	text = strings.TrimPrefix(text, "\ufeff")

	delimiter := opts.Delimiter
	if delimiter == "" {
		detected := p.detector.Detect(text, p.cfg.DetectLines)
		delimiter = detected.Delimiter
		if detected.Confidence < lowConfidenceDelimiter {
			warnings = append(warnings, fmt.Sprintf(
				"delimiter detection confidence is low (%.2f)", detected.Confidence))
		}
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = []rune(delimiter)[0]
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var headers []string
	rows := make([][]domain.Value, 0, limit)
	for len(rows) < limit {
		record, err := reader.Read()
		if err != nil {
			break
		}
		if headers == nil {
			if isBlankHeader(record) {
				return domain.PreviewResult{}, apierrors.ErrNoHeaders
			}
			headers = normalizeHeaders(record)
			continue
		}
		row := make([]domain.Value, len(headers))
		for i := range headers {
			if i < len(record) {
				row[i] = cleanCell(record[i])
			}
		}
		rows = append(rows, row)
	}
	if headers == nil {
		return domain.PreviewResult{}, apierrors.ErrNoHeaders
	}

	p.logger.DebugContext(ctx, "csv preview",
		slog.String("file_name", file.Name),
		slog.Int("rows", len(rows)))

	return domain.PreviewResult{
		Headers:      headers,
		Rows:         rows,
		TotalRows:    -1,
		TotalColumns: -1,
		Delimiter:    delimiter,
		Warnings:     warnings,
	}, nil
}

// cleanRows trims and null-maps every cell, pads short rows to the
// header width, and optionally drops rows where every cell is null.
// Returns the cleaned rows and how many rows were wider than the header.
func cleanRows(records [][]string, width int, skipEmpty bool) ([][]domain.Value, int) {
	rows := make([][]domain.Value, 0, len(records))
	overflow := 0
	for _, record := range records {
		if len(record) > width {
			overflow++
		}
		row := make([]domain.Value, width)
		for i := 0; i < width; i++ {
			if i < len(record) {
				row[i] = cleanCell(record[i])
			}
		}
		if skipEmpty && isEmptyRow(row) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, overflow
}

// countOnlyColumnInfo produces metadata without type inference, used
// when the caller disabled it.
func countOnlyColumnInfo(name, original string, values []domain.Value) domain.ColumnInfo {
	nullCount, uniqueCount := countValues(values)
	return domain.ColumnInfo{
		Name:         name,
		OriginalName: original,
		InferredType: domain.TypeUnknown,
		NullCount:    nullCount,
		UniqueCount:  uniqueCount,
	}
}

// decodeText converts file bytes to UTF-8 text per the declared
// encoding, appending to warnings when the declaration cannot be
// honored. UTF-8 and ASCII content passes through untouched; anything
// outside the supported set degrades to UTF-8 with a warning.
func decodeText(content []byte, encoding string, warnings []string) (string, []string) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8", "ascii":
		return string(content), warnings
	case "latin1", "iso-8859-1":
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(content)
		if err != nil {
			return string(content), append(warnings, fmt.Sprintf(
				"failed to decode %s content; falling back to utf-8", encoding))
		}
		return string(decoded), warnings
	default:
		return string(content), append(warnings, fmt.Sprintf(
			"encoding %q is not supported; falling back to utf-8", encoding))
	}
}

// isBlankHeader reports whether every header cell is empty after trim.
func isBlankHeader(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// failure builds a zeroed, success=false result carrying the error.
func failure(meta domain.FileMetadata, warnings []string, errs ...*apierrors.APIError) domain.ParseResult {
	parseErrs := make([]domain.ParseError, 0, len(errs))
	for _, e := range errs {
		parseErrs = append(parseErrs, e.ToParseError())
	}
	meta.FinalRowCount = 0
	meta.ColumnCount = 0
	meta.Columns = nil
	return domain.ParseResult{
		Success:  false,
		Data:     nil,
		Metadata: meta,
		Errors:   parseErrs,
		Warnings: warnings,
	}
}
