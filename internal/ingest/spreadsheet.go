package ingest

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/dshap474/tabular/internal/config"
	apierrors "github.com/dshap474/tabular/internal/errors"
	"github.com/dshap474/tabular/internal/infer"
	"github.com/dshap474/tabular/pkg/contracts/domain"
)

// Plausible workbook serial-date range: 1900-01-01 through 9999-12-31.
// Integer cells inside it are converted to calendar dates.
const (
	minDateSerial = 2
	maxDateSerial = 2958465
)

// SpreadsheetParser decodes xlsx/xls workbooks into parsed tables.
type SpreadsheetParser struct {
	logger *slog.Logger
	engine *infer.Engine
	cfg    config.IngestConfig
}

// NewSpreadsheetParser creates a workbook parser with the given limits.
func NewSpreadsheetParser(cfg config.IngestConfig, logger *slog.Logger) *SpreadsheetParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &SpreadsheetParser{
		logger: logger.With(slog.String("component", "spreadsheet_parser")),
		engine: infer.NewEngine(cfg.SampleSize),
		cfg:    cfg,
	}
}

// Parse decodes the workbook, resolves the requested sheet, converts it
// to a row matrix with the first row as headers, and assembles the
// column store. Sheet selection precedence: explicit name, explicit
// index, first sheet.
func (p *SpreadsheetParser) Parse(ctx context.Context, file domain.InputFile, opts domain.ParseOptions) domain.ParseResult {
	start := time.Now()
	fileType := domain.FileTypeXLSX
	if detected, ok := detectSpreadsheetType(file.Name); ok {
		fileType = detected
	}
	meta := domain.FileMetadata{
		ParseID:      uuid.New().String(),
		FileName:     file.Name,
		FileSize:     file.Size,
		FileType:     fileType,
		ParseOptions: opts,
	}
	var warnings []string

	f, err := excelize.OpenReader(bytes.NewReader(file.Content))
	if err != nil {
		return failure(meta, warnings, apierrors.ParseFailure(err))
	}
	defer f.Close()

	sheet, sheetWarnings, apiErr := resolveSheet(f, opts)
	warnings = append(warnings, sheetWarnings...)
	if apiErr != nil {
		return failure(meta, warnings, apiErr)
	}

	matrix, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return failure(meta, warnings, sheetAccessError(sheet, err))
	}
	if len(matrix) == 0 {
		return failure(meta, warnings, apierrors.ErrNoHeaders)
	}

	headerRow := matrix[0]
	if isBlankHeader(headerRow) {
		return failure(meta, warnings, apierrors.ErrNoHeaders)
	}
	headers := normalizeHeaders(headerRow)

	dataRows := matrix[1:]
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

	rows, dateFailures := p.cleanSheetRows(dataRows, len(headers), opts.SkipEmpty())
	if dateFailures > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"%d cell(s) in the serial-date range could not be converted; original values kept", dateFailures))
	}
	if len(rows) == 0 {
		return failure(meta, warnings, apierrors.ErrNoDataRows)
	}

	table, columns := assembleTable(p.engine, headers, headerRow, rows, opts)
	meta.FinalRowCount = len(rows)
	meta.ColumnCount = len(headers)
	meta.Columns = columns
	meta.ProcessingTime = time.Since(start)

	p.logger.InfoContext(ctx, "spreadsheet parse complete",
		slog.String("parse_id", meta.ParseID),
		slog.String("file_name", file.Name),
		slog.String("sheet", sheet),
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

// ListSheets returns the workbook's sheet names in order.
func (p *SpreadsheetParser) ListSheets(file domain.InputFile) ([]string, *apierrors.APIError) {
	f, err := excelize.OpenReader(bytes.NewReader(file.Content))
	if err != nil {
		return nil, apierrors.ParseFailure(err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apierrors.ErrNoSheets
	}
	return sheets, nil
}

// Preview returns headers plus a capped row window from the resolved
// sheet without running type inference.
func (p *SpreadsheetParser) Preview(ctx context.Context, file domain.InputFile, opts domain.ParseOptions, limit int) (domain.PreviewResult, *apierrors.APIError) {
	f, err := excelize.OpenReader(bytes.NewReader(file.Content))
	if err != nil {
		return domain.PreviewResult{}, apierrors.ParseFailure(err)
	}
	defer f.Close()

	sheet, warnings, apiErr := resolveSheet(f, opts)
	if apiErr != nil {
		return domain.PreviewResult{}, apiErr
	}

	matrix, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return domain.PreviewResult{}, sheetAccessError(sheet, err)
	}
	if len(matrix) == 0 || isBlankHeader(matrix[0]) {
		return domain.PreviewResult{}, apierrors.ErrNoHeaders
	}

	headers := normalizeHeaders(matrix[0])
	dataRows := matrix[1:]
	if len(dataRows) > limit {
		dataRows = dataRows[:limit]
	}
	rows, _ := p.cleanSheetRows(dataRows, len(headers), opts.SkipEmpty())

	p.logger.DebugContext(ctx, "spreadsheet preview",
		slog.String("file_name", file.Name),
		slog.String("sheet", sheet),
		slog.Int("rows", len(rows)))

	return domain.PreviewResult{
		Headers:      headers,
		Rows:         rows,
		TotalRows:    -1,
		TotalColumns: -1,
		SheetName:    sheet,
		SheetNames:   f.GetSheetList(),
		Warnings:     warnings,
	}, nil
}

// resolveSheet applies the selection precedence and validates explicit
// selectors. Requesting neither selector on a multi-sheet workbook
// silently uses the first sheet, with a warning.
func resolveSheet(f *excelize.File, opts domain.ParseOptions) (string, []string, *apierrors.APIError) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil, apierrors.ErrNoSheets
	}

	var warnings []string
	if opts.SheetName != "" {
		if opts.SheetIndex != nil {
			warnings = append(warnings, "both sheet_name and sheet_index were given; sheet_name wins")
		}
		for _, s := range sheets {
			if s == opts.SheetName {
				return s, warnings, nil
			}
		}
		return "", warnings, apierrors.SheetNotFound(opts.SheetName, sheets)
	}

	if opts.SheetIndex != nil {
		idx := *opts.SheetIndex
		if idx < 0 || idx >= len(sheets) {
			return "", warnings, apierrors.SheetIndexOutOfRange(idx, len(sheets))
		}
		return sheets[idx], warnings, nil
	}

	if len(sheets) > 1 {
		warnings = append(warnings, fmt.Sprintf(
			"workbook has %d sheets and none was requested; using %q", len(sheets), sheets[0]))
	}
	return sheets[0], warnings, nil
}

// cleanSheetRows mirrors the CSV cleaning rules plus serial-date
// conversion, and reports how many conversions failed.
func (p *SpreadsheetParser) cleanSheetRows(records [][]string, width int, skipEmpty bool) ([][]domain.Value, int) {
	rows := make([][]domain.Value, 0, len(records))
	dateFailures := 0
	for _, record := range records {
		row := make([]domain.Value, width)
		for i := 0; i < width; i++ {
			if i >= len(record) {
				continue
			}
			cell, failed := cleanSheetCell(record[i])
			row[i] = cell
			if failed {
				dateFailures++
			}
		}
		if skipEmpty && isEmptyRow(row) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, dateFailures
}

// cleanSheetCell applies the shared trim and null-token rules, then
// interprets integer cells in the plausible serial-date range as date
// serials. A conversion failure degrades to keeping the original value
// and is reported so the parse can warn instead of failing.
func cleanSheetCell(raw string) (domain.Value, bool) {
	cell := cleanCell(raw)
	s, isStr := cell.(string)
	if !isStr {
		return cell, false
	}

	serial, err := strconv.ParseInt(s, 10, 64)
	if err != nil || serial < minDateSerial || serial > maxDateSerial {
		return cell, false
	}

	t, err := excelize.ExcelDateToTime(float64(serial), false)
	if err != nil {
		return cell, true
	}
	return t, false
}

// sheetAccessError wraps a sheet read failure.
func sheetAccessError(sheet string, err error) *apierrors.APIError {
	return apierrors.NewWithDetails(http.StatusUnprocessableEntity, apierrors.CodeSheetAccessError,
		fmt.Sprintf("Failed to read sheet %q", sheet), err.Error())
}

// detectSpreadsheetType inspects the extension for metadata purposes.
func detectSpreadsheetType(name string) (domain.FileType, bool) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".xlsx"):
		return domain.FileTypeXLSX, true
	case strings.HasSuffix(lower, ".xls"):
		return domain.FileTypeXLS, true
	}
	return "", false
}
