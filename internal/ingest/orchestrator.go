package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/dshap474/tabular/internal/config"
	apierrors "github.com/dshap474/tabular/internal/errors"
	"github.com/dshap474/tabular/internal/validation"
	"github.com/dshap474/tabular/pkg/contracts/domain"
)

// Orchestrator is the public facade of the ingestion pipeline: it
// validates input, dispatches to the format parsers, and aggregates
// warnings and errors into a single ParseResult.
type Orchestrator struct {
	logger    *slog.Logger
	validator *validation.FileValidator
	csv       *CSVParser
	sheet     *SpreadsheetParser
	metrics   *Metrics
	cfg       config.IngestConfig
}

// NewOrchestrator wires the pipeline components together. metrics may be
// nil when no instrumentation is wanted (CLI use).
func NewOrchestrator(cfg config.IngestConfig, logger *slog.Logger, metrics *Metrics) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		logger:    logger.With(slog.String("component", "orchestrator")),
		validator: validation.NewFileValidator(cfg, logger),
		csv:       NewCSVParser(cfg, logger),
		sheet:     NewSpreadsheetParser(cfg, logger),
		metrics:   metrics,
		cfg:       cfg,
	}
}

// ParseFile validates the file and its options, then dispatches to the
// parser for the detected format. Validation failure returns a zeroed
// success=false result carrying the validation errors; no parser ever
// runs on invalid input.
func (o *Orchestrator) ParseFile(ctx context.Context, file domain.InputFile, opts domain.ParseOptions) domain.ParseResult {
	start := time.Now()
	if o.metrics != nil {
		o.metrics.ParsesActive.Inc()
		defer o.metrics.ParsesActive.Dec()
	}

	fileCheck := o.validator.Validate(file)
	optsCheck := o.validator.ValidateOptions(fileCheck.FileType, opts)
	warnings := append(fileCheck.Warnings, optsCheck.Warnings...)

	if !fileCheck.IsValid || !optsCheck.IsValid {
		result := domain.ParseResult{
			Success: false,
			Metadata: domain.FileMetadata{
				FileName:     file.Name,
				FileSize:     file.Size,
				FileType:     fileCheck.FileType,
				ParseOptions: opts,
			},
			Errors:   append(fileCheck.Errors, optsCheck.Errors...),
			Warnings: warnings,
		}
		o.metrics.observe(string(fileCheck.FileType), false, time.Since(start).Seconds())
		return result
	}

	var result domain.ParseResult
	switch {
	case fileCheck.FileType == domain.FileTypeCSV:
		result = o.csv.Parse(ctx, file, opts)
	case fileCheck.FileType.IsSpreadsheet():
		result = o.sheet.Parse(ctx, file, opts)
	}
	result.Warnings = append(warnings, result.Warnings...)

	o.metrics.observe(string(fileCheck.FileType), result.Success, time.Since(start).Seconds())
	return result
}

// PreviewFile returns headers plus a capped row window without running
// full type inference. A non-positive limit uses the configured default.
func (o *Orchestrator) PreviewFile(ctx context.Context, file domain.InputFile, opts domain.ParseOptions, limit int) (domain.PreviewResult, *apierrors.APIError) {
	if limit <= 0 {
		limit = o.cfg.PreviewRows
	}

	fileCheck := o.validator.Validate(file)
	if !fileCheck.IsValid {
		return domain.PreviewResult{}, validationAPIError(fileCheck)
	}

	switch {
	case fileCheck.FileType == domain.FileTypeCSV:
		return o.csv.Preview(ctx, file, opts, limit)
	case fileCheck.FileType.IsSpreadsheet():
		return o.sheet.Preview(ctx, file, opts, limit)
	}
	return domain.PreviewResult{}, apierrors.UnsupportedFileType(file.Name)
}

// ListSheets returns the sheet names of a workbook file.
func (o *Orchestrator) ListSheets(file domain.InputFile) ([]string, *apierrors.APIError) {
	fileCheck := o.validator.Validate(file)
	if !fileCheck.IsValid {
		return nil, validationAPIError(fileCheck)
	}
	if !fileCheck.FileType.IsSpreadsheet() {
		return nil, apierrors.ErrValidation("file", "sheet listing requires a workbook file")
	}
	return o.sheet.ListSheets(file)
}

// GetFileInfo runs file-level validation only, returning the detected
// format, size warnings, and row estimates.
func (o *Orchestrator) GetFileInfo(file domain.InputFile) domain.ValidationResult {
	return o.validator.Validate(file)
}

// ParseFiles parses a batch of files with bounded concurrency: at most
// min(len(files), BatchConcurrency) parses run at any instant, gated by
// a counting semaphore. One file's failure never aborts the others.
// Results are returned in input order.
func (o *Orchestrator) ParseFiles(ctx context.Context, files []domain.InputFile, opts domain.ParseOptions) []domain.ParseResult {
	results := make([]domain.ParseResult, len(files))
	if len(files) == 0 {
		return results
	}

	weight := int64(min(len(files), o.cfg.BatchConcurrency))
	sem := semaphore.NewWeighted(weight)

	var wg sync.WaitGroup
	for i, file := range files {
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = failure(domain.FileMetadata{
				FileName:     file.Name,
				FileSize:     file.Size,
				ParseOptions: opts,
			}, nil, apierrors.NewWithDetails(499, apierrors.CodeFileReadError,
				"Batch parse cancelled", err.Error()))
			continue
		}
		wg.Add(1)
		go func(i int, file domain.InputFile) {
			defer wg.Done()
			defer sem.Release(1)
			results[i] = o.ParseFile(ctx, file, opts)
		}(i, file)
	}
	wg.Wait()

	o.logger.InfoContext(ctx, "batch parse complete",
		slog.Int("files", len(files)),
		slog.Int64("concurrency", weight))

	return results
}

// ParseFileWithProgress wraps ParseFile with a phase/percent callback.
// The percentages emitted during the parsing phase are estimated, not
// measured: the underlying decoders expose no incremental progress.
func (o *Orchestrator) ParseFileWithProgress(ctx context.Context, file domain.InputFile, opts domain.ParseOptions, report domain.ProgressFunc) domain.ParseResult {
	if report == nil {
		report = func(domain.ProgressUpdate) {}
	}
	emit := func(phase domain.ProgressPhase, percent int, message string) {
		report(domain.ProgressUpdate{
			FileName: file.Name,
			Phase:    phase,
			Percent:  percent,
			Message:  message,
		})
	}

	emit(domain.PhaseValidation, 5, "validating file")
	fileCheck := o.validator.Validate(file)
	optsCheck := o.validator.ValidateOptions(fileCheck.FileType, opts)
	if !fileCheck.IsValid || !optsCheck.IsValid {
		result := domain.ParseResult{
			Success: false,
			Metadata: domain.FileMetadata{
				FileName:     file.Name,
				FileSize:     file.Size,
				FileType:     fileCheck.FileType,
				ParseOptions: opts,
			},
			Errors:   append(fileCheck.Errors, optsCheck.Errors...),
			Warnings: append(fileCheck.Warnings, optsCheck.Warnings...),
		}
		emit(domain.PhaseError, 100, firstErrorMessage(result))
		return result
	}
	emit(domain.PhaseValidation, 15, "validation complete")

	// Estimated checkpoints; see the method contract.
	emit(domain.PhaseParsing, 30, "reading file")
	emit(domain.PhaseParsing, 60, "parsing rows")
	result := o.ParseFile(ctx, file, opts)
	emit(domain.PhaseParsing, 85, "inferring column types")

	if result.Success {
		emit(domain.PhaseComplete, 100, fmt.Sprintf(
			"parsed %d rows across %d columns",
			result.Metadata.FinalRowCount, result.Metadata.ColumnCount))
	} else {
		emit(domain.PhaseError, 100, firstErrorMessage(result))
	}
	return result
}

func firstErrorMessage(result domain.ParseResult) string {
	if len(result.Errors) == 0 {
		return "parse failed"
	}
	return result.Errors[0].Message
}

// validationAPIError converts a failed validation into a transport
// error, preserving the first error's code.
func validationAPIError(check domain.ValidationResult) *apierrors.APIError {
	if len(check.Errors) == 0 {
		return apierrors.ErrValidationFailed
	}
	first := check.Errors[0]
	if first.Code == apierrors.CodeUnsupportedFileType {
		return apierrors.NewWithDetails(415, first.Code, first.Message, check.Warnings)
	}
	return apierrors.NewWithDetails(400, first.Code, first.Message, check.Warnings)
}
