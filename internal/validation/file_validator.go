// Package validation provides pre-flight checks for uploaded files and
// parse options. Validation failures never throw: they populate the
// errors and warnings of a ValidationResult, and the orchestrator never
// invokes a parser on invalid input.
package validation

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dshap474/tabular/internal/config"
	apierrors "github.com/dshap474/tabular/internal/errors"
	"github.com/dshap474/tabular/pkg/contracts/domain"
)

// extensionTypes maps file-name extensions to formats. Extension wins
// over the declared MIME type when both are present.
var extensionTypes = map[string]domain.FileType{
	".csv":  domain.FileTypeCSV,
	".xlsx": domain.FileTypeXLSX,
	".xls":  domain.FileTypeXLS,
}

// mimeTypes is the fallback table when the extension is absent or
// unknown.
var mimeTypes = map[string]domain.FileType{
	"text/csv":                  domain.FileTypeCSV,
	"application/csv":           domain.FileTypeCSV,
	"text/plain":                domain.FileTypeCSV,
	"application/vnd.ms-excel":  domain.FileTypeXLS,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": domain.FileTypeXLSX,
}

// CSV row/column estimation heuristic: assume 50 bytes per cell and 10
// columns per row. Used only for a performance warning, never for
// correctness.
const (
	estimatedBytesPerCell = 50
	estimatedColumns      = 10
)

// FileValidator performs size, format, and option validation.
type FileValidator struct {
	logger *slog.Logger
	cfg    config.IngestConfig
}

// NewFileValidator creates a file validator with the given limits.
func NewFileValidator(cfg config.IngestConfig, logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
		cfg:    cfg,
	}
}

// Validate runs the file-level checks: size policy and format detection.
// For CSV files it also estimates row and column counts from the byte
// size to attach a performance warning for very large tables.
func (v *FileValidator) Validate(file domain.InputFile) domain.ValidationResult {
	result := domain.ValidationResult{IsValid: true}

	if file.Size == 0 {
		result.IsValid = false
		result.Errors = append(result.Errors, domain.ParseError{
			Code:    apierrors.CodeDataValidationError,
			Message: fmt.Sprintf("File %q is empty", file.Name),
		})
	}
	if file.Size > v.cfg.MaxFileSize {
		result.IsValid = false
		result.Errors = append(result.Errors, domain.ParseError{
			Code: apierrors.CodeDataValidationError,
			Message: fmt.Sprintf("File size %d bytes exceeds maximum allowed size of %d bytes",
				file.Size, v.cfg.MaxFileSize),
		})
	} else if file.Size > v.cfg.WarnFileSize {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"file size %d bytes exceeds %d bytes; parsing may be slow",
			file.Size, v.cfg.WarnFileSize))
	}

	fileType, ok := v.DetectFileType(file.Name, file.MIMEType)
	if !ok {
		result.IsValid = false
		result.Errors = append(result.Errors, apierrors.UnsupportedFileType(file.Name).ToParseError())
	} else {
		result.FileType = fileType
	}

	if fileType == domain.FileTypeCSV && file.Size > 0 {
		result.EstimatedRows = int(file.Size / (estimatedBytesPerCell * estimatedColumns))
		result.EstimatedColumns = estimatedColumns
		if result.EstimatedRows > v.cfg.WarnRowEstimate {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"estimated %d rows; consider setting max_rows for faster parsing", result.EstimatedRows))
		}
	}

	v.logger.Debug("file validated",
		slog.String("file_name", file.Name),
		slog.Int64("size", file.Size),
		slog.String("file_type", string(result.FileType)),
		slog.Bool("is_valid", result.IsValid))

	return result
}

// DetectFileType matches the extension first, then falls back to the
// declared MIME type.
func (v *FileValidator) DetectFileType(name, mimeType string) (domain.FileType, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := extensionTypes[ext]; ok {
		return t, true
	}
	if t, ok := mimeTypes[strings.ToLower(strings.TrimSpace(mimeType))]; ok {
		return t, true
	}
	return "", false
}

// ValidateOptions enforces option-shape constraints independent of the
// actual file content.
func (v *FileValidator) ValidateOptions(fileType domain.FileType, opts domain.ParseOptions) domain.ValidationResult {
	result := domain.ValidationResult{IsValid: true, FileType: fileType}

	fail := func(format string, args ...any) {
		result.IsValid = false
		result.Errors = append(result.Errors, domain.ParseError{
			Code:    apierrors.CodeDataValidationError,
			Message: fmt.Sprintf(format, args...),
		})
	}

	if opts.MaxRows < 0 {
		fail("max_rows must be a positive integer, got %d", opts.MaxRows)
	} else if opts.MaxRows > v.cfg.WarnMaxRows {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"max_rows %d is very large; parsing may be slow", opts.MaxRows))
	}

	if opts.SkipFirstNRows < 0 {
		fail("skip_first_n_rows must be a non-negative integer, got %d", opts.SkipFirstNRows)
	}

	if fileType == domain.FileTypeCSV {
		if opts.Delimiter != "" && len([]rune(opts.Delimiter)) != 1 {
			fail("delimiter must be exactly one character, got %q", opts.Delimiter)
		}
		if opts.Encoding != "" && !isSupportedEncoding(opts.Encoding) {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"encoding %q is not in the supported set; falling back to utf-8", opts.Encoding))
		}
	}

	if fileType.IsSpreadsheet() {
		if opts.SheetIndex != nil && *opts.SheetIndex < 0 {
			fail("sheet_index must be a non-negative integer, got %d", *opts.SheetIndex)
		}
		if opts.SheetName != "" && strings.TrimSpace(opts.SheetName) == "" {
			fail("sheet_name must be a non-empty string")
		}
		if opts.SheetName != "" && opts.SheetIndex != nil {
			result.Warnings = append(result.Warnings,
				"both sheet_name and sheet_index were given; sheet_name wins")
		}
	}

	return result
}

func isSupportedEncoding(encoding string) bool {
	normalized := strings.ToLower(strings.TrimSpace(encoding))
	for _, e := range domain.SupportedEncodings() {
		if e == normalized {
			return true
		}
	}
	return false
}
