// Package errors defines the structured, code-carrying error values used
// across the ingestion pipeline and their HTTP representation. Pipeline
// failures never escape as panics; they are converted into these values
// and carried on parse results, with HTTP status mapping applied only at
// the transport edge.
package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"

	"github.com/dshap474/tabular/pkg/contracts/domain"
)

// APIError represents a structured error with an HTTP status for the
// transport layer and a stable error code for the pipeline taxonomy.
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ToParseError converts the error into the domain's result-level form.
func (e *APIError) ToParseError() domain.ParseError {
	return domain.ParseError{Code: e.ErrorCode, Message: e.Message}
}

// New creates a new APIError with the given parameters.
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details.
func NewWithDetails(statusCode int, errorCode, message string, details any) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Newf creates a new APIError with a formatted message.
func Newf(statusCode int, errorCode, format string, args ...any) *APIError {
	return New(statusCode, errorCode, fmt.Sprintf(format, args...))
}

// Pipeline error codes. These are the stable identifiers carried on
// ParseResult errors and mapped to HTTP statuses below.
const (
	CodeNoSheets              = "NO_SHEETS"
	CodeSheetNotFound         = "SHEET_NOT_FOUND"
	CodeSheetIndexOutOfRange  = "SHEET_INDEX_OUT_OF_RANGE"
	CodeSheetAccessError      = "SHEET_ACCESS_ERROR"
	CodeNoData                = "NO_DATA"
	CodeNoHeaders             = "NO_HEADERS"
	CodeNoDataAfterSkip       = "NO_DATA_AFTER_SKIP"
	CodeNoDataRows            = "NO_DATA_ROWS"
	CodeParseError            = "PARSE_ERROR"
	CodeFileReadError         = "FILE_READ_ERROR"
	CodeUnsupportedFileType   = "UNSUPPORTED_FILE_TYPE"
	CodeDataValidationError   = "DATA_VALIDATION_ERROR"
)

// Predefined errors for common pipeline failures.
var (
	ErrInvalidRequest     = New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	ErrValidationFailed   = New(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed")
	ErrNoSheets           = New(http.StatusUnprocessableEntity, CodeNoSheets, "Workbook contains no sheets")
	ErrNoData             = New(http.StatusUnprocessableEntity, CodeNoData, "File contains no data rows")
	ErrNoHeaders          = New(http.StatusUnprocessableEntity, CodeNoHeaders, "File contains no header row")
	ErrNoDataAfterSkip    = New(http.StatusUnprocessableEntity, CodeNoDataAfterSkip, "No data rows remain after skipping rows")
	ErrNoDataRows         = New(http.StatusUnprocessableEntity, CodeNoDataRows, "All rows were empty after cleaning")
	ErrInternalServer     = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
)

// SheetNotFound creates an error for an unresolvable sheet name.
func SheetNotFound(name string, available []string) *APIError {
	return NewWithDetails(http.StatusUnprocessableEntity, CodeSheetNotFound,
		fmt.Sprintf("Sheet %q not found in workbook", name), available)
}

// SheetIndexOutOfRange creates an error for an out-of-range sheet index.
func SheetIndexOutOfRange(index, count int) *APIError {
	return Newf(http.StatusUnprocessableEntity, CodeSheetIndexOutOfRange,
		"Sheet index %d out of range: workbook has %d sheet(s)", index, count)
}

// UnsupportedFileType creates an error naming the supported format set.
func UnsupportedFileType(name string) *APIError {
	supported := domain.SupportedFileTypes()
	return NewWithDetails(http.StatusUnsupportedMediaType, CodeUnsupportedFileType,
		fmt.Sprintf("Unsupported file type for %q: supported types are csv, xlsx, xls", name), supported)
}

// FileReadError wraps a low-level read failure.
func FileReadError(err error) *APIError {
	return NewWithDetails(http.StatusInternalServerError, CodeFileReadError,
		"Failed to read file content", err.Error())
}

// ParseFailure wraps an unexpected decoder failure.
func ParseFailure(err error) *APIError {
	return NewWithDetails(http.StatusUnprocessableEntity, CodeParseError,
		"Failed to parse file", err.Error())
}

// ErrValidation creates a validation error with field details.
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", ValidationError{
		Field:   field,
		Message: message,
	})
}

// ValidationError represents a single field-level validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse represents a standard error response body.
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// NewErrorResponse creates a new error response.
func NewErrorResponse(err *APIError) *ErrorResponse {
	return &ErrorResponse{Success: false, Error: err}
}

// Render implements the render.Renderer interface.
func (e *ErrorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return e.Error.Render(w, r)
}
