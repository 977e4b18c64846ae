package domain

import "time"

// ParseError is a structured, code-carrying failure produced by the
// pipeline. Codes come from the fixed taxonomy (NO_DATA, SHEET_NOT_FOUND,
// UNSUPPORTED_FILE_TYPE, ...); parsing never surfaces raw panics.
type ParseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e ParseError) Error() string {
	return e.Code + ": " + e.Message
}

// FileMetadata describes one completed parse invocation. It is created
// once per parse and never mutated afterwards.
type FileMetadata struct {
	ParseID          string        `json:"parse_id"`
	FileName         string        `json:"file_name"`
	FileSize         int64         `json:"file_size"`
	FileType         FileType      `json:"file_type"`
	OriginalRowCount int           `json:"original_row_count"`
	FinalRowCount    int           `json:"final_row_count"`
	ColumnCount      int           `json:"column_count"`
	Columns          []ColumnInfo  `json:"columns"`
	ParseOptions     ParseOptions  `json:"parse_options"`
	ProcessingTime   time.Duration `json:"processing_time_ms"`
}

// ParseResult is the tagged outcome of a parse. Data is non-nil exactly
// when Success is true; on failure Metadata is zeroed apart from the file
// identity fields. Warnings are additive and never block success.
type ParseResult struct {
	Success  bool         `json:"success"`
	Data     *ParsedTable `json:"data,omitempty"`
	Metadata FileMetadata `json:"metadata"`
	Errors   []ParseError `json:"errors,omitempty"`
	Warnings []string     `json:"warnings,omitempty"`
}

// FirstErrorCode returns the code of the first error, or "" when none.
func (r ParseResult) FirstErrorCode() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Code
}

// DelimiterDetection is the transient result of statistical delimiter
// scoring; it is computed per parse and not persisted.
type DelimiterDetection struct {
	Delimiter   string  `json:"delimiter"`
	Confidence  float64 `json:"confidence"` // in [0,1]
	RowCount    int     `json:"row_count"`
	ColumnCount int     `json:"column_count"`
}

// PreviewResult is the lightweight output of the preview path: headers
// plus a capped row window, without full type inference. Total counts are
// -1 because no full parse occurred.
type PreviewResult struct {
	Headers      []string  `json:"headers"`
	Rows         [][]Value `json:"rows"`
	TotalRows    int       `json:"total_rows"`
	TotalColumns int       `json:"total_columns"`
	Delimiter    string    `json:"delimiter,omitempty"`
	SheetName    string    `json:"sheet_name,omitempty"`
	SheetNames   []string  `json:"sheet_names,omitempty"`
	Warnings     []string  `json:"warnings,omitempty"`
}
