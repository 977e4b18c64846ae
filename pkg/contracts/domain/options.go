package domain

// ParseOptions configures a single parse invocation. Every field is
// optional; zero values mean "use the pipeline default". Validation tags
// are enforced at the API boundary, while the pipeline's own option
// validation produces the structured errors and warnings of the contract.
type ParseOptions struct {
	// Delimited-text options.
	Delimiter      string `json:"delimiter,omitempty" validate:"omitempty,len=1"`
	SkipEmptyLines *bool  `json:"skip_empty_lines,omitempty"`
	Encoding       string `json:"encoding,omitempty"`

	// Workbook options. SheetName wins when both selectors are given.
	SheetName  string `json:"sheet_name,omitempty"`
	SheetIndex *int   `json:"sheet_index,omitempty" validate:"omitempty,min=0"`

	// Shared options.
	SkipFirstNRows int   `json:"skip_first_n_rows,omitempty" validate:"min=0"`
	MaxRows        int   `json:"max_rows,omitempty" validate:"min=0"`
	InferTypes     *bool `json:"infer_types,omitempty"`

	// Formatting hints forwarded to the inference engine. DateFormat is
	// a Go time layout tried ahead of the built-in patterns; the
	// separators override locale detection.
	DateFormat         string `json:"date_format,omitempty"`
	DecimalSeparator   string `json:"decimal_separator,omitempty" validate:"omitempty,len=1"`
	ThousandsSeparator string `json:"thousands_separator,omitempty" validate:"omitempty,len=1"`
}

// SkipEmpty reports the effective empty-line policy (default true).
func (o ParseOptions) SkipEmpty() bool {
	if o.SkipEmptyLines == nil {
		return true
	}
	return *o.SkipEmptyLines
}

// TypesEnabled reports whether type inference should run (default true).
func (o ParseOptions) TypesEnabled() bool {
	if o.InferTypes == nil {
		return true
	}
	return *o.InferTypes
}

// SupportedEncodings lists the encodings the CSV reader understands.
// Anything else degrades to UTF-8 with a warning.
func SupportedEncodings() []string {
	return []string{"utf-8", "utf8", "ascii", "latin1", "iso-8859-1"}
}
