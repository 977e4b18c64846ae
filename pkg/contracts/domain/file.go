package domain

// FileType identifies a supported input format.
type FileType string

const (
	FileTypeCSV  FileType = "csv"
	FileTypeXLSX FileType = "xlsx"
	FileTypeXLS  FileType = "xls"
)

// IsSpreadsheet reports whether the type is a workbook format.
func (f FileType) IsSpreadsheet() bool {
	return f == FileTypeXLSX || f == FileTypeXLS
}

// SupportedFileTypes lists every format the pipeline accepts.
func SupportedFileTypes() []FileType {
	return []FileType{FileTypeCSV, FileTypeXLSX, FileTypeXLS}
}

// InputFile is a fully loaded upload handed to the pipeline: raw content
// plus the name, declared MIME type, and size reported by the caller.
// Size is carried separately from len(Content) so pre-flight validation
// can reject oversized uploads without ever buffering them.
type InputFile struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MIMEType string `json:"mime_type"`
	Content  []byte `json:"-"`
}

// NewInputFile builds an InputFile from in-memory content, deriving Size.
func NewInputFile(name, mimeType string, content []byte) InputFile {
	return InputFile{
		Name:     name,
		Size:     int64(len(content)),
		MIMEType: mimeType,
		Content:  content,
	}
}

// ValidationResult is the outcome of pre-flight file or option validation.
// Errors block parsing; warnings are informational and never block.
type ValidationResult struct {
	IsValid          bool         `json:"is_valid"`
	FileType         FileType     `json:"file_type,omitempty"`
	Errors           []ParseError `json:"errors,omitempty"`
	Warnings         []string     `json:"warnings,omitempty"`
	EstimatedRows    int          `json:"estimated_rows,omitempty"`
	EstimatedColumns int          `json:"estimated_columns,omitempty"`
}
