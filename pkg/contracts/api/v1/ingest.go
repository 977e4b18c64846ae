// Package v1 defines the request and response contracts of the ingest
// HTTP API. Domain types carry the data; this package only adds the
// transport envelopes.
package v1

import (
	"github.com/dshap474/tabular/pkg/contracts/domain"
)

// ParseResponse wraps a full parse result.
type ParseResponse struct {
	Success bool                `json:"success"`
	Result  *domain.ParseResult `json:"result"`
}

// PreviewResponse wraps a preview window.
type PreviewResponse struct {
	Success bool                  `json:"success"`
	Preview *domain.PreviewResult `json:"preview"`
}

// SheetsResponse lists a workbook's sheets.
type SheetsResponse struct {
	Success bool     `json:"success"`
	Sheets  []string `json:"sheets"`
}

// FormatsResponse lists the supported file formats and encodings.
type FormatsResponse struct {
	Success   bool              `json:"success"`
	Formats   []domain.FileType `json:"formats"`
	Encodings []string          `json:"encodings"`
}

// FileInfoResponse wraps pre-flight validation output.
type FileInfoResponse struct {
	Success bool                     `json:"success"`
	Info    *domain.ValidationResult `json:"info"`
}

// BatchParseResponse wraps the per-file results of a batch parse, in
// input order.
type BatchParseResponse struct {
	Success bool                 `json:"success"`
	Results []domain.ParseResult `json:"results"`
}
