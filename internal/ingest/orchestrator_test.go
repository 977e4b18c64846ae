package ingest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshap474/tabular/internal/config"
	"github.com/dshap474/tabular/pkg/contracts/domain"
)

func newOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	return NewOrchestrator(config.DefaultIngest(), nil, nil)
}

func TestOrchestratorParseDispatch(t *testing.T) {
	o := newOrchestrator(t)

	result := o.ParseFile(context.Background(), csvFile("data.csv", "a,b\n1,2\n"), domain.ParseOptions{})
	require.True(t, result.Success, "errors: %v", result.Errors)
	assert.Equal(t, domain.FileTypeCSV, result.Metadata.FileType)

	book := buildWorkbook(t, map[string][][]any{"Data": {{"x"}, {"hello"}}})
	result = o.ParseFile(context.Background(), book, domain.ParseOptions{})
	require.True(t, result.Success, "errors: %v", result.Errors)
	assert.Equal(t, domain.FileTypeXLSX, result.Metadata.FileType)
}

func TestOrchestratorInvalidInputNeverParses(t *testing.T) {
	o := newOrchestrator(t)

	tests := []struct {
		name string
		file domain.InputFile
		opts domain.ParseOptions
	}{
		{"empty file", domain.InputFile{Name: "empty.csv"}, domain.ParseOptions{}},
		{"oversized", domain.InputFile{Name: "big.csv", Size: 100 * 1024 * 1024}, domain.ParseOptions{}},
		{"unsupported type", domain.NewInputFile("doc.pdf", "", []byte("x")), domain.ParseOptions{}},
		{"bad options", csvFile("ok.csv", "a\n1\n"), domain.ParseOptions{MaxRows: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := o.ParseFile(context.Background(), tt.file, tt.opts)
			assert.False(t, result.Success)
			assert.Nil(t, result.Data)
			assert.NotEmpty(t, result.Errors)
			assert.Zero(t, result.Metadata.FinalRowCount)
			assert.Zero(t, result.Metadata.ColumnCount)
		})
	}
}

func TestOrchestratorMergesValidationWarnings(t *testing.T) {
	cfg := config.DefaultIngest()
	cfg.WarnFileSize = 10
	o := NewOrchestrator(cfg, nil, nil)

	// 16 bytes of content, past the 10-byte warning threshold.
	result := o.ParseFile(context.Background(), csvFile("data.csv", "a,b\n1,2\n3,4\n5,6\n"), domain.ParseOptions{})
	require.True(t, result.Success)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, strings.Join(result.Warnings, " "), "parsing may be slow")
}

func TestOrchestratorMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	o := NewOrchestrator(config.DefaultIngest(), nil, NewMetrics(registry))

	o.ParseFile(context.Background(), csvFile("data.csv", "a\n1\n"), domain.ParseOptions{})
	o.ParseFile(context.Background(), domain.InputFile{Name: "empty.csv"}, domain.ParseOptions{})

	families, err := registry.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["tabular_parses_total"])
	assert.True(t, names["tabular_parse_duration_seconds"])
}

func TestOrchestratorParseFiles(t *testing.T) {
	o := newOrchestrator(t)

	files := []domain.InputFile{
		csvFile("one.csv", "a\n1\n"),
		domain.NewInputFile("broken.xlsx", "", []byte("not a workbook")),
		csvFile("three.csv", "b\nx\n"),
	}

	results := o.ParseFiles(context.Background(), files, domain.ParseOptions{})

	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.True(t, results[2].Success)
	// Results stay in input order regardless of completion order.
	assert.Equal(t, "one.csv", results[0].Metadata.FileName)
	assert.Equal(t, "broken.xlsx", results[1].Metadata.FileName)
	assert.Equal(t, "three.csv", results[2].Metadata.FileName)
}

func TestOrchestratorParseFilesLargeBatch(t *testing.T) {
	o := newOrchestrator(t)

	files := make([]domain.InputFile, 10)
	for i := range files {
		files[i] = csvFile(fmt.Sprintf("f%d.csv", i), fmt.Sprintf("col\nrow%d\n", i))
	}

	results := o.ParseFiles(context.Background(), files, domain.ParseOptions{})
	require.Len(t, results, 10)
	for i, result := range results {
		assert.True(t, result.Success, "file %d errors: %v", i, result.Errors)
	}
}

func TestOrchestratorParseFilesEmpty(t *testing.T) {
	o := newOrchestrator(t)
	assert.Empty(t, o.ParseFiles(context.Background(), nil, domain.ParseOptions{}))
}

func TestOrchestratorProgressPhases(t *testing.T) {
	o := newOrchestrator(t)

	var updates []domain.ProgressUpdate
	result := o.ParseFileWithProgress(context.Background(),
		csvFile("data.csv", "a\n1\n"), domain.ParseOptions{},
		func(u domain.ProgressUpdate) { updates = append(updates, u) })

	require.True(t, result.Success)
	require.NotEmpty(t, updates)
	assert.Equal(t, domain.PhaseValidation, updates[0].Phase)
	assert.Equal(t, domain.PhaseComplete, updates[len(updates)-1].Phase)
	assert.Equal(t, 100, updates[len(updates)-1].Percent)

	last := -1
	for _, u := range updates {
		assert.GreaterOrEqual(t, u.Percent, last, "percent must not decrease")
		last = u.Percent
	}
}

func TestOrchestratorProgressErrorPhase(t *testing.T) {
	o := newOrchestrator(t)

	var updates []domain.ProgressUpdate
	result := o.ParseFileWithProgress(context.Background(),
		domain.InputFile{Name: "empty.csv"}, domain.ParseOptions{},
		func(u domain.ProgressUpdate) { updates = append(updates, u) })

	require.False(t, result.Success)
	require.NotEmpty(t, updates)
	assert.Equal(t, domain.PhaseError, updates[len(updates)-1].Phase)
}

func TestOrchestratorProgressNilCallback(t *testing.T) {
	o := newOrchestrator(t)
	result := o.ParseFileWithProgress(context.Background(),
		csvFile("data.csv", "a\n1\n"), domain.ParseOptions{}, nil)
	assert.True(t, result.Success)
}

func TestOrchestratorPreviewDefaults(t *testing.T) {
	cfg := config.DefaultIngest()
	cfg.PreviewRows = 2
	o := NewOrchestrator(cfg, nil, nil)

	preview, apiErr := o.PreviewFile(context.Background(),
		csvFile("data.csv", "a\n1\n2\n3\n4\n"), domain.ParseOptions{}, 0)
	require.Nil(t, apiErr)
	assert.Len(t, preview.Rows, 2)
}

func TestOrchestratorPreviewInvalidFile(t *testing.T) {
	o := newOrchestrator(t)
	_, apiErr := o.PreviewFile(context.Background(),
		domain.InputFile{Name: "empty.csv"}, domain.ParseOptions{}, 5)
	require.NotNil(t, apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)
}

func TestOrchestratorListSheetsRejectsCSV(t *testing.T) {
	o := newOrchestrator(t)
	_, apiErr := o.ListSheets(csvFile("data.csv", "a\n1\n"))
	require.NotNil(t, apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)
}

func TestOrchestratorGetFileInfo(t *testing.T) {
	o := newOrchestrator(t)
	info := o.GetFileInfo(csvFile("data.csv", "a,b\n1,2\n"))
	assert.True(t, info.IsValid)
	assert.Equal(t, domain.FileTypeCSV, info.FileType)
}
