// Command ingest parses tabular files from the command line.
//
// Usage:
//
//	ingest -file data.csv                       parse one file, print a summary
//	ingest -file data.xlsx -sheet Sales -o out.csv
//	ingest -file data.csv -preview              print a preview window
//	ingest -file book.xlsx -sheets              list sheet names
//	ingest -dir ./uploads                       parse every tabular file in a directory
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dshap474/tabular/internal/config"
	"github.com/dshap474/tabular/internal/export"
	"github.com/dshap474/tabular/internal/files"
	"github.com/dshap474/tabular/internal/infrastructure"
	"github.com/dshap474/tabular/internal/ingest"
	"github.com/dshap474/tabular/pkg/contracts"
	"github.com/dshap474/tabular/pkg/contracts/domain"
)

func main() {
	var (
		file       = flag.String("file", "", "input file (csv, xlsx, xls)")
		dir        = flag.String("dir", "", "parse every tabular file in this directory")
		out        = flag.String("o", "", "write the parsed table to this CSV file")
		sheet      = flag.String("sheet", "", "workbook sheet name")
		sheetIdx   = flag.Int("sheet-index", -1, "workbook sheet index (0-based)")
		delimiter  = flag.String("delimiter", "", "CSV delimiter override")
		skipRows   = flag.Int("skip-rows", 0, "skip the first N data rows")
		maxRows    = flag.Int("max-rows", 0, "parse at most N data rows")
		noInfer    = flag.Bool("no-infer", false, "disable type inference")
		preview    = flag.Bool("preview", false, "print a preview window instead of parsing")
		listSheets = flag.Bool("sheets", false, "list workbook sheet names")
		asJSON     = flag.Bool("json", false, "print full results as JSON")
		version    = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *version {
		fmt.Println(contracts.GetVersionString())
		return
	}
	if *file == "" && *dir == "" {
		fmt.Fprintln(os.Stderr, "either -file or -dir is required")
		flag.Usage()
		os.Exit(2)
	}

	logger, err := infrastructure.InitializeLogger(config.LoggingConfig{Level: "warn", Output: "stdout"})
	if err != nil {
		slog.Warn("failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	orchestrator := ingest.NewOrchestrator(config.DefaultIngest(), logger, nil)
	opts := buildOptions(*delimiter, *sheet, *sheetIdx, *skipRows, *maxRows, *noInfer)
	ctx := context.Background()

	switch {
	case *dir != "":
		os.Exit(runBatch(ctx, orchestrator, *dir, opts, *asJSON))
	case *listSheets:
		os.Exit(runSheets(orchestrator, *file))
	case *preview:
		os.Exit(runPreview(ctx, orchestrator, *file, opts, *asJSON))
	default:
		os.Exit(runParse(ctx, orchestrator, logger, *file, *out, opts, *asJSON))
	}
}

func buildOptions(delimiter, sheet string, sheetIdx, skipRows, maxRows int, noInfer bool) domain.ParseOptions {
	opts := domain.ParseOptions{
		Delimiter:      delimiter,
		SheetName:      sheet,
		SkipFirstNRows: skipRows,
		MaxRows:        maxRows,
	}
	if sheetIdx >= 0 {
		opts.SheetIndex = &sheetIdx
	}
	if noInfer {
		infer := false
		opts.InferTypes = &infer
	}
	return opts
}

func loadFile(path string) (domain.InputFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.InputFile{}, fmt.Errorf("read %s: %w", path, err)
	}
	return domain.NewInputFile(path, "", content), nil
}

func runParse(ctx context.Context, orchestrator *ingest.Orchestrator, logger *slog.Logger, path, out string, opts domain.ParseOptions, asJSON bool) int {
	input, err := loadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	result := orchestrator.ParseFile(ctx, input, opts)
	printResult(result, asJSON)
	if !result.Success {
		return 1
	}

	if out != "" {
		writer := export.NewCSVWriter(logger)
		if err := writer.WriteTable(out, result.Data, export.WriteOptions{}); err != nil {
			fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
			return 1
		}
		fmt.Printf("wrote %s\n", out)
	}
	return 0
}

func runBatch(ctx context.Context, orchestrator *ingest.Orchestrator, dir string, opts domain.ParseOptions, asJSON bool) int {
	discovered, err := files.NewDiscovery(".").FindTabularFiles(dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(discovered) == 0 {
		fmt.Fprintf(os.Stderr, "no tabular files found in %s\n", dir)
		return 1
	}

	inputs := make([]domain.InputFile, 0, len(discovered))
	for _, f := range discovered {
		input, err := loadFile(f.Path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		inputs = append(inputs, input)
	}

	results := orchestrator.ParseFiles(ctx, inputs, opts)
	exit := 0
	for _, result := range results {
		printResult(result, asJSON)
		if !result.Success {
			exit = 1
		}
	}
	return exit
}

func runPreview(ctx context.Context, orchestrator *ingest.Orchestrator, path string, opts domain.ParseOptions, asJSON bool) int {
	input, err := loadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	preview, apiErr := orchestrator.PreviewFile(ctx, input, opts, 0)
	if apiErr != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", apiErr.ErrorCode, apiErr.Message)
		return 1
	}

	if asJSON {
		printJSON(preview)
		return 0
	}
	fmt.Println(strings.Join(preview.Headers, "\t"))
	for _, row := range preview.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = export.FormatValue(v)
		}
		fmt.Println(strings.Join(cells, "\t"))
	}
	return 0
}

func runSheets(orchestrator *ingest.Orchestrator, path string) int {
	input, err := loadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	sheets, apiErr := orchestrator.ListSheets(input)
	if apiErr != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", apiErr.ErrorCode, apiErr.Message)
		return 1
	}
	for i, sheet := range sheets {
		fmt.Printf("%d\t%s\n", i, sheet)
	}
	return 0
}

func printResult(result domain.ParseResult, asJSON bool) {
	if asJSON {
		printJSON(result)
		return
	}

	if !result.Success {
		fmt.Fprintf(os.Stderr, "%s: parse failed\n", result.Metadata.FileName)
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", e.Code, e.Message)
		}
		return
	}

	fmt.Printf("%s: %d rows, %d columns (%s)\n",
		result.Metadata.FileName,
		result.Metadata.FinalRowCount,
		result.Metadata.ColumnCount,
		result.Metadata.ProcessingTime)
	for _, col := range result.Metadata.Columns {
		fmt.Printf("  %-24s %-10s confidence=%.2f nulls=%d unique=%d\n",
			col.Name, col.InferredType, col.Confidence, col.NullCount, col.UniqueCount)
	}
	for _, w := range result.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
