// Package ingest converts user-supplied tabular files into a uniform
// column-oriented table with per-column type metadata.
//
// # Architecture
//
// The package is organized around three components:
//
//  1. CSVParser: decodes delimited text, detecting the separator when
//     none is declared
//  2. SpreadsheetParser: decodes xlsx/xls workbooks, including serial
//     date conversion
//  3. Orchestrator: the public facade that validates input, dispatches
//     to the right parser, and offers batch and progress variants
//
// # Data Flow
//
// The typical flow through this package:
//
//	InputFile → validation → format parser → cleaned rows →
//	type inference → ParsedTable + FileMetadata
//
// # Error Handling
//
// Parsing never panics and never returns a bare error for data problems:
// every failure path produces a ParseResult with success=false and a
// structured, code-carrying error list. Warnings (truncation,
// low-confidence delimiter detection, oversized files) are additive and
// never block success.
package ingest
