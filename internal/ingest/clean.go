package ingest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dshap474/tabular/pkg/contracts/domain"
)

// nullTokens are the case-insensitive strings normalized to null cells.
var nullTokens = map[string]struct{}{
	"":     {},
	"null": {},
	"na":   {},
}

// cleanCell trims a raw string cell and maps null tokens to nil. All
// other values pass through untouched: no numeric coercion happens here,
// type inference operates on the raw strings later.
func cleanCell(raw string) domain.Value {
	s := strings.TrimSpace(raw)
	if _, isNull := nullTokens[strings.ToLower(s)]; isNull {
		return nil
	}
	return s
}

// isEmptyRow reports whether every cell of a cleaned row is nil.
func isEmptyRow(row []domain.Value) bool {
	for _, cell := range row {
		if cell != nil {
			return false
		}
	}
	return true
}

var (
	nonIdentifierRe = regexp.MustCompile(`[^a-z0-9_]`)
	whitespaceRunRe = regexp.MustCompile(`\s+`)
	underscoreRunRe = regexp.MustCompile(`_+`)
)

// NormalizeColumnName maps an arbitrary header to a stable identifier:
// trim, lowercase, whitespace to underscores, strip everything outside
// [a-z0-9_], collapse repeated underscores, strip leading and trailing
// underscores. An empty result falls back to "unnamed_column". The
// function is idempotent.
func NormalizeColumnName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = whitespaceRunRe.ReplaceAllString(s, "_")
	s = nonIdentifierRe.ReplaceAllString(s, "")
	s = underscoreRunRe.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "unnamed_column"
	}
	return s
}

// normalizeHeaders normalizes every header and deduplicates collisions
// by appending _2, _3, ... so the table's column names stay unique.
func normalizeHeaders(raw []string) []string {
	out := make([]string, len(raw))
	taken := make(map[string]bool, len(raw))
	for i, h := range raw {
		name := NormalizeColumnName(h)
		for n := 2; taken[name]; n++ {
			name = fmt.Sprintf("%s_%d", NormalizeColumnName(h), n)
		}
		taken[name] = true
		out[i] = name
	}
	return out
}
