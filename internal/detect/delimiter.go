// Package detect implements statistical delimiter detection for
// delimited text. Detection is a pure function over sampled lines:
// no I/O, no shared state.
package detect

import (
	"math"
	"strings"

	"github.com/dshap474/tabular/pkg/contracts/domain"
)

// candidate pairs a delimiter with its tie-breaking preference bonus.
// Common delimiters win ties against exotic ones with equal consistency.
type candidate struct {
	delimiter string
	bonus     float64
}

// candidates is evaluated in order; ties keep the earlier entry.
var candidates = []candidate{
	{",", 1.10},
	{";", 1.05},
	{"\t", 1.00},
	{"|", 1.00},
	{" ", 1.00},
}

// DefaultMaxLines is the number of non-blank lines sampled per detection.
const DefaultMaxLines = 10

// minOverrideConfidence is the floor a non-comma candidate must clear to
// displace the comma default. Without it, a single-column file whose
// values contain spaces hands the win to the space candidate on a weak,
// inconsistent split and the file is mangled.
const minOverrideConfidence = 0.75

// Detector scores candidate field separators against sampled lines.
type Detector struct{}

// NewDetector creates a delimiter detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect samples up to maxLines non-blank lines of text and returns the
// best-scoring candidate delimiter. When maxLines is not positive,
// DefaultMaxLines is used. Non-comma candidates only count when they
// clear minOverrideConfidence; when nothing qualifies the comma default
// is returned with confidence 0 and the text reads as a single column.
func (d *Detector) Detect(text string, maxLines int) domain.DelimiterDetection {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	lines := sampleLines(text, maxLines)

	best := domain.DelimiterDetection{Delimiter: candidates[0].delimiter}
	for _, c := range candidates {
		confidence, meanCols := d.Score(lines, c.delimiter)
		confidence = math.Min(confidence*c.bonus, 1)
		if c.delimiter != "," && confidence < minOverrideConfidence {
			continue
		}
		if confidence > best.Confidence {
			best = domain.DelimiterDetection{
				Delimiter:   c.delimiter,
				Confidence:  confidence,
				RowCount:    len(lines),
				ColumnCount: int(math.Round(meanCols)),
			}
		}
	}
	if best.RowCount == 0 {
		best.RowCount = len(lines)
	}
	return best
}

// Score splits every sampled line by the delimiter and scores column-count
// consistency: max(0, 1 - stdev/mean) when the mean column count exceeds
// one, else zero, since a delimiter yielding a single column per line is
// almost certainly wrong. Returns the raw consistency score (before the
// preference bonus) and the mean column count.
func (d *Detector) Score(lines []string, delimiter string) (float64, float64) {
	if len(lines) == 0 {
		return 0, 0
	}

	counts := make([]float64, len(lines))
	var sum float64
	for i, line := range lines {
		counts[i] = float64(len(strings.Split(line, delimiter)))
		sum += counts[i]
	}
	mean := sum / float64(len(counts))
	if mean <= 1 {
		return 0, mean
	}

	var variance float64
	for _, c := range counts {
		variance += (c - mean) * (c - mean)
	}
	stdev := math.Sqrt(variance / float64(len(counts)))

	return math.Max(0, 1-stdev/mean), mean
}

// sampleLines returns up to max non-blank lines.
func sampleLines(text string, max int) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == max {
			break
		}
	}
	return lines
}
