package domain

// ProgressPhase identifies a step of a progress-reporting parse.
type ProgressPhase string

const (
	PhaseValidation ProgressPhase = "validation"
	PhaseParsing    ProgressPhase = "parsing"
	PhaseComplete   ProgressPhase = "complete"
	PhaseError      ProgressPhase = "error"
)

// ProgressUpdate is one progress event. Percentages emitted during the
// parsing phase are estimated, not measured: the underlying decoders do
// not expose incremental progress.
type ProgressUpdate struct {
	ParseID  string        `json:"parse_id"`
	FileName string        `json:"file_name"`
	Phase    ProgressPhase `json:"phase"`
	Percent  int           `json:"percent"`
	Message  string        `json:"message"`
}

// ProgressFunc receives progress events during ParseFileWithProgress.
type ProgressFunc func(ProgressUpdate)
