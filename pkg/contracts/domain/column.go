package domain

// DataType is the closed set of semantic column types the inference
// engine can assign. Classification priority when several could match:
// date > numeric (percentage > currency > float/integer) > boolean > string.
type DataType string

const (
	TypeString     DataType = "string"
	TypeInteger    DataType = "integer"
	TypeFloat      DataType = "float"
	TypeBoolean    DataType = "boolean"
	TypeDate       DataType = "date"
	TypeDatetime   DataType = "datetime"
	TypeCurrency   DataType = "currency"
	TypePercentage DataType = "percentage"
	TypeUnknown    DataType = "unknown"
)

// IsNumeric reports whether the type carries numeric semantics.
func (d DataType) IsNumeric() bool {
	switch d {
	case TypeInteger, TypeFloat, TypeCurrency, TypePercentage:
		return true
	}
	return false
}

// ColumnInfo is the per-column metadata derived during ingestion.
// It is read-only once produced; a re-parse regenerates it from scratch.
type ColumnInfo struct {
	Name         string   `json:"name"`
	OriginalName string   `json:"original_name"`
	InferredType DataType `json:"inferred_type"`
	SampleValues []string `json:"sample_values"` // at most 3 representative values
	NullCount    int      `json:"null_count"`
	UniqueCount  int      `json:"unique_count"`
	Confidence   float64  `json:"confidence"` // in [0,1]
}
