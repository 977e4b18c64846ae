package domain

// Value is a single table cell. It holds one of: string, float64, int64,
// bool, time.Time, or nil for an absent cell.
type Value any

// ParsedTable is the uniform column-oriented table produced by ingestion.
// Column order is preserved in Columns; Cells maps each column name to an
// ordered sequence of values. Every sequence has identical length, and
// absent cells are stored as nil, never dropped.
type ParsedTable struct {
	Columns []string           `json:"columns"`
	Cells   map[string][]Value `json:"cells"`
}

// NewParsedTable creates an empty table with no columns.
func NewParsedTable() *ParsedTable {
	return &ParsedTable{
		Columns: []string{},
		Cells:   map[string][]Value{},
	}
}

// AddColumn appends a named column with its full value sequence.
// The caller is responsible for keeping all column lengths equal.
func (t *ParsedTable) AddColumn(name string, values []Value) {
	t.Columns = append(t.Columns, name)
	t.Cells[name] = values
}

// Column returns the value sequence for a column, or nil if absent.
func (t *ParsedTable) Column(name string) []Value {
	return t.Cells[name]
}

// RowCount returns the number of rows in the table.
func (t *ParsedTable) RowCount() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Cells[t.Columns[0]])
}

// ColumnCount returns the number of columns in the table.
func (t *ParsedTable) ColumnCount() int {
	return len(t.Columns)
}

// Row materializes a single row in column order. Out-of-range indexes
// return a slice of nils so callers can iterate without bounds checks.
func (t *ParsedTable) Row(i int) []Value {
	row := make([]Value, len(t.Columns))
	for c, name := range t.Columns {
		values := t.Cells[name]
		if i >= 0 && i < len(values) {
			row[c] = values[i]
		}
	}
	return row
}
