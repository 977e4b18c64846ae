package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshap474/tabular/pkg/contracts/domain"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   domain.Value
		want string
	}{
		{"nil", nil, ""},
		{"string", "hello", "hello"},
		{"midnight date", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), "2024-03-15"},
		{"datetime", time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC), "2024-03-15T10:30:00Z"},
		{"float", 3.14, "3.14"},
		{"integral float", 10.0, "10"},
		{"bool", true, "true"},
		{"int", 42, "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.in))
		})
	}
}

func TestWriteTable(t *testing.T) {
	table := domain.NewParsedTable()
	table.AddColumn("name", []domain.Value{"alice", "bob"})
	table.AddColumn("joined", []domain.Value{
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		nil,
	})

	path := filepath.Join(t.TempDir(), "out", "table.csv")
	w := NewCSVWriter(nil)
	require.NoError(t, w.WriteTable(path, table, WriteOptions{}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name,joined\nalice,2024-01-02\nbob,\n", string(content))
}

func TestWriteTableBOM(t *testing.T) {
	table := domain.NewParsedTable()
	table.AddColumn("a", []domain.Value{"1"})

	path := filepath.Join(t.TempDir(), "bom.csv")
	w := NewCSVWriter(nil)
	require.NoError(t, w.WriteTable(path, table, WriteOptions{BOMPrefix: true}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, content[:3])
}

func TestWriteTableCustomDelimiter(t *testing.T) {
	table := domain.NewParsedTable()
	table.AddColumn("a", []domain.Value{"1"})
	table.AddColumn("b", []domain.Value{"2"})

	path := filepath.Join(t.TempDir(), "semi.csv")
	w := NewCSVWriter(nil)
	require.NoError(t, w.WriteTable(path, table, WriteOptions{Delimiter: ';'}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a;b\n1;2\n", string(content))
}

func TestWriteTableNil(t *testing.T) {
	w := NewCSVWriter(nil)
	assert.Error(t, w.WriteTable(filepath.Join(t.TempDir(), "x.csv"), nil, WriteOptions{}))
}
