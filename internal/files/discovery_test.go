package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindTabularFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.csv", "a.xlsx", "c.xls", "notes.txt", "image.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.csv"), 0o755))

	found, err := NewDiscovery(".").FindTabularFiles(dir)
	require.NoError(t, err)

	names := make([]string, len(found))
	for i, f := range found {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"a.xlsx", "b.csv", "c.xls"}, names)
}

func TestFindTabularFilesRelativePath(t *testing.T) {
	base := t.TempDir()
	sub := filepath.Join(base, "uploads")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "d.csv"), []byte("x"), 0o644))

	found, err := NewDiscovery(base).FindTabularFiles("uploads")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "d.csv", found[0].Name)
	assert.Equal(t, int64(1), found[0].Size)
}

func TestFindTabularFilesMissingDir(t *testing.T) {
	_, err := NewDiscovery(t.TempDir()).FindTabularFiles("does-not-exist")
	assert.Error(t, err)
}
