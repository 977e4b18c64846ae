// Package files discovers tabular input files on disk for the CLI's
// batch mode.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Info describes a discovered input file.
type Info struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// tabularExtensions is the discoverable extension set, matching the
// pipeline's supported formats.
var tabularExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
	".xls":  true,
}

// Discovery lists tabular files relative to a base path.
type Discovery struct {
	basePath string
}

// NewDiscovery creates a discovery instance rooted at basePath.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindTabularFiles lists the CSV and workbook files directly inside dir,
// sorted by name. dir may be absolute or relative to the base path.
func (d *Discovery) FindTabularFiles(dir string) ([]Info, error) {
	fullPath := dir
	if !filepath.IsAbs(dir) {
		fullPath = filepath.Join(d.basePath, dir)
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", fullPath, err)
	}

	var files []Info
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !tabularExtensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, Info{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}
