package dataset

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Source image extensions (lowercase, with leading dot).
var sourceExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".gif":  true,
}

// IsSource reports whether name carries a recognised image extension.
func IsSource(name string) bool {
	return sourceExtensions[strings.ToLower(filepath.Ext(name))]
}

// Discover lists the image files directly inside dir, sorted by name.
// Subdirectories are not descended into.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !IsSource(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}
