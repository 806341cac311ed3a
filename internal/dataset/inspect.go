package dataset

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"segprep/pkg/imgutil"
)

// Entry describes one candidate source file.
type Entry struct {
	Path        string
	Name        string
	Kind        imgutil.Kind
	Width       int
	Height      int
	Orientation int
	Err         error
}

// Label renders the entry as "name - WxH", or just the name when the header
// could not be read.
func (e Entry) Label() string {
	if e.Err != nil || e.Width == 0 {
		return e.Name
	}
	return fmt.Sprintf("%s - %dx%d", e.Name, e.Width, e.Height)
}

// Inspect reads the header of each path. Failures are recorded on the entry
// rather than returned, so one bad file never hides the rest of the listing.
func Inspect(paths []string) []Entry {
	entries := make([]Entry, 0, len(paths))
	for _, path := range paths {
		entries = append(entries, inspectFile(path))
	}
	return entries
}

func inspectFile(path string) Entry {
	entry := Entry{Path: path, Name: filepath.Base(path)}

	file, err := os.Open(path)
	if err != nil {
		entry.Err = err
		return entry
	}
	defer file.Close()

	kind, err := imgutil.SniffReader(file)
	if err != nil {
		entry.Err = err
		return entry
	}
	entry.Kind = kind

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		entry.Err = err
		return entry
	}
	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		entry.Err = err
		return entry
	}
	entry.Width = cfg.Width
	entry.Height = cfg.Height

	// Only JPEG and TIFF carry orientation in practice; a parse failure there
	// leaves the value unknown (0) without failing the entry.
	entry.Orientation = imgutil.OrientationNormal
	if kind == imgutil.KindJPEG || kind == imgutil.KindTIFF {
		if orientation, err := imgutil.Orientation(file); err == nil {
			entry.Orientation = orientation
		} else {
			entry.Orientation = 0
		}
	}

	return entry
}
