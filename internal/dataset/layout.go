// Package dataset manages the on-disk layout of a segmentation dataset: the
// annotations/, images/ and lst/ folders, the lst.txt manifest that pairs
// them, and the zip archive of the whole root.
package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultName is the folder created under the base directory by Create.
const DefaultName = "TARGET_EXTRACTION"

const (
	AnnotationsDir = "annotations"
	ImagesDir      = "images"
	ListDir        = "lst"
	ManifestName   = "lst.txt"
)

// ErrRootMissing is returned when a dataset root does not exist yet.
var ErrRootMissing = errors.New("dataset root does not exist")

// Kind selects which half of the dataset a batch of sources belongs to.
type Kind string

const (
	KindMasks  Kind = "masks"
	KindImages Kind = "images"
)

// ParseKind accepts masks/mask/annotations and images/image.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "masks", "mask", "annotations":
		return KindMasks, nil
	case "images", "image":
		return KindImages, nil
	default:
		return "", fmt.Errorf("unknown source kind %q (want masks or images)", s)
	}
}

// Layout is the set of paths that make up one dataset root.
type Layout struct {
	Root string
}

func (l Layout) Annotations() string { return filepath.Join(l.Root, AnnotationsDir) }
func (l Layout) Images() string      { return filepath.Join(l.Root, ImagesDir) }
func (l Layout) List() string        { return filepath.Join(l.Root, ListDir) }
func (l Layout) Manifest() string    { return filepath.Join(l.Root, ListDir, ManifestName) }

// Dir returns the destination folder for kind.
func (l Layout) Dir(kind Kind) string {
	if kind == KindMasks {
		return l.Annotations()
	}
	return l.Images()
}

// Create makes base/name and its three subfolders. Existing folders are kept.
func Create(base, name string) (Layout, error) {
	if strings.TrimSpace(base) == "" {
		return Layout{}, errors.New("base directory is required")
	}
	if name == "" {
		name = DefaultName
	}

	root, err := filepath.Abs(filepath.Join(base, name))
	if err != nil {
		return Layout{}, err
	}
	layout := Layout{Root: root}
	for _, dir := range []string{layout.Annotations(), layout.Images(), layout.List()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Layout{}, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return layout, nil
}

// Open returns the layout of an existing root. Missing subfolders are not an
// error here; the operations that need them create or report them.
func Open(root string) (Layout, error) {
	if strings.TrimSpace(root) == "" {
		return Layout{}, fmt.Errorf("%w: no root configured", ErrRootMissing)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return Layout{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return Layout{}, fmt.Errorf("%w: %s", ErrRootMissing, abs)
		}
		return Layout{}, err
	}
	if !info.IsDir() {
		return Layout{}, fmt.Errorf("%s is not a directory", abs)
	}
	return Layout{Root: abs}, nil
}

// CheckWritable creates dir if needed and proves a file can be written in it.
func CheckWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	probe, err := os.CreateTemp(dir, ".segprep-probe-*")
	if err != nil {
		return fmt.Errorf("%s is not writable: %w", dir, err)
	}
	name := probe.Name()
	_ = probe.Close()
	return os.Remove(name)
}
