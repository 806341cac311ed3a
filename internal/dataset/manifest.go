package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
)

// ErrManifestMismatch is returned in strict mode when image and annotation
// stems do not line up one to one.
var ErrManifestMismatch = errors.New("images and annotations do not match")

type ManifestOptions struct {
	// Strict pairs files by stem instead of by sorted position.
	Strict bool
}

// ManifestResult reports what WriteManifest wrote. In positional mode the
// Unpaired counts are the tail of the longer listing that was dropped.
type ManifestResult struct {
	Path                string
	Pairs               int
	UnpairedImages      int
	UnpairedAnnotations int
}

// Pair is one manifest line.
type Pair struct {
	Image      string
	Annotation string
}

// Line renders the pair with forward slashes on every platform.
func (p Pair) Line() string {
	return path.Join(ImagesDir, p.Image) + " " + path.Join(AnnotationsDir, p.Annotation)
}

// WriteManifest writes lst/lst.txt for the layout.
//
// By default the sorted listings of images/ and annotations/ are zipped by
// position, so the i-th image pairs with the i-th annotation whatever their
// names are. Listings of different lengths or diverging names silently
// mis-pair; Strict mode pairs by stem and fails on any mismatch instead.
func WriteManifest(layout Layout, opts ManifestOptions) (ManifestResult, error) {
	result := ManifestResult{Path: layout.Manifest()}

	images, err := listFiles(layout.Images())
	if err != nil {
		return result, err
	}
	annotations, err := listFiles(layout.Annotations())
	if err != nil {
		return result, err
	}

	var pairs []Pair
	if opts.Strict {
		pairs, err = pairByStem(images, annotations)
		if err != nil {
			return result, err
		}
	} else {
		pairs = pairByPosition(images, annotations)
		result.UnpairedImages = len(images) - len(pairs)
		result.UnpairedAnnotations = len(annotations) - len(pairs)
	}

	if err := os.MkdirAll(layout.List(), 0o755); err != nil {
		return result, err
	}
	if err := writeLines(result.Path, pairs); err != nil {
		return result, err
	}
	result.Pairs = len(pairs)
	return result, nil
}

func pairByPosition(images, annotations []string) []Pair {
	n := len(images)
	if len(annotations) < n {
		n = len(annotations)
	}
	pairs := make([]Pair, 0, n)
	for i := 0; i < n; i++ {
		pairs = append(pairs, Pair{Image: images[i], Annotation: annotations[i]})
	}
	return pairs
}

func pairByStem(images, annotations []string) ([]Pair, error) {
	byStem := make(map[string]string, len(annotations))
	for _, name := range annotations {
		stem := stemOf(name)
		if prev, ok := byStem[stem]; ok {
			return nil, fmt.Errorf("%w: annotations %s and %s share stem %q", ErrManifestMismatch, prev, name, stem)
		}
		byStem[stem] = name
	}

	var pairs []Pair
	var missing []string
	seen := make(map[string]string, len(images))
	for _, name := range images {
		stem := stemOf(name)
		if prev, ok := seen[stem]; ok {
			return nil, fmt.Errorf("%w: images %s and %s share stem %q", ErrManifestMismatch, prev, name, stem)
		}
		seen[stem] = name
		ann, ok := byStem[stem]
		if !ok {
			missing = append(missing, name)
			continue
		}
		pairs = append(pairs, Pair{Image: name, Annotation: ann})
		delete(byStem, stem)
	}

	var orphans []string
	for _, name := range byStem {
		orphans = append(orphans, name)
	}
	sort.Strings(orphans)

	if len(missing) > 0 || len(orphans) > 0 {
		var parts []string
		if len(missing) > 0 {
			parts = append(parts, "images without annotation: "+strings.Join(missing, ", "))
		}
		if len(orphans) > 0 {
			parts = append(parts, "annotations without image: "+strings.Join(orphans, ", "))
		}
		return nil, fmt.Errorf("%w: %s", ErrManifestMismatch, strings.Join(parts, "; "))
	}
	return pairs, nil
}

func stemOf(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}

// listFiles returns the names of the non-directory entries of dir in
// lexicographic order.
func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func writeLines(dest string, pairs []Pair) error {
	file, err := os.Create(dest)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(file)
	for _, p := range pairs {
		if _, err := w.WriteString(p.Line() + "\n"); err != nil {
			_ = file.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
