package processor

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"segprep/pkg/imgutil"
)

// ErrUnrecognizedImage is returned for sources whose header matches no
// supported codec.
var ErrUnrecognizedImage = errors.New("unrecognized image format")

// SupportedFormat reports whether format names an encoder the pipeline can
// write.
func SupportedFormat(format string) bool {
	_, err := imaging.FormatFromExtension(normalizeFormat(format))
	return err == nil
}

// OutputPath returns dir/<stem of src>.<format>.
func OutputPath(src, dir, format string) string {
	base := filepath.Base(src)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	return filepath.Join(dir, stem+"."+normalizeFormat(format))
}

func normalizeFormat(format string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), ".")
}

func transformFile(path string, job Job, opts Options) (string, error) {
	if job.Width <= 0 || job.Height <= 0 {
		return "", fmt.Errorf("invalid target size %dx%d", job.Width, job.Height)
	}
	format, err := imaging.FormatFromExtension(normalizeFormat(job.Format))
	if err != nil {
		return "", fmt.Errorf("unsupported output format %q", job.Format)
	}
	filter, ok := filters[opts.Filter]
	if !ok {
		return "", fmt.Errorf("unknown resample filter %q", opts.Filter)
	}

	src, err := decodeFile(path, opts.AutoOrient)
	if err != nil {
		return "", err
	}

	resized := imaging.Resize(src, job.Width, job.Height, filter)

	destPath := OutputPath(path, job.OutputDir, job.Format)
	if err := writeImage(resized, destPath, format, opts); err != nil {
		return "", err
	}
	return destPath, nil
}

func decodeFile(path string, autoOrient bool) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	kind, err := imgutil.SniffReader(file)
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if kind == imgutil.KindUnknown {
		return nil, ErrUnrecognizedImage
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	img, err := imaging.Decode(file, imaging.AutoOrientation(autoOrient))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return img, nil
}

func writeImage(img image.Image, destPath string, format imaging.Format, opts Options) error {
	destDir := filepath.Dir(destPath)

	tmpFile, err := os.CreateTemp(destDir, ".segprep-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmpFile.Name())

	if err := tmpFile.Chmod(0o644); err != nil {
		_ = tmpFile.Close()
		return err
	}

	if err := imaging.Encode(tmpFile, img, format, imaging.JPEGQuality(opts.JPEGQuality)); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("encode %s: %w", format, err)
	}

	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	return replaceFile(tmpFile.Name(), destPath)
}

func replaceFile(tmpPath, destPath string) error {
	if err := os.Rename(tmpPath, destPath); err == nil {
		return nil
	}
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Rename(tmpPath, destPath)
}

func prepareOutputDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New("output directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}
