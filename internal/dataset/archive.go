package dataset

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ArchivePath returns <root>.zip.
func ArchivePath(root string) string {
	return filepath.Clean(root) + ".zip"
}

// Archive zips everything under root into <root>.zip with entry names
// relative to root. Directories get their own entries so empty folders
// survive. The archive is written to a temp file and renamed into place, so
// a failed run leaves any previous archive untouched.
func Archive(ctx context.Context, root string) (string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", root)
	}

	dest := ArchivePath(root)
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".segprep-*.zip")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	zw := zip.NewWriter(tmp)
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		return addEntry(zw, path, filepath.ToSlash(rel), d)
	})
	if walkErr != nil {
		_ = zw.Close()
		_ = tmp.Close()
		return "", walkErr
	}

	if err := zw.Close(); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", err
	}
	return dest, nil
}

func addEntry(zw *zip.Writer, path, name string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name

	if d.IsDir() {
		header.Name += "/"
		_, err := zw.CreateHeader(header)
		return err
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	header.Method = zip.Deflate
	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	_, err = io.Copy(w, src)
	return err
}
