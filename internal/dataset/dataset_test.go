package dataset

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/binary"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"segprep/pkg/imgutil"
)

func TestCreateLayout(t *testing.T) {
	base := t.TempDir()

	layout, err := Create(base, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, DefaultName), layout.Root)
	for _, dir := range []string{layout.Annotations(), layout.Images(), layout.List()} {
		assert.DirExists(t, dir)
	}

	// Second call keeps existing content.
	marker := filepath.Join(layout.Images(), "keep.png")
	require.NoError(t, os.WriteFile(marker, []byte("x"), 0o644))
	_, err = Create(base, "")
	require.NoError(t, err)
	assert.FileExists(t, marker)
}

func TestOpen(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, ErrRootMissing)

	_, err = Open("")
	assert.ErrorIs(t, err, ErrRootMissing)

	root := t.TempDir()
	layout, err := Open(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, AnnotationsDir), layout.Dir(KindMasks))
	assert.Equal(t, filepath.Join(root, ImagesDir), layout.Dir(KindImages))
	assert.Equal(t, filepath.Join(root, ListDir, ManifestName), layout.Manifest())
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"masks": KindMasks, "Mask": KindMasks, "annotations": KindMasks, "images": KindImages, "IMAGE": KindImages} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseKind("labels")
	assert.Error(t, err)
}

func TestCheckWritable(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	require.NoError(t, CheckWritable(dir))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	assert.Error(t, CheckWritable(filepath.Join(blocker, "sub")))
}

func TestDiscoverFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.PNG", "a.jpeg", "notes.txt", "c.tiff", "d.gif", "e.bmp", "f.webp"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0o755))

	files, err := Discover(dir)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	assert.Equal(t, []string{"a.jpeg", "b.PNG", "c.tiff", "d.gif", "e.bmp"}, names)
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "cell.png")
	writeGray(t, good, 12, 7)
	bad := filepath.Join(dir, "junk.png")
	require.NoError(t, os.WriteFile(bad, []byte("junk junk junk"), 0o644))
	rotated := filepath.Join(dir, "phone.jpg")
	require.NoError(t, os.WriteFile(rotated, jpegWithOrientation(t, 20, 10, 6), 0o644))

	entries := Inspect([]string{good, bad, filepath.Join(dir, "gone.png"), rotated})
	require.Len(t, entries, 4)

	assert.NoError(t, entries[0].Err)
	assert.Equal(t, imgutil.KindPNG, entries[0].Kind)
	assert.Equal(t, 12, entries[0].Width)
	assert.Equal(t, 7, entries[0].Height)
	assert.Equal(t, imgutil.OrientationNormal, entries[0].Orientation)
	assert.Equal(t, "cell.png - 12x7", entries[0].Label())

	assert.Error(t, entries[1].Err)
	assert.Equal(t, "junk.png", entries[1].Label())

	assert.Error(t, entries[2].Err)
	assert.Equal(t, "gone.png", entries[2].Label())

	require.NoError(t, entries[3].Err)
	assert.Equal(t, imgutil.KindJPEG, entries[3].Kind)
	assert.Equal(t, "phone.jpg - 20x10", entries[3].Label())
	assert.Equal(t, 6, entries[3].Orientation)
	assert.True(t, imgutil.Rotated(entries[3].Orientation))
}

// jpegWithOrientation encodes a real JPEG and splices an APP1 EXIF segment
// carrying only the Orientation tag right after SOI.
func jpegWithOrientation(t *testing.T, w, h int, orientation uint16) []byte {
	t.Helper()

	var body bytes.Buffer
	require.NoError(t, jpeg.Encode(&body, image.NewGray(image.Rect(0, 0, w, h)), nil))

	var tiff bytes.Buffer
	tiff.Write([]byte{'I', 'I', 0x2a, 0x00})
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(8))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(1))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(0x0112))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(3))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(1))
	_ = binary.Write(&tiff, binary.LittleEndian, orientation)
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(0))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(0))
	payload := append([]byte("Exif\x00\x00"), tiff.Bytes()...)

	var out bytes.Buffer
	out.Write(body.Bytes()[:2])
	out.Write([]byte{0xff, 0xe1})
	_ = binary.Write(&out, binary.BigEndian, uint16(len(payload)+2))
	out.Write(payload)
	out.Write(body.Bytes()[2:])
	return out.Bytes()
}

func TestWriteManifestPositional(t *testing.T) {
	layout := newLayout(t)
	touch(t, layout.Images(), "b.png", "a.png")
	touch(t, layout.Annotations(), "n.png", "m.png")

	res, err := WriteManifest(layout, ManifestOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pairs)

	data, err := os.ReadFile(layout.Manifest())
	require.NoError(t, err)
	assert.Equal(t, "images/a.png annotations/m.png\nimages/b.png annotations/n.png\n", string(data))
}

func TestWriteManifestPositionalTruncates(t *testing.T) {
	layout := newLayout(t)
	touch(t, layout.Images(), "1.png", "2.png", "3.png")
	touch(t, layout.Annotations(), "1.png")

	res, err := WriteManifest(layout, ManifestOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pairs)
	assert.Equal(t, 2, res.UnpairedImages)
	assert.Equal(t, 0, res.UnpairedAnnotations)

	data, err := os.ReadFile(layout.Manifest())
	require.NoError(t, err)
	assert.Equal(t, "images/1.png annotations/1.png\n", string(data))
}

func TestWriteManifestStrict(t *testing.T) {
	layout := newLayout(t)
	touch(t, layout.Images(), "a.jpg", "b.jpg")
	touch(t, layout.Annotations(), "b.png", "a.png")

	res, err := WriteManifest(layout, ManifestOptions{Strict: true})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pairs)

	data, err := os.ReadFile(layout.Manifest())
	require.NoError(t, err)
	assert.Equal(t, "images/a.jpg annotations/a.png\nimages/b.jpg annotations/b.png\n", string(data))
}

func TestWriteManifestStrictMismatch(t *testing.T) {
	layout := newLayout(t)
	touch(t, layout.Images(), "a.png", "b.png")
	touch(t, layout.Annotations(), "a.png", "c.png")

	_, err := WriteManifest(layout, ManifestOptions{Strict: true})
	require.ErrorIs(t, err, ErrManifestMismatch)
	assert.Contains(t, err.Error(), "b.png")
	assert.Contains(t, err.Error(), "c.png")
	assert.NoFileExists(t, layout.Manifest())
}

func TestWriteManifestMissingFolder(t *testing.T) {
	layout := Layout{Root: t.TempDir()}
	_, err := WriteManifest(layout, ManifestOptions{})
	assert.Error(t, err)
}

func TestArchive(t *testing.T) {
	layout := newLayout(t)
	touch(t, layout.Images(), "a.png")
	require.NoError(t, os.WriteFile(filepath.Join(layout.Annotations(), "a.png"), []byte("mask"), 0o644))

	dest, err := Archive(context.Background(), layout.Root)
	require.NoError(t, err)
	assert.Equal(t, layout.Root+".zip", dest)

	zr, err := zip.OpenReader(dest)
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"annotations/", "annotations/a.png", "images/", "images/a.png", "lst/"}, names)

	for _, f := range zr.File {
		if f.Name != "annotations/a.png" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		assert.Equal(t, "mask", string(data))
	}
}

func TestArchiveCancelled(t *testing.T) {
	layout := newLayout(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Archive(ctx, layout.Root)
	require.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, ArchivePath(layout.Root))
}

func TestArchiveMissingRoot(t *testing.T) {
	_, err := Archive(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func newLayout(t *testing.T) Layout {
	t.Helper()
	layout, err := Create(t.TempDir(), "ds")
	require.NoError(t, err)
	return layout
}

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
}

func writeGray(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, w, h))))
	require.NoError(t, f.Close())
}
