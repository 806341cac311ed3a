package processor

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputPath(t *testing.T) {
	dir := filepath.Join("data", "images")
	cases := []struct {
		src    string
		format string
		want   string
	}{
		{"/src/cat.jpeg", "png", filepath.Join(dir, "cat.png")},
		{"/src/scan.v2.tiff", "tif", filepath.Join(dir, "scan.v2.tif")},
		{"/src/MASK.PNG", "JPG", filepath.Join(dir, "MASK.jpg")},
		{"/src/noext", ".png", filepath.Join(dir, "noext.png")},
		{"/src/.hidden", "png", filepath.Join(dir, ".hidden.png")},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, OutputPath(tc.src, dir, tc.format), tc.src)
	}
}

func TestSupportedFormat(t *testing.T) {
	for _, format := range []string{"png", "jpg", "jpeg", "tif", "tiff", "bmp", "gif", "PNG"} {
		assert.True(t, SupportedFormat(format), format)
	}
	for _, format := range []string{"", "webp", "heic", "raw"} {
		assert.False(t, SupportedFormat(format), format)
	}
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, FilterLanczos, f)

	f, err = ParseFilter(" Nearest ")
	require.NoError(t, err)
	assert.Equal(t, FilterNearest, f)

	_, err = ParseFilter("bilinear")
	assert.Error(t, err)
}

func TestSnapshotPercent(t *testing.T) {
	assert.Equal(t, 0, Snapshot{}.Percent())
	assert.Equal(t, 33, Snapshot{Completed: 1, Total: 3}.Percent())
	assert.Equal(t, 100, Snapshot{Completed: 3, Total: 3}.Percent())
}

func TestSummaryFailures(t *testing.T) {
	s := Summary{Successes: 5, Total: 9, Skipped: 1}
	assert.Equal(t, 3, s.Failures())
}
