package imgutil

import (
	"errors"
	"io"
	"os"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
)

// OrientationNormal is the EXIF value for pixels stored upright. Images
// without EXIF data report it too.
const OrientationNormal = 1

// Orientation returns the EXIF Orientation tag (1-8) found in rs. The EXIF
// block is located first, so rs may be a whole JPEG or TIFF file.
func Orientation(rs io.ReadSeeker) (int, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}

	raw, err := exif.SearchAndExtractExifWithReader(rs)
	if err != nil {
		if isNoExif(err) {
			return OrientationNormal, nil
		}
		return 0, err
	}

	tags, _, err := exif.GetFlatExifData(raw, nil)
	if err != nil {
		if isNoExif(err) {
			return OrientationNormal, nil
		}
		return 0, err
	}

	for _, tag := range tags {
		if tag.TagName != "Orientation" {
			continue
		}
		// IFD0 is visited before the thumbnail IFD, so the first hit wins.
		if values, ok := tag.Value.([]uint16); ok && len(values) > 0 {
			return int(values[0]), nil
		}
	}

	return OrientationNormal, nil
}

// OrientationFile opens path and reads its EXIF orientation.
func OrientationFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return Orientation(f)
}

// Rotated reports whether an orientation value asks viewers to transform the
// stored pixels before display.
func Rotated(orientation int) bool {
	return orientation > OrientationNormal && orientation <= 8
}

func isNoExif(err error) bool {
	if errors.Is(err, exif.ErrNoExif) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no exif")
}
