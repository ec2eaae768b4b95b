package organizer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"reel/internal/media/ffprobe"
	"reel/internal/media/formats"
)

// DateSource records where a capture date came from.
type DateSource string

const (
	SourceEXIF     DateSource = "exif"
	SourceMetadata DateSource = "metadata"
	SourceMtime    DateSource = "mtime"
)

const exifTimeLayout = "2006:01:02 15:04:05"

// exifDate reads the capture date from an image's EXIF block. Tag order
// follows camera convention: the original capture time first, then the
// file timestamp, then the digitization time.
func exifDate(path string) (time.Time, bool) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, false
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		// Normal for images without EXIF data.
		return time.Time{}, false
	}
	for _, field := range []exif.FieldName{exif.DateTimeOriginal, exif.DateTime, exif.DateTimeDigitized} {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}
		value, err := tag.StringVal()
		if err != nil {
			continue
		}
		if parsed, err := time.Parse(exifTimeLayout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// captureDate resolves the date a file is organized under. Metadata is
// consulted first; absent or malformed metadata falls back to the
// filesystem modification time.
func (o *Organizer) captureDate(ctx context.Context, path string, kind formats.Kind) (time.Time, DateSource, error) {
	switch kind {
	case formats.KindImage:
		if date, ok := exifDate(path); ok {
			return date, SourceEXIF, nil
		}
	case formats.KindVideo:
		if result, err := ffprobe.Inspect(ctx, o.ffprobeBinary, path); err == nil {
			if date, ok := result.CreationTime(); ok {
				return date, SourceMetadata, nil
			}
		}
	}
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, "", err
	}
	return info.ModTime(), SourceMtime, nil
}

// destination computes the organized path for a file:
// <root>/<year>/<zero-padded month>-<month name>/<original filename>.
func destination(root, path string, date time.Time) string {
	month := date.Month()
	bucket := fmt.Sprintf("%02d-%s", int(month), month.String())
	return filepath.Join(root, fmt.Sprintf("%d", date.Year()), bucket, filepath.Base(path))
}
