package metadata

import (
	"errors"
	"fmt"

	"github.com/rwcarlsen/goexif/exif"

	"media-calendar/internal/filesystem"
	"media-calendar/internal/logging"
)

// DateTags holds the raw embedded date strings of a photo. Empty means absent.
type DateTags struct {
	Original string
	Modified string
}

// TagReader reads embedded date tags from a photo file.
type TagReader interface {
	ReadDateTags(path string) (DateTags, error)
}

// ExifReader reads date tags with goexif. Files go through the NFS-aware
// open helper.
type ExifReader struct {
	Retry filesystem.RetryConfig
}

// NewExifReader returns an ExifReader with the default retry configuration.
func NewExifReader() *ExifReader {
	return &ExifReader{Retry: filesystem.DefaultRetryConfig()}
}

// ReadDateTags decodes the EXIF block of path and returns its date tags.
// Panics inside the decoder are converted to errors.
func (r *ExifReader) ReadDateTags(path string) (tags DateTags, err error) {
	f, err := filesystem.OpenWithRetry(path, r.Retry)
	if err != nil {
		return DateTags{}, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			logging.Debug("failed to close %s: %v", path, closeErr)
		}
	}()

	defer func() {
		if rec := recover(); rec != nil {
			tags = DateTags{}
			err = fmt.Errorf("exif decoder panic: %v", rec)
		}
	}()

	x, err := exif.Decode(f)
	if x == nil || (err != nil && exif.IsCriticalError(err)) {
		if err == nil {
			err = errors.New("no exif data")
		}
		return DateTags{}, err
	}

	return DateTags{
		Original: stringTag(x, exif.DateTimeOriginal),
		Modified: stringTag(x, exif.DateTime),
	}, nil
}

func stringTag(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return s
}
