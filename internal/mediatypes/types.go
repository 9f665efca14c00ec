package mediatypes

import (
	"path/filepath"
	"strings"
)

// Kind is the coarse media classification of an indexed file.
type Kind string

const (
	// KindPhoto is a still image.
	KindPhoto Kind = "photo"
	// KindVideo is a video clip.
	KindVideo Kind = "video"
)

// DateSource is the provenance of a capture timestamp.
type DateSource string

const (
	// SourceExifOriginal is the embedded original-capture tag (DateTimeOriginal).
	SourceExifOriginal DateSource = "exif-original"
	// SourceExifFallback is the embedded generic date tag (DateTime).
	SourceExifFallback DateSource = "exif-fallback"
	// SourceFilesystem is the file's last-modified time.
	SourceFilesystem DateSource = "filesystem"
)

// Trust ranks a source; higher is more trustworthy. Unknown sources rank 0.
func (s DateSource) Trust() int {
	switch s {
	case SourceExifOriginal:
		return 3
	case SourceExifFallback:
		return 2
	case SourceFilesystem:
		return 1
	default:
		return 0
	}
}

// Valid reports whether s is one of the known sources.
func (s DateSource) Valid() bool {
	return s.Trust() > 0
}

// LivePhotoExtension is the only container recognized as a Live-Photo companion.
const LivePhotoExtension = ".mov"

// PhotoExtensions maps lowercase extensions to supported still-image formats.
var PhotoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tiff": true,
	".tif":  true,
	".heic": true,
	".heif": true,
	".dng":  true,
}

// VideoExtensions maps lowercase extensions to supported video formats.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".m4v":  true,
	".mkv":  true,
	".avi":  true,
	".wmv":  true,
	".webm": true,
	".mpeg": true,
	".mpg":  true,
	".3gp":  true,
	".mts":  true,
	".m2ts": true,
}

// Ext returns the lowercase extension of path including the leading dot.
func Ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// Stem returns the base name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IsSupported reports whether path has a photo or video extension.
func IsSupported(path string) bool {
	ext := Ext(path)
	return PhotoExtensions[ext] || VideoExtensions[ext]
}

// IsPhoto reports whether path has a still-image extension.
func IsPhoto(path string) bool {
	return PhotoExtensions[Ext(path)]
}

// IsLivePhotoCandidate reports whether path has the Live-Photo companion extension.
func IsLivePhotoCandidate(path string) bool {
	return Ext(path) == LivePhotoExtension
}

// KindOf classifies path by extension: video extensions map to KindVideo,
// everything else to KindPhoto. Callers filter with IsSupported first.
func KindOf(path string) Kind {
	if VideoExtensions[Ext(path)] {
		return KindVideo
	}
	return KindPhoto
}
