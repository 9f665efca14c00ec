// Package metadata extracts a best-effort capture timestamp from media files.
//
// Videos are dated by their filesystem modification time. Photos are dated by
// the EXIF DateTimeOriginal tag, then the generic EXIF DateTime tag, then the
// modification time. Extraction never fails: unreadable files and corrupt
// metadata simply fall through to the next source.
package metadata
