// Package database provides the SQLite store behind the media-calendar index.
//
// It holds one row per indexed media file (media_records) keyed by absolute
// path, with the capture date decomposed into year, month and day columns so
// "on this day" lookups hit the (month, day) index. A small key/value
// metadata table keeps the summary of the last scan.
//
// The database uses WAL mode so readers are not blocked while the indexer
// writes a batch.
package database
