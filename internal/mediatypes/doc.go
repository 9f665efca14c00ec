// Package mediatypes provides shared type definitions for media file
// handling across media-calendar.
//
// It has no dependencies beyond the standard library so that the database,
// metadata and indexer packages can all import it without cycles.
//
// # Kinds
//
// Every supported file is either a photo or a video:
//
//	mediatypes.KindOf("/photos/IMG_0001.HEIC") // KindPhoto
//	mediatypes.KindOf("/photos/clip.MP4")      // KindVideo
//
// Extension matching is case-insensitive. Files whose extension is in
// neither PhotoExtensions nor VideoExtensions are not indexed (see
// IsSupported).
//
// # Live Photos
//
// LivePhotoExtension is the container used for Live-Photo companion clips.
// A companion shares its photo's file stem exactly (ignoring case).
//
// # Date Sources
//
// DateSource records where a capture timestamp came from. Sources are
// ordered by trust: exif-original, exif-fallback, filesystem.
package mediatypes
