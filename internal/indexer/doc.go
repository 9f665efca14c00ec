// Package indexer builds and maintains the calendar index of a media
// library.
//
// A scan walks every configured root, skipping hidden entries and files
// whose extension is not a supported photo or video format. Each candidate
// goes through change detection: a file whose size and modification time
// match its stored record is left alone, everything else is handed to the
// metadata extractor on a bounded worker pool.
//
// Live Photos are handled at walk time. A .mov file sharing its stem with a
// photo in the same directory gets no record of its own; its path is stored
// on the photo record instead.
//
// Results flow over a channel to a single reconciler, the only writer to
// the database during a scan. It writes records in batches, one transaction
// per batch, and after a complete walk deletes records whose files were not
// seen. Records under roots or directories that could not be listed are
// never deleted, and a cancelled or failed scan deletes nothing. An optional
// MemoryGate can hold the walker back while memory is tight; a walk it stops
// early also deletes nothing.
//
// Scheduler runs scans after a warm-up delay and then on a fixed interval
// until shutdown. Only one scan runs at a time.
package indexer
