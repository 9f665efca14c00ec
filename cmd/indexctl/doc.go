// Command indexctl runs maintenance tasks against the media-calendar index
// without the server.
//
// Usage:
//
//	indexctl <command>
//
// Commands:
//
//	scan    Run one scan of the media roots and print its summary. Safe to
//	        interrupt: records extracted so far are written, nothing is
//	        pruned.
//
//	status  Print index statistics and the last persisted scan summary.
//
//	vacuum  Compact the database file.
//
// Output is an aligned table when stdout is a terminal and indented JSON
// otherwise, so the commands compose with jq.
//
// Environment:
//
//	DATABASE_DIR - Path to database directory (default: /database)
//	MEDIA_DIRS   - Media roots separated by ';' or ',' (default: /media)
//	CONFIG_FILE  - Optional YAML file overriding MEDIA_DIRS
//
// Running scan while the server is scanning the same database is safe but
// wasteful; both scans serialize on the database write lock.
package main
