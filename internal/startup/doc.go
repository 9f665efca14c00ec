// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// Configuration is loaded from environment variables via [LoadConfig]:
//
//   - MEDIA_DIRS: media roots separated by ';' or ',' (default: /media)
//   - CONFIG_FILE: optional YAML file overriding the roots and interval
//   - DATABASE_DIR: directory holding media.db (default: /database)
//   - PORT: HTTP API port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: enable or disable the metrics server (default: true)
//   - RESCAN_INTERVAL_HOURS: hours between scans, fractions allowed (default: 6)
//   - INDEX_WORKERS: pin the extraction worker count
//   - LOG_LEVEL, DEBUG, LOG_FORMAT: see package logging
//   - LOG_HEALTH_CHECKS: log health probe requests (default: true)
//
// Problems with media roots or the interval are warnings. Only an unusable
// database directory fails startup.
//
// # Config file
//
// The file named by CONFIG_FILE is read by [DirectorySource] before every
// scan, so edits apply without a restart:
//
//	media_dirs:
//	  - /mnt/photos
//	  - /mnt/phone-backup
//	rescan_interval_hours: 12
//
// Keys left out of the file fall back to the environment.
//
// # Build Information
//
// Version, Commit and BuildTime are injected via ldflags and exposed via
// [GetBuildInfo].
package startup
