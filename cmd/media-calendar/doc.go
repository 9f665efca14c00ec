// Command media-calendar indexes photo and video libraries by capture date
// and serves "on this day" views over a JSON API.
//
// # Application Lifecycle
//
//  1. Configuration loading from the environment (see package startup),
//     then GOMEMLIMIT from MEMORY_LIMIT and the memory monitor that pauses
//     scans under heap pressure
//  2. Database initialization: SQLite in WAL mode under DATABASE_DIR
//  3. Indexer and scan scheduler: the first scan starts after a short
//     warm-up, then one scan per RESCAN_INTERVAL_HOURS
//  4. Metrics collector and Prometheus endpoint on METRICS_PORT
//  5. HTTP API on PORT
//  6. Graceful shutdown on SIGINT/SIGTERM: the API stops accepting
//     requests, a running scan is cancelled after its extracted records
//     are written, then the database is closed
//
// # API
//
//	GET  /api/days/{month}/{day}   records of a calendar day, grouped by year
//	GET  /api/today                same, for the current local day
//	GET  /api/media/{hash}         one record by content identifier
//	GET  /api/stats                index statistics and the last scan
//	POST /api/reindex              start a scan now (202, or 409 while scanning)
//	GET  /healthz, /livez, /readyz probes
package main
