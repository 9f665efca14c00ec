// Package handlers provides the HTTP handlers of the media-calendar JSON API.
//
// It includes handlers for:
//   - "On this day" views: records of one calendar day grouped by year
//   - Record lookup by content identifier
//   - Index statistics and the last scan summary
//   - Manual rescan requests
//   - Health, liveness and readiness probes
package handlers
