// Package middleware provides HTTP middleware for the media-calendar API.
//
// Logger writes one sanitized W3C Extended Log Format line per request and
// can leave out health probes. Metrics records Prometheus request counts
// and latencies labelled by route template.
package middleware
