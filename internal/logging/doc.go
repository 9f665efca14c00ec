// Package logging provides the leveled logging interface used across
// media-calendar.
//
// Messages are printf-formatted and written through a zap sugared logger.
// The level comes from the LOG_LEVEL environment variable (debug, info,
// warn, error) or DEBUG=true; LOG_FORMAT=json switches to JSON output for
// log shippers. With attaches structured fields such as a scan id.
package logging
