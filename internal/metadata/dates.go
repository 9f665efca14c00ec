package metadata

import (
	"math"
	"strings"
	"time"
)

// latestDate is the last instant the index can store; capture times are
// kept as unix nanoseconds.
var latestDate = time.Unix(0, math.MaxInt64)

// dateLayouts are the accepted embedded date formats, most common first.
// Layouts without a zone are interpreted in the local time zone.
var dateLayouts = []string{
	"2006:01:02 15:04:05",
	"2006:01:02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006:01:02",
}

// ParseDate parses an embedded date string. It returns false for empty
// strings, placeholder dates such as "0000:00:00 00:00:00", dates past the
// storable range, and anything that matches none of the accepted layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(strings.TrimRight(s, "\x00"))
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err != nil {
			continue
		}
		if t.Year() < 1800 || t.After(latestDate) {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}
