package util

import (
	"strconv"
	"strings"
	"time"
)

// unixMillisThreshold separates epoch seconds from epoch milliseconds in numeric timestamps.
const unixMillisThreshold = 100_000_000_000

// ParseTime tries RFC3339, RFC3339Nano, unix seconds and unix milliseconds.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		if ts >= unixMillisThreshold {
			return time.UnixMilli(ts), true
		}
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// ParseMillis parses s like ParseTime and returns epoch milliseconds.
func ParseMillis(s string) (int64, bool) {
	t, ok := ParseTime(s)
	if !ok {
		return 0, false
	}
	return t.UnixMilli(), true
}
