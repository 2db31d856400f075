package dataquality

import (
	"regexp"
	"strings"
	"time"
)

// ISOLayout is the canonical output form of every parsed date.
const ISOLayout = "2006-01-02T15:04:05Z"

var compactOffset = regexp.MustCompile(`([+-]\d{2})(\d{2})$`)

// Strict ISO 8601 layouts. Fractional seconds are accepted by time.Parse after a
// seconds field even when the layout omits them.
var isoLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02T15",
	"2006-01-02",
}

var isoOffsetLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04Z07:00",
}

// Lenient fallbacks, tried in order. Day-first wins over month-first for
// ambiguous slash dates.
var fallbackLayouts = []string{
	"2006-1-2",
	"2006-1-2 15:4:5",
	"2/1/2006",
	"2/1/2006 15:4:5",
	"1/2/2006",
	"1/2/2006 15:4:5",
	"2006-1-2T15:4:5",
	"2006-1-2T15:4:5Z",
	"2006-1-2 15:4",
}

// ParseDate normalizes a date string to ISOLayout in UTC, truncated to seconds.
// Values carrying an offset are converted to UTC; naive values are taken as UTC.
// The second return is false when no layout matches.
func ParseDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	if t, ok := parseISO(s); ok {
		return format(t), true
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return format(t), true
		}
	}
	return "", false
}

func parseISO(s string) (time.Time, bool) {
	if strings.HasSuffix(s, "Z") {
		naive := strings.TrimSuffix(s, "Z")
		if t, ok := parseNaive(naive); ok {
			return t, true
		}
		// a trailing Z wins over any offset before it: the wall clock is read as UTC
		if t, ok := parseWithOffsetWallClock(naive); ok {
			return t, true
		}
		return time.Time{}, false
	}

	if t, ok := parseWithOffset(compactOffset.ReplaceAllString(s, "$1:$2")); ok {
		return t, true
	}
	return parseNaive(s)
}

func parseNaive(s string) (time.Time, bool) {
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseWithOffset(s string) (time.Time, bool) {
	for _, layout := range isoOffsetLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func parseWithOffsetWallClock(s string) (time.Time, bool) {
	for _, layout := range isoOffsetLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), true
		}
	}
	return time.Time{}, false
}

func format(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(ISOLayout)
}
