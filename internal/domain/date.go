package domain

import (
	"strings"
	"time"
)

const (
	minYear = 1900
	maxYear = 2100
)

var dateLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"2006/1/2",
	"2006-1-2",
}

// ParseDate parses a frontmatter date. Dates outside 1900-2100 are rejected
// the same way unparseable input is.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		parsed, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		if year := parsed.Year(); year < minYear || year > maxYear {
			return time.Time{}, false
		}
		return parsed, true
	}
	return time.Time{}, false
}

// ValidDate reports whether ParseDate accepts value.
func ValidDate(value string) bool {
	_, ok := ParseDate(value)
	return ok
}

// Timestamp returns the Unix millisecond timestamp of value, or 0 when the
// date is invalid so it orders as the oldest entry.
func Timestamp(value string) int64 {
	parsed, ok := ParseDate(value)
	if !ok {
		return 0
	}
	return parsed.UnixMilli()
}

// FormatDate renders t in DateLayout using UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
