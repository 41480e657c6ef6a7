package models

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DateLayout is the human-readable form written to the date field, e.g. "Oct 15, 2026"
const DateLayout = "Jan 2, 2006"

// datetime-local inputs carry no zone and no seconds
const localMinuteLayout = "2006-01-02T15:04"

// FormatDate renders t in DateLayout
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate leniently parses stored dates: RFC 3339, datetime-local, the
// human-readable DateLayout and whatever else dateparse recognises.
// Zone-less values are read in local time.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation(localMinuteLayout, s, time.Local); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation(DateLayout, s, time.Local); err == nil {
		return t, true
	}
	t, err := dateparse.ParseLocal(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
