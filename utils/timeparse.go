package utils

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ParseDate parses a calendar day in "YYYY-MM-DD" form, anchored at
// midnight UTC.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return t, nil
}

// ParseClock parses a wall-clock value ("15:04" or "15:04:05") onto the
// given date. Seconds are kept so the grid check can reject them.
func ParseClock(date time.Time, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	layout := "15:04"
	if strings.Count(value, ":") >= 2 {
		layout = "15:04:05"
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", value, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
}

// FormatDate renders a day as "YYYY-MM-DD".
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// FormatClock renders a wall-clock time as "HH:MM".
func FormatClock(t time.Time) string {
	return t.Format("15:04")
}
