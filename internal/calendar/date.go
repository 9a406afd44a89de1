package calendar

import (
	"fmt"
	"time"

	"github.com/danekja/ymanager/internal"
)

// DateFormat is the wire format of calendar days, inherited from the web
// client.
const DateFormat = "2006/01/02"

// TimeFormat is the wire format of time-of-day window bounds.
const TimeFormat = "15:04"

// ParseDate parses a yyyy/MM/dd day and normalizes it to midnight UTC.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(DateFormat, raw)
	if err != nil {
		return time.Time{}, internal.NewValidationError(
			fmt.Sprintf("invalid date %q, expected yyyy/MM/dd", raw),
			internal.ErrCodeValidationFailed, "error.validation")
	}
	return NormalizeDate(t), nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateFormat)
}

// NormalizeDate strips the time-of-day and zone, keeping the civil day.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current civil day in the server's configured zone.
func Today(now time.Time, loc *time.Location) time.Time {
	return NormalizeDate(now.In(loc))
}

// ParseClock parses an HH:mm window bound to minutes since midnight.
func ParseClock(raw string) (int, error) {
	t, err := time.Parse(TimeFormat, raw)
	if err != nil {
		return 0, internal.NewValidationError(
			fmt.Sprintf("invalid time %q, expected HH:mm", raw),
			internal.ErrCodeValidationFailed, "error.validation")
	}
	return t.Hour()*60 + t.Minute(), nil
}

func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}
