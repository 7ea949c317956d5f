package timecalc

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DayLayout is the calendar-day key used for attendance dates and request dates.
const DayLayout = "2006-01-02"

// GenerateID creates a unique ID based on timestamp and a random suffix,
// e.g. "20260227-083210-9f1c2a7b".
func GenerateID(t time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%s", t.Format("20060102-150405"), suffix)
}

// DayKey returns the calendar day of t as "YYYY-MM-DD" in t's location.
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// ParseDay parses a "YYYY-MM-DD" key in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DayLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// ParseClock parses an "HH:MM" time of day.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time of day %q (want HH:MM): %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}

// At returns the instant on day's calendar date at the "HH:MM" clock time.
func At(day time.Time, clock string) (time.Time, error) {
	h, m, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, day.Location()), nil
}

// ShiftWindow returns the start and end of a shift beginning on day. A shift
// whose end is not after its start (e.g. 22:00-07:00) ends the next day.
func ShiftWindow(day time.Time, startClock, endClock string) (time.Time, time.Time, error) {
	start, err := At(day, startClock)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := At(day, endClock)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return start, end, nil
}

// FormatDuration formats seconds as a human-readable string like "1h 40m" or "45m" or "30s".
func FormatDuration(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%ds", s)
}

// FormatMinutes formats a minute count like FormatDuration.
func FormatMinutes(minutes int) string {
	return FormatDuration(int64(minutes) * 60)
}

// FormatDurationHHMMSS formats seconds as HH:MM:SS.
func FormatDurationHHMMSS(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// WeekRange returns the Monday and Sunday of the ISO week containing t.
func WeekRange(t time.Time) (time.Time, time.Time) {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // ISO Sunday
	}
	monday := StartOfDay(t.AddDate(0, 0, -(wd - 1)))
	return monday, EndOfDay(monday.AddDate(0, 0, 6))
}

// MonthRange returns the first and last day of t's month.
func MonthRange(t time.Time) (time.Time, time.Time) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return first, EndOfDay(first.AddDate(0, 1, -1))
}

// ISOWeekLabel returns a label like "2026-W09".
func ISOWeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59 of the same day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// InRange reports whether the day key lies within [from, to] by calendar day.
func InRange(day string, from, to time.Time) bool {
	return day >= DayKey(from) && day <= DayKey(to)
}
