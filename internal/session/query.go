package session

import (
	"time"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/model"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/timecalc"
)

// DayRecords returns the user's records for the given "YYYY-MM-DD" day.
func DayRecords(records []model.AttendanceRecord, userID, day string) []model.AttendanceRecord {
	var out []model.AttendanceRecord
	for _, r := range records {
		if r.UserID == userID && r.Date == day {
			out = append(out, r)
		}
	}
	return out
}

// ActiveRecord returns the first of the user's records for day that has
// no check-out time.
func ActiveRecord(records []model.AttendanceRecord, userID, day string) (model.AttendanceRecord, bool) {
	for _, r := range records {
		if r.UserID == userID && r.Date == day && r.Active() {
			return r, true
		}
	}
	return model.AttendanceRecord{}, false
}

// OpenSession returns the user's active record for now's day, or failing
// that an active record from the previous day, so overnight shifts can be
// closed after midnight.
func OpenSession(records []model.AttendanceRecord, userID string, now time.Time) (model.AttendanceRecord, bool) {
	idx := openSessionIndex(records, userID, now)
	if idx < 0 {
		return model.AttendanceRecord{}, false
	}
	return records[idx], true
}

// IsCheckedIn reports whether the user has an open session at now.
func IsCheckedIn(records []model.AttendanceRecord, userID string, now time.Time) bool {
	return openSessionIndex(records, userID, now) >= 0
}

func openSessionIndex(records []model.AttendanceRecord, userID string, now time.Time) int {
	for _, day := range []string{timecalc.DayKey(now), timecalc.DayKey(now.AddDate(0, 0, -1))} {
		for i, r := range records {
			if r.UserID == userID && r.Date == day && r.Active() {
				return i
			}
		}
	}
	return -1
}
