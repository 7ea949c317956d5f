package app

import (
	"time"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/model"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/timecalc"
)

// ShiftTemplates returns the predefined shifts offered when assigning one.
func ShiftTemplates() []model.ShiftConfig {
	return []model.ShiftConfig{
		{Name: "General Shift A", StartTime: "09:00", EndTime: "18:00"},
		{Name: "Morning Shift", StartTime: "07:00", EndTime: "16:00"},
		{Name: "Night Shift", StartTime: "22:00", EndTime: "07:00"},
	}
}

// TeamStats counts the active users by their attendance on day. A user with
// a record is present or working from home; one without is on leave when an
// approved leave covers day, absent otherwise.
func (a *App) TeamStats(day time.Time) model.TeamStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	key := timecalc.DayKey(day)
	var stats model.TeamStats
	for _, u := range a.users.List() {
		if u.Status != model.UserActive {
			continue
		}
		stats.Total++
		switch status, ok := a.dayStatus(u.ID, key); {
		case ok && status == model.AttendanceWFH:
			stats.WFH++
		case ok:
			stats.Present++
		case a.onLeave(u.ID, key):
			stats.Leave++
		default:
			stats.Absent++
		}
	}
	return stats
}

func (a *App) dayStatus(userID, day string) (model.AttendanceStatus, bool) {
	var found bool
	var status model.AttendanceStatus
	for _, r := range a.sessions.Records() {
		if r.UserID != userID || r.Date != day {
			continue
		}
		if !found || r.Status != model.AttendanceWFH {
			status = r.Status
		}
		found = true
	}
	return status, found
}

func (a *App) onLeave(userID, day string) bool {
	for _, r := range a.requests.Items() {
		if r.UserID != userID || r.Type != model.RequestLeave || r.Status != model.StatusApproved {
			continue
		}
		end := r.EndDate
		if end == "" {
			end = r.StartDate
		}
		if day >= r.StartDate && day <= end {
			return true
		}
	}
	return false
}

// PresentDays counts the distinct days in month's calendar month on which
// the user has an attendance record.
func (a *App) PresentDays(userID string, month time.Time) int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	from, to := timecalc.MonthRange(month)
	days := map[string]struct{}{}
	for _, r := range a.sessions.Records() {
		if r.UserID == userID && timecalc.InRange(r.Date, from, to) {
			days[r.Date] = struct{}{}
		}
	}
	return len(days)
}

// LocationMinutes sums the user's closed sessions between from and to per
// location. Sessions without segments count their whole span at the
// check-in location.
func (a *App) LocationMinutes(userID string, from, to time.Time) map[model.LocationType]int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := map[model.LocationType]int{}
	for _, r := range a.sessions.Records() {
		if r.UserID != userID || r.Active() || !timecalc.InRange(r.Date, from, to) {
			continue
		}
		if len(r.Segments) == 0 {
			out[r.LocationType] += int(r.CheckOutTime.Sub(r.CheckInTime).Minutes())
			continue
		}
		for _, s := range r.Segments {
			out[s.LocationType] += s.DurationMinutes
		}
	}
	return out
}
