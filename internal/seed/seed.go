// Package seed provides the initial users, attendance, requests and audit
// entries an App starts with.
package seed

import (
	"time"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/model"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/timecalc"
)

// Data is the initial state of an App.
type Data struct {
	Users      []model.User
	Attendance []model.AttendanceRecord
	Requests   []model.RequestItem
	AuditLogs  []model.AuditLog
}

// Default returns the demo organisation with dates relative to now.
func Default(now time.Time) Data {
	today := timecalc.StartOfDay(now)
	day := func(offset int) string { return timecalc.DayKey(today.AddDate(0, 0, offset)) }
	at := func(offset, hour, minute int) time.Time {
		d := today.AddDate(0, 0, offset)
		return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, d.Location())
	}
	general := model.ShiftConfig{Name: "General Shift A", StartTime: "09:00", EndTime: "18:00"}

	users := []model.User{
		{
			ID: "u1", Name: "Alex Johnson", Role: model.RoleEmployee, Department: "Engineering",
			ReportingManagerID: "u2", Status: model.UserActive, Shift: ptr(general),
			LeaveBalance: model.LeaveBalance{Casual: 5, Sick: 3, Earned: 10},
		},
		{
			ID: "u2", Name: "Sarah Connor", Role: model.RoleManager, Department: "Engineering",
			ReportingManagerID: "u3", Status: model.UserActive, Shift: ptr(general),
			LeaveBalance: model.LeaveBalance{Casual: 8, Sick: 2, Earned: 15},
		},
		{
			ID: "u3", Name: "Michael Smith", Role: model.RoleHRAdmin, Department: "HR",
			Status: model.UserActive,
			Shift:  &model.ShiftConfig{Name: "Morning Shift", StartTime: "08:00", EndTime: "17:00"},
			LeaveBalance: model.LeaveBalance{Casual: 10, Sick: 10, Earned: 20},
		},
		{
			ID: "u4", Name: "David Lee", Role: model.RoleEmployee, Department: "Sales",
			Status: model.UserBlocked, Shift: ptr(general),
			LeaveBalance: model.LeaveBalance{Earned: 2},
		},
	}

	requests := []model.RequestItem{
		{
			ID: "r1", UserID: "u1", UserName: "Alex Johnson", Type: model.RequestPermission,
			Status: model.StatusPending, StartDate: day(0), AppliedOn: day(0),
			Reason:  "Dental appointment followup",
			Details: model.PermissionDetails{StartTime: "14:00", EndTime: "16:00"},
		},
		{
			ID: "r2", UserID: "u1", UserName: "Alex Johnson", Type: model.RequestLeave,
			Status: model.StatusPending, StartDate: day(3), AppliedOn: day(0),
			Reason:  "Personal family function",
			Details: model.LeaveDetails{Duration: model.FullDay},
		},
		{
			ID: "r3", UserID: "u1", UserName: "Alex Johnson", Type: model.RequestRegularization,
			Status: model.StatusPending, StartDate: day(-2), AppliedOn: day(0),
			Reason:  "Network issue preventing checkout",
			Details: model.RegularizationDetails{CheckInTime: "09:00", CheckOutTime: "18:00", Location: model.LocationOffice},
		},
		{
			ID: "r4", UserID: "u1", UserName: "Alex Johnson", Type: model.RequestLocationException,
			Status: model.StatusPending, StartDate: day(1), AppliedOn: day(0),
			Reason:  "Technician visiting home for repairs",
			Details: model.LocationExceptionDetails{LocationType: model.LocationHome, Duration: model.FullDay},
		},
	}
	for i := range requests {
		requests[i].Version = 1
	}

	attendance := []model.AttendanceRecord{
		{
			ID: "a1", UserID: "u1", Date: day(-1),
			CheckInTime: at(-1, 9, 0), CheckOutTime: ptr(at(-1, 18, 0)),
			LocationType: model.LocationOffice, Status: model.AttendancePresent,
			Segments: []model.AttendanceSegment{
				{ID: "s1", LocationType: model.LocationOffice, DurationMinutes: 240, Notes: "Morning Shift"},
				{ID: "s2", LocationType: model.LocationCustomerSite, DurationMinutes: 180, Notes: "Client Visit - Alpha Corp"},
				{ID: "s3", LocationType: model.LocationHome, DurationMinutes: 120, Notes: "Evening Documentation"},
			},
		},
		{
			ID: "a2", UserID: "u2", Date: day(0),
			CheckInTime:  at(0, 8, 55),
			LocationType: model.LocationHome, Status: model.AttendanceWFH,
			Segments:     []model.AttendanceSegment{},
		},
	}

	hr := func(id string, offset int, action, details string) model.AuditLog {
		return model.AuditLog{
			ID: id, Timestamp: now.AddDate(0, 0, offset), Action: action, Details: details,
			PerformedBy: "Michael Smith", Role: model.RoleHRAdmin,
		}
	}
	logs := []model.AuditLog{
		hr("l1", -1, "Approve Request", "Approved Leave for Alex Johnson"),
		hr("l2", -2, "Update Shift", "Changed shift for Sarah Connor to 09:00-18:00"),
		hr("l3", -5, "Block User", "Blocked user David Lee due to disciplinary action"),
	}

	return Data{Users: users, Attendance: attendance, Requests: requests, AuditLogs: logs}
}

func ptr[T any](v T) *T {
	return &v
}
