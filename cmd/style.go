package cmd

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/model"
)

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
	titleStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

func requestBadge(s model.RequestStatus) string {
	switch s {
	case model.StatusApproved:
		return okStyle.Render(string(s))
	case model.StatusRejected:
		return errStyle.Render(string(s))
	case model.StatusInfoRequested:
		return warnStyle.Render(string(s))
	case model.StatusManagerApproved:
		return infoStyle.Render(string(s))
	}
	return dimStyle.Render(string(s))
}

func attendanceBadge(s model.AttendanceStatus) string {
	switch s {
	case model.AttendancePresent:
		return okStyle.Render(string(s))
	case model.AttendanceWFH, model.AttendanceOnLeave:
		return infoStyle.Render(string(s))
	case model.AttendanceAbsent:
		return errStyle.Render(string(s))
	case model.AttendanceCheckedOut:
		return dimStyle.Render(string(s))
	}
	return warnStyle.Render(string(s))
}

func userBadge(s model.UserStatus) string {
	if s == model.UserBlocked {
		return errStyle.Render(string(s))
	}
	return okStyle.Render(string(s))
}
