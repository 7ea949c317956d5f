package model

import (
	"fmt"
	"strings"
)

// Role is the organisational role of a user.
type Role string

const (
	RoleEmployee Role = "Employee"
	RoleManager  Role = "Manager"
	RoleHRAdmin  Role = "HR Admin"
)

// UserStatus tells whether a user may use the product.
type UserStatus string

const (
	UserActive  UserStatus = "Active"
	UserBlocked UserStatus = "Blocked"
)

// ShiftConfig is a named working-hours window. StartTime and EndTime are
// "HH:MM" strings. It is a value type and is always copied.
type ShiftConfig struct {
	Name      string `json:"name" yaml:"name"`
	StartTime string `json:"startTime" yaml:"startTime"`
	EndTime   string `json:"endTime" yaml:"endTime"`
}

// String renders a shift like "General Shift A (09:00-18:00)".
func (s ShiftConfig) String() string {
	return fmt.Sprintf("%s (%s-%s)", s.Name, s.StartTime, s.EndTime)
}

// LeaveBalance holds remaining leave days per category.
type LeaveBalance struct {
	Casual int `json:"casual" yaml:"casual"`
	Sick   int `json:"sick" yaml:"sick"`
	Earned int `json:"earned" yaml:"earned"`
}

// User is a member of the directory.
type User struct {
	ID                 string       `json:"id" yaml:"id"`
	Name               string       `json:"name" yaml:"name"`
	Role               Role         `json:"role" yaml:"role"`
	Department         string       `json:"department" yaml:"department"`
	ReportingManagerID string       `json:"reportingManagerId,omitempty" yaml:"reportingManagerId,omitempty"`
	Status             UserStatus   `json:"status" yaml:"status"`
	Shift              *ShiftConfig `json:"shift,omitempty" yaml:"shift,omitempty"`
	LeaveBalance       LeaveBalance `json:"leaveBalance" yaml:"leaveBalance"`
}

// ParseRole accepts a role label ("HR Admin") or a CLI spelling ("hr", "hr_admin").
func ParseRole(s string) (Role, error) {
	switch normalize(s) {
	case "employee", "emp":
		return RoleEmployee, nil
	case "manager", "mgr":
		return RoleManager, nil
	case "hradmin", "hr", "admin":
		return RoleHRAdmin, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// ParseUserStatus accepts "active" or "blocked" in any case.
func ParseUserStatus(s string) (UserStatus, error) {
	switch normalize(s) {
	case "active":
		return UserActive, nil
	case "blocked":
		return UserBlocked, nil
	}
	return "", fmt.Errorf("unknown user status %q", s)
}

// normalize lowercases s and drops spaces, dashes and underscores so that
// "Customer Site", "customer-site" and "CUSTOMER_SITE" compare equal.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch r {
		case ' ', '-', '_':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
