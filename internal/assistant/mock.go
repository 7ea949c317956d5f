package assistant

import (
	"context"
	"strings"
)

// Mock is an offline delegate that recognises the supported actions by
// keyword.
type Mock struct{}

// Send implements Delegate.
func (Mock) Send(_ context.Context, message string, _ []Message) (Reply, error) {
	text := strings.ToLower(message)
	switch {
	case containsAny(text, "check in", "checkin", "check-in", "clock in", "start my day"):
		loc := "Office"
		switch {
		case containsAny(text, "home", "wfh", "remote"):
			loc = "Home"
		case containsAny(text, "site", "client", "customer"):
			loc = "Customer Site"
		}
		return Reply{Call: &FunctionCall{Name: FuncCheckIn, Args: map[string]string{"locationType": loc}}}, nil
	case containsAny(text, "check out", "checkout", "check-out", "clock out", "done for the day"):
		args := map[string]string{}
		if _, notes, ok := strings.Cut(message, ":"); ok {
			args["notes"] = strings.TrimSpace(notes)
		}
		return Reply{Call: &FunctionCall{Name: FuncCheckOut, Args: args}}, nil
	case containsAny(text, "status", "how many days", "attendance", "present"):
		return Reply{Call: &FunctionCall{Name: FuncGetStatus}}, nil
	case containsAny(text, "hours", "policy", "office time"):
		return Reply{Text: "Office hours are 9:00 AM to 6:00 PM. Check-ins more than 15 minutes after your shift start are flagged as late."}, nil
	}
	return Reply{Text: "I can check you in or out and report your attendance. Try \"check in from home\" or \"what is my status\"."}, nil
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
