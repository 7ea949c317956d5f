package app

import (
	"fmt"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/audit"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/model"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/timecalc"
)

// Users returns the roster.
func (a *App) Users() []model.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.users.List()
}

// User returns a single user.
func (a *App) User(id string) (model.User, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.users.Get(id)
}

// UpdateUserShift assigns shift to the user.
func (a *App) UpdateUserShift(userID string, shift model.ShiftConfig) (model.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	actor, err := a.actor()
	if err != nil {
		return model.User{}, err
	}
	for _, c := range []string{shift.StartTime, shift.EndTime} {
		if _, _, err := timecalc.ParseClock(c); err != nil {
			return model.User{}, a.rejected("update-shift", err)
		}
	}
	u, err := a.users.UpdateShift(userID, shift)
	if err != nil {
		return model.User{}, a.rejected("update-shift", err)
	}
	a.audit.Append(audit.ActorOf(actor), audit.ActionUpdateShift,
		fmt.Sprintf("Updated shift for %s to %s", u.Name, shift.Name))
	return u, nil
}

// ToggleUserStatus blocks or unblocks a user.
func (a *App) ToggleUserStatus(userID string, status model.UserStatus) (model.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	actor, err := a.actor()
	if err != nil {
		return model.User{}, err
	}
	if status != model.UserActive && status != model.UserBlocked {
		return model.User{}, a.rejected("change-status", fmt.Errorf("unknown user status %q", status))
	}
	u, err := a.users.SetStatus(userID, status)
	if err != nil {
		return model.User{}, a.rejected("change-status", err)
	}
	a.audit.Append(audit.ActorOf(actor), audit.ActionChangeUserStatus,
		fmt.Sprintf("Changed status of %s to %s", u.Name, status))
	return u, nil
}
