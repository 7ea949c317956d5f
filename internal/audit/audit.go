// Package audit keeps the append-only trail of every state-changing action.
package audit

import (
	"github.com/rs/zerolog"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/clock"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/model"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/timecalc"
)

// Action labels, one per mutating operation.
const (
	ActionCheckIn             = "Check In"
	ActionCheckOut            = "Check Out"
	ActionCreateRequest       = "Create Request"
	ActionUpdateRequest       = "Update Request"
	ActionDeleteRequest       = "Delete Request"
	ActionApproveRequest      = "Approve Request"
	ActionRejectRequest       = "Reject Request"
	ActionRequestInfo         = "Request Info"
	ActionReplyInfo           = "Reply to Request Info"
	ActionManagerShiftChange  = "Manager Recommended Shift Change"
	ActionFinalizeShiftChange = "Finalized Shift Change"
	ActionUpdateShift         = "Update Shift"
	ActionChangeUserStatus    = "Change User Status"
)

// Actor is the identity snapshot recorded with an entry.
type Actor struct {
	Name string
	Role model.Role
}

// ActorOf snapshots a user's name and role.
func ActorOf(u model.User) Actor {
	return Actor{Name: u.Name, Role: u.Role}
}

// Log is the audit trail, newest entry first. It is not safe for concurrent
// use; the owner serializes access.
type Log struct {
	clock   clock.Clock
	log     zerolog.Logger
	entries []model.AuditLog
}

// New returns a Log preloaded with seed entries, which must already be
// ordered newest first.
func New(c clock.Clock, log zerolog.Logger, seed []model.AuditLog) *Log {
	entries := make([]model.AuditLog, len(seed))
	copy(entries, seed)
	return &Log{clock: c, log: log, entries: entries}
}

// Append records an action performed by actor and returns the new entry.
// It never fails.
func (l *Log) Append(actor Actor, action, details string) model.AuditLog {
	now := l.clock.Now()
	entry := model.AuditLog{
		ID:          timecalc.GenerateID(now),
		Timestamp:   now,
		Action:      action,
		Details:     details,
		PerformedBy: actor.Name,
		Role:        actor.Role,
	}

	next := make([]model.AuditLog, 0, len(l.entries)+1)
	next = append(next, entry)
	l.entries = append(next, l.entries...)

	l.log.Info().
		Str("action", action).
		Str("performed_by", actor.Name).
		Str("role", string(actor.Role)).
		Msg(details)
	return entry
}

// Entries returns the trail, newest first. The slice is never modified
// after it is returned.
func (l *Log) Entries() []model.AuditLog {
	return l.entries
}

// Len returns the number of entries.
func (l *Log) Len() int {
	return len(l.entries)
}
