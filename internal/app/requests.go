package app

import (
	"fmt"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/audit"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/model"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/request"
)

// CreateRequest files a request owned by the current user. A replayed
// idempotency key returns the original request and records nothing.
func (a *App) CreateRequest(d request.Draft, opts request.CreateOptions) (model.RequestItem, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	user, err := a.actor()
	if err != nil {
		return model.RequestItem{}, err
	}
	item, created, err := a.requests.Create(user, d, opts)
	if err != nil {
		return model.RequestItem{}, a.rejected("create-request", err)
	}
	if created {
		a.audit.Append(audit.ActorOf(user), audit.ActionCreateRequest, fmt.Sprintf("Created %s request", item.Type))
	}
	return item, nil
}

// UpdateRequest replaces the draft fields of a pending request. A positive
// version must match the stored one.
func (a *App) UpdateRequest(id string, d request.Draft, version int) (model.RequestItem, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	user, err := a.actor()
	if err != nil {
		return model.RequestItem{}, err
	}
	item, err := a.requests.Update(id, d, version)
	if err != nil {
		return model.RequestItem{}, a.rejected("update-request", err)
	}
	a.audit.Append(audit.ActorOf(user), audit.ActionUpdateRequest, fmt.Sprintf("Updated request %s", id))
	return item, nil
}

// DeleteRequest removes a pending request.
func (a *App) DeleteRequest(id string, version int) (model.RequestItem, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	user, err := a.actor()
	if err != nil {
		return model.RequestItem{}, err
	}
	item, err := a.requests.Delete(id, version)
	if err != nil {
		return model.RequestItem{}, a.rejected("delete-request", err)
	}
	a.audit.Append(audit.ActorOf(user), audit.ActionDeleteRequest, fmt.Sprintf("Deleted request %s", id))
	return item, nil
}

// ApproveRequest approves a pending or manager-approved request. Approving
// a shift change also assigns the requested shift, like FinalizeShiftChange.
func (a *App) ApproveRequest(id string, version int) (model.RequestItem, error) {
	describe := func(r model.RequestItem) string { return fmt.Sprintf("Approved %s request for %s", r.Type, r.UserName) }

	a.mu.Lock()
	defer a.mu.Unlock()
	if item, err := a.requests.Get(id); err == nil && item.Type == model.RequestShiftChange {
		return a.applyShiftChange(id, request.OpApprove, version, audit.ActionApproveRequest, describe)
	}
	return a.transitionLocked(id, request.OpApprove, "", version, audit.ActionApproveRequest, describe)
}

// RejectRequest rejects a request awaiting a decision.
func (a *App) RejectRequest(id string, version int) (model.RequestItem, error) {
	return a.transition(id, request.OpReject, "", version, audit.ActionRejectRequest,
		func(r model.RequestItem) string { return fmt.Sprintf("Rejected %s request for %s", r.Type, r.UserName) })
}

// RequestInformation asks the owner for more detail.
func (a *App) RequestInformation(id, notes string, version int) (model.RequestItem, error) {
	return a.transition(id, request.OpRequestInfo, notes, version, audit.ActionRequestInfo,
		func(r model.RequestItem) string {
			return fmt.Sprintf("Requested info for %s request from %s", r.Type, r.UserName)
		})
}

// ReplyToInfoRequest answers an information request and returns the
// request to pending.
func (a *App) ReplyToInfoRequest(id, response string, version int) (model.RequestItem, error) {
	return a.transition(id, request.OpReply, response, version, audit.ActionReplyInfo,
		func(model.RequestItem) string { return "User replied to information request" })
}

// ManagerApproveShiftChange forwards a shift change to HR.
func (a *App) ManagerApproveShiftChange(id string, version int) (model.RequestItem, error) {
	return a.transition(id, request.OpManagerApprove, "", version, audit.ActionManagerShiftChange,
		func(r model.RequestItem) string {
			return fmt.Sprintf("Manager approved shift change request for %s. Forwarded to HR.", r.UserName)
		})
}

func (a *App) transition(id string, op request.Op, note string, version int, action string,
	describe func(model.RequestItem) string) (model.RequestItem, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.transitionLocked(id, op, note, version, action, describe)
}

func (a *App) transitionLocked(id string, op request.Op, note string, version int, action string,
	describe func(model.RequestItem) string) (model.RequestItem, error) {
	user, err := a.actor()
	if err != nil {
		return model.RequestItem{}, err
	}
	item, changed, err := a.requests.Transition(id, op, note, version)
	if err != nil {
		return model.RequestItem{}, a.rejected(string(op), err)
	}
	a.audit.Append(audit.ActorOf(user), action, describe(item))
	a.log.Info().Str("request", id).Str("op", string(op)).Str("status", string(item.Status)).
		Bool("changed", changed).Msg("request transition")
	return item, nil
}

// FinalizeShiftChange applies a manager-approved shift change: the owner's
// shift becomes the requested one and the request is approved. Either both
// happen or neither does.
func (a *App) FinalizeShiftChange(id string, version int) (model.RequestItem, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.applyShiftChange(id, request.OpFinalize, version, audit.ActionFinalizeShiftChange,
		func(r model.RequestItem) string {
			sc, _ := r.ShiftChange()
			return fmt.Sprintf("HR finalized shift change for %s to %s", r.UserName, sc.RequestedShift.Name)
		})
}

// applyShiftChange moves a shift change to Approved under op and assigns
// the requested shift to its owner. Callers hold a.mu.
func (a *App) applyShiftChange(id string, op request.Op, version int, action string,
	describe func(model.RequestItem) string) (model.RequestItem, error) {
	user, err := a.actor()
	if err != nil {
		return model.RequestItem{}, err
	}
	item, noop, err := a.requests.Check(id, op, version)
	if err != nil {
		return model.RequestItem{}, a.rejected(string(op), err)
	}
	if noop {
		a.audit.Append(audit.ActorOf(user), action, describe(item))
		return item, nil
	}
	sc, _ := item.ShiftChange()

	owner, err := a.users.Get(item.UserID)
	if err != nil {
		return model.RequestItem{}, a.rejected(string(op), err)
	}
	if _, err := a.users.UpdateShift(owner.ID, sc.RequestedShift); err != nil {
		return model.RequestItem{}, a.rejected(string(op), err)
	}
	item, _, err = a.requests.Transition(id, op, "", version)
	if err != nil {
		// Unreachable while Check and Transition share the lock.
		if owner.Shift != nil {
			_, _ = a.users.UpdateShift(owner.ID, *owner.Shift)
		}
		return model.RequestItem{}, a.rejected(string(op), err)
	}

	a.audit.Append(audit.ActorOf(user), action, describe(item))
	a.log.Info().Str("request", id).Str("op", string(op)).Str("user", owner.ID).
		Str("shift", sc.RequestedShift.String()).Msg("shift change applied")
	return item, nil
}

// Request returns a single request.
func (a *App) Request(id string) (model.RequestItem, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.requests.Get(id)
}

// Requests returns all requests, newest first.
func (a *App) Requests() []model.RequestItem {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.requests.Items()
}

// PendingRequests returns the requests awaiting an approver: pending ones
// and shift changes waiting for HR.
func (a *App) PendingRequests() []model.RequestItem {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var out []model.RequestItem
	for _, r := range a.requests.Items() {
		if r.Status == model.StatusPending || r.Status == model.StatusManagerApproved {
			out = append(out, r)
		}
	}
	return out
}

// MyRequests returns the current user's requests.
func (a *App) MyRequests() []model.RequestItem {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var out []model.RequestItem
	for _, r := range a.requests.Items() {
		if r.UserID == a.currentID {
			out = append(out, r)
		}
	}
	return out
}

// RequestByExternalID finds a request imported from an external event.
func (a *App) RequestByExternalID(externalID string) (model.RequestItem, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.requests.FindExternal(externalID)
}
