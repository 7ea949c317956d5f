// Package request implements the approval lifecycle of leave, permission,
// regularization, location-exception, shift-change and late check-in
// requests.
package request

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/clock"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/model"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/timecalc"
)

var (
	// ErrUnknownRequest is returned when no request has the given ID.
	ErrUnknownRequest = errors.New("unknown request")
	// ErrVersionConflict is returned when the caller's expected version is stale.
	ErrVersionConflict = errors.New("request was changed concurrently")
	// ErrInvalidRequest is returned for malformed drafts.
	ErrInvalidRequest = errors.New("invalid request")
)

// Draft holds the owner-editable fields of a request.
type Draft struct {
	Type      model.RequestType
	StartDate string
	EndDate   string
	Reason    string
	Details   model.RequestDetails
}

// CreateOptions carries optional create parameters.
type CreateOptions struct {
	// IdempotencyKey makes a replayed create return the original request.
	IdempotencyKey string
	// ExternalID links the request to an external calendar event.
	ExternalID string
}

// Engine owns the request list, newest first. Every mutation replaces the
// slice. It is not safe for concurrent use; the owner serializes access.
type Engine struct {
	clock clock.Clock
	items []model.RequestItem
	keys  map[string]string
}

// NewEngine returns an Engine preloaded with seed requests.
func NewEngine(c clock.Clock, seed []model.RequestItem) *Engine {
	items := make([]model.RequestItem, len(seed))
	copy(items, seed)
	for i := range items {
		if items[i].Version == 0 {
			items[i].Version = 1
		}
	}
	return &Engine{clock: c, items: items, keys: map[string]string{}}
}

// Items returns all requests, newest first.
func (e *Engine) Items() []model.RequestItem {
	return e.items
}

// Get returns the request with the given ID.
func (e *Engine) Get(id string) (model.RequestItem, error) {
	idx, err := e.index(id)
	if err != nil {
		return model.RequestItem{}, err
	}
	return e.items[idx], nil
}

// FindExternal returns the request linked to an external event ID.
func (e *Engine) FindExternal(externalID string) (model.RequestItem, bool) {
	if externalID == "" {
		return model.RequestItem{}, false
	}
	for _, it := range e.items {
		if it.ExternalID == externalID {
			return it, true
		}
	}
	return model.RequestItem{}, false
}

// Create adds a pending request owned by owner. created is false when the
// idempotency key was seen before; the original request is returned then.
func (e *Engine) Create(owner model.User, d Draft, opts CreateOptions) (item model.RequestItem, created bool, err error) {
	if opts.IdempotencyKey != "" {
		if id, ok := e.keys[opts.IdempotencyKey]; ok {
			if existing, err := e.Get(id); err == nil {
				return existing, false, nil
			}
		}
	}

	details, err := validateDraft(d)
	if err != nil {
		return model.RequestItem{}, false, err
	}

	now := e.clock.Now()
	item = model.RequestItem{
		ID:         timecalc.GenerateID(now),
		UserID:     owner.ID,
		UserName:   owner.Name,
		Type:       d.Type,
		Status:     model.StatusPending,
		StartDate:  d.StartDate,
		EndDate:    d.EndDate,
		Reason:     strings.TrimSpace(d.Reason),
		AppliedOn:  timecalc.DayKey(now),
		Details:    details,
		Version:    1,
		ExternalID: opts.ExternalID,
	}

	next := make([]model.RequestItem, 0, len(e.items)+1)
	next = append(next, item)
	e.items = append(next, e.items...)
	if opts.IdempotencyKey != "" {
		e.keys[opts.IdempotencyKey] = item.ID
	}
	return item, true, nil
}

// Update replaces the draft fields of an editable request. The status is
// left untouched.
func (e *Engine) Update(id string, d Draft, expectedVersion int) (model.RequestItem, error) {
	idx, item, err := e.lookup(id, expectedVersion)
	if err != nil {
		return model.RequestItem{}, err
	}
	if err := checkEditable(item, OpUpdate); err != nil {
		return model.RequestItem{}, err
	}
	details, err := validateDraft(d)
	if err != nil {
		return model.RequestItem{}, err
	}

	item.Type = d.Type
	item.StartDate = d.StartDate
	item.EndDate = d.EndDate
	item.Reason = strings.TrimSpace(d.Reason)
	item.Details = details
	item.Version++
	e.replace(idx, item)
	return item, nil
}

// Delete removes an editable request and returns it.
func (e *Engine) Delete(id string, expectedVersion int) (model.RequestItem, error) {
	idx, item, err := e.lookup(id, expectedVersion)
	if err != nil {
		return model.RequestItem{}, err
	}
	if err := checkEditable(item, OpDelete); err != nil {
		return model.RequestItem{}, err
	}
	var next []model.RequestItem
	next = append(next, e.items[:idx]...)
	next = append(next, e.items[idx+1:]...)
	e.items = next
	return item, nil
}

// Check validates op against the request without changing anything.
func (e *Engine) Check(id string, op Op, expectedVersion int) (item model.RequestItem, noop bool, err error) {
	_, item, err = e.lookup(id, expectedVersion)
	if err != nil {
		return model.RequestItem{}, false, err
	}
	if _, noop, err = Next(item, op); err != nil {
		return model.RequestItem{}, false, err
	}
	return item, noop, nil
}

// Transition applies a status operation. note becomes the manager notes for
// OpRequestInfo and the employee response for OpReply. changed is false
// when the request already was in the target status.
func (e *Engine) Transition(id string, op Op, note string, expectedVersion int) (item model.RequestItem, changed bool, err error) {
	idx, item, err := e.lookup(id, expectedVersion)
	if err != nil {
		return model.RequestItem{}, false, err
	}
	to, noop, err := Next(item, op)
	if err != nil {
		return model.RequestItem{}, false, err
	}

	note = strings.TrimSpace(note)
	switch {
	case noop && op == OpRequestInfo && note != "" && note != item.ManagerNotes:
		item.ManagerNotes = note
	case noop:
		return item, false, nil
	default:
		item.Status = to
		switch op {
		case OpRequestInfo:
			item.ManagerNotes = note
		case OpReply:
			item.EmployeeResponse = note
		}
	}
	item.Version++
	e.replace(idx, item)
	return item, true, nil
}

func (e *Engine) index(id string) (int, error) {
	for i, it := range e.items {
		if it.ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrUnknownRequest, id)
}

func (e *Engine) lookup(id string, expectedVersion int) (int, model.RequestItem, error) {
	idx, err := e.index(id)
	if err != nil {
		return -1, model.RequestItem{}, err
	}
	item := e.items[idx]
	if expectedVersion > 0 && item.Version != expectedVersion {
		return -1, model.RequestItem{}, fmt.Errorf("%w: %s is at version %d, expected %d",
			ErrVersionConflict, id, item.Version, expectedVersion)
	}
	return idx, item, nil
}

func (e *Engine) replace(idx int, item model.RequestItem) {
	next := make([]model.RequestItem, len(e.items))
	copy(next, e.items)
	next[idx] = item
	e.items = next
}

func validateDraft(d Draft) (model.RequestDetails, error) {
	if !slices.Contains(model.RequestTypes, d.Type) {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidRequest, d.Type)
	}
	if strings.TrimSpace(d.Reason) == "" {
		return nil, fmt.Errorf("%w: a reason is required", ErrInvalidRequest)
	}
	start, err := time.Parse(timecalc.DayLayout, d.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: start date %q is not YYYY-MM-DD", ErrInvalidRequest, d.StartDate)
	}
	if d.EndDate != "" {
		end, err := time.Parse(timecalc.DayLayout, d.EndDate)
		if err != nil {
			return nil, fmt.Errorf("%w: end date %q is not YYYY-MM-DD", ErrInvalidRequest, d.EndDate)
		}
		if end.Before(start) {
			return nil, fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidRequest, d.EndDate, d.StartDate)
		}
	}
	return model.CheckDetails(d.Type, d.Details)
}
