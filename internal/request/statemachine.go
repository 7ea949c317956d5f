package request

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/model"
)

// Op is a request operation.
type Op string

const (
	OpApprove        Op = "approve"
	OpReject         Op = "reject"
	OpRequestInfo    Op = "request-info"
	OpReply          Op = "reply"
	OpManagerApprove Op = "manager-approve"
	OpFinalize       Op = "finalize"
	OpUpdate         Op = "update"
	OpDelete         Op = "delete"
)

// ErrInvalidTransition matches every *InvalidTransitionError.
var ErrInvalidTransition = errors.New("invalid request transition")

// InvalidTransitionError reports an operation the request's current status
// or type does not permit.
type InvalidTransitionError struct {
	ID     string
	Op     Op
	Type   model.RequestType
	Status model.RequestStatus
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	msg := fmt.Sprintf("cannot %s %s request %s in status %s", e.Op, e.Type, e.ID, e.Status)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Is makes errors.Is(err, ErrInvalidTransition) match.
func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

type rule struct {
	from []model.RequestStatus
	to   model.RequestStatus
	// only restricts the op to one request type.
	only model.RequestType
	hint string
	// noReplay marks ops whose target status does not prove they ran
	// before, so sitting in it is not a no-op.
	noReplay bool
}

var rules = map[Op]rule{
	// Approving a shift change only moves the status; callers apply the shift.
	OpApprove: {
		from: []model.RequestStatus{model.StatusPending, model.StatusManagerApproved},
		to:   model.StatusApproved,
	},
	OpReject: {
		from: []model.RequestStatus{model.StatusPending, model.StatusInfoRequested, model.StatusManagerApproved},
		to:   model.StatusRejected,
	},
	OpRequestInfo: {
		from: []model.RequestStatus{model.StatusPending},
		to:   model.StatusInfoRequested,
	},
	OpReply: {
		from: []model.RequestStatus{model.StatusInfoRequested},
		to:   model.StatusPending,
		// Every request starts out Pending.
		noReplay: true,
	},
	OpManagerApprove: {
		from: []model.RequestStatus{model.StatusPending},
		to:   model.StatusManagerApproved,
		only: model.RequestShiftChange,
		hint: "only shift changes take a manager recommendation",
	},
	OpFinalize: {
		from: []model.RequestStatus{model.StatusManagerApproved},
		to:   model.StatusApproved,
		only: model.RequestShiftChange,
		hint: "only shift changes are finalized",
	},
}

// Next returns the status item moves to under op. noop is true when the
// item already sits in the target status: re-delivering an operation is
// safe and changes nothing. Replies are never no-ops.
func Next(item model.RequestItem, op Op) (to model.RequestStatus, noop bool, err error) {
	r, ok := rules[op]
	if !ok {
		return "", false, fmt.Errorf("unknown request operation %q", op)
	}
	invalid := func(reason string) error {
		return &InvalidTransitionError{ID: item.ID, Op: op, Type: item.Type, Status: item.Status, Reason: reason}
	}

	if r.only != "" && item.Type != r.only {
		return "", false, invalid(r.hint)
	}
	if item.Status == r.to && !r.noReplay {
		return r.to, true, nil
	}
	if !slices.Contains(r.from, item.Status) {
		return "", false, invalid("")
	}
	if r.to == model.StatusApproved && item.Type == model.RequestShiftChange {
		if _, ok := item.ShiftChange(); !ok {
			return "", false, invalid("no requested shift")
		}
	}
	return r.to, false, nil
}

// checkEditable guards update and delete: only requests still awaiting a
// decision belong to their owner.
func checkEditable(item model.RequestItem, op Op) error {
	if item.Status.Editable() {
		return nil
	}
	return &InvalidTransitionError{ID: item.ID, Op: op, Type: item.Type, Status: item.Status,
		Reason: "only pending requests can be changed"}
}
