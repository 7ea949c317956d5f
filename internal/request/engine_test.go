package request_test

import (
	"errors"
	"testing"
	"time"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/clock"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/model"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/request"
)

var (
	alex = model.User{ID: "u1", Name: "Alex Johnson", Role: model.RoleEmployee}
	now  = time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
)

func leaveDraft() request.Draft {
	return request.Draft{Type: model.RequestLeave, StartDate: "2026-03-02", Reason: "Family function"}
}

func shiftDraft() request.Draft {
	return request.Draft{
		Type:      model.RequestShiftChange,
		StartDate: "2026-03-01",
		Reason:    "Switching teams",
		Details: model.ShiftChangeDetails{RequestedShift: model.ShiftConfig{
			Name: "Night Shift", StartTime: "22:00", EndTime: "07:00",
		}},
	}
}

func newEngine(t *testing.T) *request.Engine {
	t.Helper()
	return request.NewEngine(clock.Fake(now), nil)
}

func mustCreate(t *testing.T, e *request.Engine, d request.Draft) model.RequestItem {
	t.Helper()
	item, created, err := e.Create(alex, d, request.CreateOptions{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !created {
		t.Fatal("Create reported a replay")
	}
	return item
}

func TestCreate(t *testing.T) {
	e := newEngine(t)
	item := mustCreate(t, e, leaveDraft())

	if item.Status != model.StatusPending || item.Version != 1 {
		t.Errorf("item = %+v, want Pending at version 1", item)
	}
	if item.UserID != "u1" || item.UserName != "Alex Johnson" || item.AppliedOn != "2026-02-27" {
		t.Errorf("owner fields = %q %q %q", item.UserID, item.UserName, item.AppliedOn)
	}
	if d, ok := item.Details.(model.LeaveDetails); !ok || d.Duration != model.FullDay {
		t.Errorf("Details = %#v, want full-day leave", item.Details)
	}

	second := mustCreate(t, e, leaveDraft())
	if items := e.Items(); items[0].ID != second.ID {
		t.Error("newest request is not first")
	}
}

func TestCreateRejectsInvalidDrafts(t *testing.T) {
	tests := []struct {
		name    string
		draft   request.Draft
		wantErr error
	}{
		{"unknown type", request.Draft{Type: "Sabbatical", StartDate: "2026-03-02", Reason: "x"}, request.ErrInvalidRequest},
		{"no reason", request.Draft{Type: model.RequestLeave, StartDate: "2026-03-02"}, request.ErrInvalidRequest},
		{"bad start", request.Draft{Type: model.RequestLeave, StartDate: "02.03.2026", Reason: "x"}, request.ErrInvalidRequest},
		{"end before start", request.Draft{Type: model.RequestLeave, StartDate: "2026-03-02", EndDate: "2026-03-01", Reason: "x"}, request.ErrInvalidRequest},
		{"missing details", request.Draft{Type: model.RequestPermission, StartDate: "2026-03-02", Reason: "x"}, model.ErrDetailsMismatch},
		{"wrong details", request.Draft{Type: model.RequestPermission, StartDate: "2026-03-02", Reason: "x",
			Details: model.LeaveDetails{Duration: model.FullDay}}, model.ErrDetailsMismatch},
		{"empty permission", request.Draft{Type: model.RequestPermission, StartDate: "2026-03-02", Reason: "x",
			Details: model.PermissionDetails{}}, model.ErrDetailsMismatch},
		{"permission bad end", request.Draft{Type: model.RequestPermission, StartDate: "2026-03-02", Reason: "x",
			Details: model.PermissionDetails{StartTime: "16:00", EndTime: "nope"}}, model.ErrDetailsMismatch},
		{"regularization without times", request.Draft{Type: model.RequestRegularization, StartDate: "2026-02-25", Reason: "x",
			Details: model.RegularizationDetails{Location: model.LocationOffice}}, model.ErrDetailsMismatch},
		{"malformed shift", request.Draft{Type: model.RequestShiftChange, StartDate: "2026-03-02", Reason: "x",
			Details: model.ShiftChangeDetails{RequestedShift: model.ShiftConfig{Name: "Custom Shift", StartTime: "ab", EndTime: "cd"}}},
			model.ErrDetailsMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t)
			_, _, err := e.Create(alex, tt.draft, request.CreateOptions{})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if len(e.Items()) != 0 {
				t.Error("failed Create stored a request")
			}
		})
	}
}

func TestCreateIdempotencyKey(t *testing.T) {
	e := newEngine(t)
	opts := request.CreateOptions{IdempotencyKey: "k-1"}
	first, created, err := e.Create(alex, leaveDraft(), opts)
	if err != nil || !created {
		t.Fatalf("first Create = %v, %v", created, err)
	}
	again, created, err := e.Create(alex, leaveDraft(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if created || again.ID != first.ID {
		t.Errorf("replay = %s created=%v, want %s created=false", again.ID, created, first.ID)
	}
	if len(e.Items()) != 1 {
		t.Errorf("items = %d, want 1", len(e.Items()))
	}
}

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		name   string
		draft  request.Draft
		setup  []request.Op
		op     request.Op
		want   model.RequestStatus
		wantOK bool
	}{
		{"approve pending", leaveDraft(), nil, request.OpApprove, model.StatusApproved, true},
		{"reject pending", leaveDraft(), nil, request.OpReject, model.StatusRejected, true},
		{"request info", leaveDraft(), nil, request.OpRequestInfo, model.StatusInfoRequested, true},
		{"reply", leaveDraft(), []request.Op{request.OpRequestInfo}, request.OpReply, model.StatusPending, true},
		{"reject info requested", leaveDraft(), []request.Op{request.OpRequestInfo}, request.OpReject, model.StatusRejected, true},
		{"approve info requested", leaveDraft(), []request.Op{request.OpRequestInfo}, request.OpApprove, "", false},
		{"reply pending", leaveDraft(), nil, request.OpReply, "", false},
		{"approve rejected", leaveDraft(), []request.Op{request.OpReject}, request.OpApprove, "", false},
		{"reject approved", leaveDraft(), []request.Op{request.OpApprove}, request.OpReject, "", false},
		{"manager approve leave", leaveDraft(), nil, request.OpManagerApprove, "", false},
		{"finalize leave", leaveDraft(), nil, request.OpFinalize, "", false},
		{"approve shift change", shiftDraft(), nil, request.OpApprove, model.StatusApproved, true},
		{"approve recommended", shiftDraft(), []request.Op{request.OpManagerApprove}, request.OpApprove, model.StatusApproved, true},
		{"reply after reply", leaveDraft(), []request.Op{request.OpRequestInfo, request.OpReply}, request.OpReply, "", false},
		{"manager approve shift change", shiftDraft(), nil, request.OpManagerApprove, model.StatusManagerApproved, true},
		{"finalize pending shift change", shiftDraft(), nil, request.OpFinalize, "", false},
		{"finalize recommended", shiftDraft(), []request.Op{request.OpManagerApprove}, request.OpFinalize, model.StatusApproved, true},
		{"reject recommended", shiftDraft(), []request.Op{request.OpManagerApprove}, request.OpReject, model.StatusRejected, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t)
			item := mustCreate(t, e, tt.draft)
			for _, op := range tt.setup {
				if _, _, err := e.Transition(item.ID, op, "note", 0); err != nil {
					t.Fatalf("setup %s: %v", op, err)
				}
			}
			before, _ := e.Get(item.ID)

			got, changed, err := e.Transition(item.ID, tt.op, "note", 0)
			if !tt.wantOK {
				if !errors.Is(err, request.ErrInvalidTransition) {
					t.Fatalf("err = %v, want ErrInvalidTransition", err)
				}
				var ite *request.InvalidTransitionError
				if !errors.As(err, &ite) || ite.Status != before.Status {
					t.Errorf("error = %#v, want status %s", err, before.Status)
				}
				if after, _ := e.Get(item.ID); after.Version != before.Version || after.Status != before.Status {
					t.Error("failed transition changed the request")
				}
				return
			}
			if err != nil {
				t.Fatalf("Transition: %v", err)
			}
			if !changed || got.Status != tt.want || got.Version != before.Version+1 {
				t.Errorf("got %s v%d changed=%v, want %s v%d", got.Status, got.Version, changed, tt.want, before.Version+1)
			}
		})
	}
}

func TestTransitionSameTargetIsNoop(t *testing.T) {
	e := newEngine(t)
	item := mustCreate(t, e, leaveDraft())
	approved, _, err := e.Transition(item.ID, request.OpApprove, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	again, changed, err := e.Transition(item.ID, request.OpApprove, "", 0)
	if err != nil {
		t.Fatalf("repeat approve: %v", err)
	}
	if changed || again.Version != approved.Version {
		t.Errorf("repeat approve changed=%v version %d -> %d", changed, approved.Version, again.Version)
	}
}

func TestReplyWithoutInfoRequestKeepsResponse(t *testing.T) {
	e := newEngine(t)
	item := mustCreate(t, e, leaveDraft())
	if _, _, err := e.Transition(item.ID, request.OpReply, "my answer", 0); !errors.Is(err, request.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
	if got, _ := e.Get(item.ID); got.EmployeeResponse != "" || got.Version != item.Version {
		t.Errorf("request = %+v, want untouched", got)
	}
}

func TestRequestInfoRefreshesNotes(t *testing.T) {
	e := newEngine(t)
	item := mustCreate(t, e, leaveDraft())
	first, _, err := e.Transition(item.ID, request.OpRequestInfo, "Which day?", 0)
	if err != nil {
		t.Fatal(err)
	}
	second, changed, err := e.Transition(item.ID, request.OpRequestInfo, "Which day exactly?", 0)
	if err != nil {
		t.Fatal(err)
	}
	if !changed || second.ManagerNotes != "Which day exactly?" || second.Version != first.Version+1 {
		t.Errorf("second = %+v changed=%v", second, changed)
	}

	replied, _, err := e.Transition(item.ID, request.OpReply, "Monday", 0)
	if err != nil {
		t.Fatal(err)
	}
	if replied.Status != model.StatusPending || replied.EmployeeResponse != "Monday" {
		t.Errorf("replied = %+v", replied)
	}
}

func TestVersionConflict(t *testing.T) {
	e := newEngine(t)
	item := mustCreate(t, e, leaveDraft())
	if _, _, err := e.Transition(item.ID, request.OpRequestInfo, "?", item.Version); err != nil {
		t.Fatal(err)
	}
	_, _, err := e.Transition(item.ID, request.OpReject, "", item.Version)
	if !errors.Is(err, request.ErrVersionConflict) {
		t.Fatalf("err = %v, want ErrVersionConflict", err)
	}
	if _, err := e.Update(item.ID, leaveDraft(), item.Version); !errors.Is(err, request.ErrVersionConflict) {
		t.Errorf("Update err = %v, want ErrVersionConflict", err)
	}
}

func TestUpdateAndDeleteOnlyWhileEditable(t *testing.T) {
	e := newEngine(t)
	item := mustCreate(t, e, leaveDraft())

	d := leaveDraft()
	d.Reason = "Wedding"
	d.EndDate = "2026-03-04"
	updated, err := e.Update(item.ID, d, 0)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Reason != "Wedding" || updated.Status != model.StatusPending || updated.Version != 2 {
		t.Errorf("updated = %+v", updated)
	}

	if _, _, err := e.Transition(item.ID, request.OpApprove, "", 0); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Update(item.ID, d, 0); !errors.Is(err, request.ErrInvalidTransition) {
		t.Errorf("Update approved err = %v, want ErrInvalidTransition", err)
	}
	if _, err := e.Delete(item.ID, 0); !errors.Is(err, request.ErrInvalidTransition) {
		t.Errorf("Delete approved err = %v, want ErrInvalidTransition", err)
	}

	other := mustCreate(t, e, leaveDraft())
	if _, err := e.Delete(other.ID, 0); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := e.Get(other.ID); !errors.Is(err, request.ErrUnknownRequest) {
		t.Errorf("Get deleted err = %v, want ErrUnknownRequest", err)
	}
	if len(e.Items()) != 1 {
		t.Errorf("items = %d, want 1", len(e.Items()))
	}
}

func TestUnknownRequest(t *testing.T) {
	e := newEngine(t)
	if _, _, err := e.Transition("nope", request.OpApprove, "", 0); !errors.Is(err, request.ErrUnknownRequest) {
		t.Errorf("err = %v, want ErrUnknownRequest", err)
	}
}

func TestCheckDoesNotMutate(t *testing.T) {
	e := newEngine(t)
	item := mustCreate(t, e, shiftDraft())
	if _, _, err := e.Check(item.ID, request.OpFinalize, 0); !errors.Is(err, request.ErrInvalidTransition) {
		t.Fatalf("Check finalize pending err = %v", err)
	}
	if _, _, err := e.Transition(item.ID, request.OpManagerApprove, "", 0); err != nil {
		t.Fatal(err)
	}
	got, noop, err := e.Check(item.ID, request.OpFinalize, 0)
	if err != nil || noop {
		t.Fatalf("Check = noop %v, err %v", noop, err)
	}
	if after, _ := e.Get(item.ID); after.Status != model.StatusManagerApproved || after.Version != got.Version {
		t.Error("Check changed the request")
	}
}

func TestFindExternal(t *testing.T) {
	e := newEngine(t)
	item, _, err := e.Create(alex, leaveDraft(), request.CreateOptions{ExternalID: "evt-1"})
	if err != nil {
		t.Fatal(err)
	}
	got, ok := e.FindExternal("evt-1")
	if !ok || got.ID != item.ID {
		t.Errorf("FindExternal = %v %v", got.ID, ok)
	}
	if _, ok := e.FindExternal(""); ok {
		t.Error("empty external ID matched")
	}
}
