package app

import (
	"fmt"
	"math"
	"strings"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/audit"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/model"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/request"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/session"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/timecalc"
)

// CheckInInput describes a check-in.
type CheckInInput struct {
	Location    model.LocationType
	Coordinates *model.Coordinates
	// Override checks in despite a geo-fence violation and files a
	// location exception instead.
	Override bool
}

// CheckInResult reports the new record and any follow-up requests.
type CheckInResult struct {
	Record   model.AttendanceRecord
	Geofence *session.GeofenceResult
	Late     *session.Deviation
	Requests []model.RequestItem
}

// CheckOutInput describes a check-out.
type CheckOutInput struct {
	Segments []model.AttendanceSegment
	// Reason is required when leaving before the end of the shift.
	Reason string
}

// CheckOutResult reports the closed record.
type CheckOutResult struct {
	Record model.AttendanceRecord
	Early  *session.Deviation
}

// CheckIn opens a session for the current user.
func (a *App) CheckIn(in CheckInInput) (CheckInResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	user, err := a.actor()
	if err != nil {
		return CheckInResult{}, err
	}

	var res CheckInResult
	if fence, ok := a.policy.Geofences[in.Location]; ok && in.Coordinates != nil {
		g := fence.Evaluate(*in.Coordinates)
		res.Geofence = &g
		if !g.Inside && !in.Override {
			return CheckInResult{}, a.rejected("checkin", &session.GeofenceViolationError{Location: in.Location, Result: g})
		}
	}

	rec, err := a.sessions.CheckIn(user.ID, in.Location, in.Coordinates)
	if err != nil {
		return CheckInResult{}, a.rejected("checkin", err)
	}
	res.Record = rec
	actor := audit.ActorOf(user)
	a.audit.Append(actor, audit.ActionCheckIn, fmt.Sprintf("User checked in at %s", in.Location))

	if res.Geofence != nil && !res.Geofence.Inside {
		item := a.autoRequest(user, request.Draft{
			Type:      model.RequestLocationException,
			StartDate: rec.Date,
			Reason: fmt.Sprintf("Checked in %.0fm from the registered %s location (limit %.0fm)",
				res.Geofence.DistanceMeters, in.Location, res.Geofence.RadiusMeters),
			Details: model.LocationExceptionDetails{LocationType: in.Location, Duration: model.FullDay},
		})
		res.Requests = append(res.Requests, item...)
	}

	if user.Shift != nil {
		dev, late, err := session.CheckLate(*user.Shift, rec.CheckInTime, a.policy.GracePeriod)
		switch {
		case err != nil:
			a.log.Error().Err(err).Str("user", user.ID).Msg("cannot evaluate shift")
		case late:
			res.Late = &dev
			item := a.autoRequest(user, request.Draft{
				Type:      model.RequestLateCheckIn,
				StartDate: rec.Date,
				Reason: fmt.Sprintf("Checked in %s after the %s start",
					timecalc.FormatMinutes(int(math.Round(dev.Delta().Minutes()))), user.Shift.Name),
				Details: model.LateCheckInDetails{
					ExpectedTime: dev.Expected.Format("15:04"),
					ActualTime:   dev.Actual.Format("15:04"),
					Location:     in.Location,
					Coordinates:  in.Coordinates,
				},
			})
			res.Requests = append(res.Requests, item...)
		}
	}

	a.log.Info().Str("user", user.ID).Str("location", string(in.Location)).
		Int("requests", len(res.Requests)).Msg("checked in")
	return res, nil
}

// autoRequest files a request on the user's behalf. A failure is logged and
// does not undo the check-in.
func (a *App) autoRequest(user model.User, d request.Draft) []model.RequestItem {
	item, _, err := a.requests.Create(user, d, request.CreateOptions{})
	if err != nil {
		a.log.Error().Err(err).Str("user", user.ID).Str("type", string(d.Type)).Msg("cannot file request")
		return nil
	}
	a.audit.Append(audit.ActorOf(user), audit.ActionCreateRequest, fmt.Sprintf("Created %s request", item.Type))
	return []model.RequestItem{item}
}

// CheckOut closes the current user's open session.
func (a *App) CheckOut(in CheckOutInput) (CheckOutResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	user, err := a.actor()
	if err != nil {
		return CheckOutResult{}, err
	}
	now := a.clock.Now()
	open, ok := session.OpenSession(a.sessions.Records(), user.ID, now)
	if !ok {
		return CheckOutResult{}, a.rejected("checkout", session.ErrNoActiveSession)
	}

	var res CheckOutResult
	reason := strings.TrimSpace(in.Reason)
	if user.Shift != nil {
		dev, early, err := session.CheckEarlyExit(*user.Shift, open.CheckInTime, now)
		if err != nil {
			a.log.Error().Err(err).Str("user", user.ID).Msg("cannot evaluate shift")
		} else if early {
			if reason == "" {
				return CheckOutResult{}, a.rejected("checkout", fmt.Errorf("%w: shift ends at %s",
					session.ErrEarlyExitReasonRequired, dev.Expected.Format("15:04")))
			}
			res.Early = &dev
		}
	}

	rec, err := a.sessions.CheckOut(user.ID, in.Segments, session.CheckOutOptions{
		StrictSegments:  a.policy.StrictSegments,
		EarlyExitReason: reason,
	})
	if err != nil {
		return CheckOutResult{}, a.rejected("checkout", err)
	}
	res.Record = rec

	details := "User checked out"
	if res.Early != nil {
		details = fmt.Sprintf("User checked out early: %s", reason)
	}
	a.audit.Append(audit.ActorOf(user), audit.ActionCheckOut, details)
	a.log.Info().Str("user", user.ID).Int("segments", len(rec.Segments)).Msg("checked out")
	return res, nil
}

// Attendance returns every attendance record.
func (a *App) Attendance() []model.AttendanceRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sessions.Records()
}

// TodayRecords returns the current user's records for today.
func (a *App) TodayRecords() []model.AttendanceRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return session.DayRecords(a.sessions.Records(), a.currentID, timecalc.DayKey(a.clock.Now()))
}

// ActiveRecord returns the current user's open session, including one
// started the previous day.
func (a *App) ActiveRecord() (model.AttendanceRecord, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return session.OpenSession(a.sessions.Records(), a.currentID, a.clock.Now())
}

// IsCheckedIn reports whether the current user has an open session.
func (a *App) IsCheckedIn() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return session.IsCheckedIn(a.sessions.Records(), a.currentID, a.clock.Now())
}
