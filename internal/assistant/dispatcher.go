package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/app"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/model"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/session"
)

// Apology is shown when the delegate fails.
const Apology = "I'm having trouble connecting to the AI service right now. Please try again."

// DeviceCoordinates stands in for the device position on assistant
// check-ins.
var DeviceCoordinates = model.Coordinates{Lat: 40.7128, Lng: -74.0060}

// Attendance is the part of the App the dispatcher drives.
type Attendance interface {
	Now() time.Time
	CurrentUser() (model.User, error)
	ActiveRecord() (model.AttendanceRecord, bool)
	CheckIn(app.CheckInInput) (app.CheckInResult, error)
	CheckOut(app.CheckOutInput) (app.CheckOutResult, error)
	PresentDays(userID string, month time.Time) int
}

// Dispatcher runs a conversation: it forwards input to the delegate and
// executes the returned function calls. It is not safe for concurrent use.
type Dispatcher struct {
	delegate Delegate
	att      Attendance
	log      zerolog.Logger
	history  []Message
}

// NewDispatcher returns a Dispatcher with an empty history.
func NewDispatcher(d Delegate, att Attendance, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{delegate: d, att: att, log: log}
}

// History returns the conversation so far.
func (d *Dispatcher) History() []Message {
	return d.history
}

// Handle answers one user message. Delegate failures yield Apology and
// trigger no action.
func (d *Dispatcher) Handle(ctx context.Context, input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}

	reply, err := d.delegate.Send(ctx, input, d.history)
	if err != nil {
		d.log.Error().Err(err).Msg("assistant delegate failed")
		d.remember(input, Apology)
		return Apology
	}

	text := reply.Text
	if reply.Call != nil {
		result := d.execute(*reply.Call)
		if text == "" {
			text = result
		} else {
			text += "\n" + result
		}
	}
	if text == "" {
		text = "I've completed that request."
	}
	d.remember(input, text)
	return text
}

func (d *Dispatcher) remember(input, answer string) {
	d.history = append(d.history, Message{Role: RoleUser, Text: input}, Message{Role: RoleModel, Text: answer})
}

func (d *Dispatcher) execute(call FunctionCall) string {
	d.log.Debug().Str("function", call.Name).Interface("args", call.Args).Msg("executing function call")

	switch call.Name {
	case FuncCheckIn:
		loc := model.LocationOffice
		if strings.Contains(strings.ToLower(call.Args["locationType"]), "home") {
			loc = model.LocationHome
		}
		coords := DeviceCoordinates
		res, err := d.att.CheckIn(app.CheckInInput{Location: loc, Coordinates: &coords})
		if err != nil {
			return fmt.Sprintf("Could not check you in: %v", err)
		}
		msg := fmt.Sprintf("Successfully checked in at %s.", loc)
		for _, r := range res.Requests {
			msg += fmt.Sprintf(" A %s request was filed for you.", r.Type)
		}
		return msg

	case FuncCheckOut:
		notes := strings.TrimSpace(call.Args["notes"])
		segmentNotes := notes
		if segmentNotes == "" {
			segmentNotes = "Checked out via AI Assistant"
		}
		var segments []model.AttendanceSegment
		if rec, ok := d.att.ActiveRecord(); ok {
			minutes := max(1, int(d.att.Now().Sub(rec.CheckInTime).Minutes()))
			segments = append(segments, model.AttendanceSegment{
				LocationType:    rec.LocationType,
				DurationMinutes: minutes,
				Notes:           segmentNotes,
			})
		}
		// Only the user's own words count as an early-exit reason.
		_, err := d.att.CheckOut(app.CheckOutInput{Segments: segments, Reason: notes})
		switch {
		case errors.Is(err, session.ErrEarlyExitReasonRequired):
			return "Your shift has not ended yet. Tell me why you are leaving early, e.g. \"check out: doctor appointment\"."
		case err != nil:
			return fmt.Sprintf("Could not check you out: %v", err)
		}
		return "Successfully checked out."

	case FuncGetStatus:
		u, err := d.att.CurrentUser()
		if err != nil {
			return fmt.Sprintf("Could not read your status: %v", err)
		}
		return fmt.Sprintf("You have been present for %d days this month.", d.att.PresentDays(u.ID, d.att.Now()))
	}
	return fmt.Sprintf("I cannot perform %q.", call.Name)
}
