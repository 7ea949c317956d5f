package session

import (
	"errors"
	"time"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/model"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/timecalc"
)

// DefaultGracePeriod is how long after shift start a check-in still counts
// as on time.
const DefaultGracePeriod = 15 * time.Minute

// ErrEarlyExitReasonRequired is returned when a check-out before shift end
// carries no reason.
var ErrEarlyExitReasonRequired = errors.New("checking out before shift end requires a reason")

// DeviationKind names a departure from the assigned shift.
type DeviationKind string

const (
	LateCheckIn DeviationKind = "Late Check-In"
	EarlyExit   DeviationKind = "Early Exit"
)

// Deviation compares the expected shift boundary with the actual time.
type Deviation struct {
	Kind     DeviationKind
	Expected time.Time
	Actual   time.Time
}

// Delta returns how far Actual is from Expected.
func (d Deviation) Delta() time.Duration {
	if d.Actual.After(d.Expected) {
		return d.Actual.Sub(d.Expected)
	}
	return d.Expected.Sub(d.Actual)
}

// CheckLate reports a late check-in: one after shift start plus grace.
func CheckLate(shift model.ShiftConfig, checkIn time.Time, grace time.Duration) (Deviation, bool, error) {
	start, _, err := shiftWindowAt(shift, checkIn)
	if err != nil {
		return Deviation{}, false, err
	}
	if !checkIn.After(start.Add(grace)) {
		return Deviation{}, false, nil
	}
	return Deviation{Kind: LateCheckIn, Expected: start, Actual: checkIn}, true, nil
}

// CheckEarlyExit reports a check-out before the end of the shift the
// session started in.
func CheckEarlyExit(shift model.ShiftConfig, checkIn, checkOut time.Time) (Deviation, bool, error) {
	_, end, err := shiftWindowAt(shift, checkIn)
	if err != nil {
		return Deviation{}, false, err
	}
	if !checkOut.Before(end) {
		return Deviation{}, false, nil
	}
	return Deviation{Kind: EarlyExit, Expected: end, Actual: checkOut}, true, nil
}

// shiftWindowAt picks the shift occurrence t belongs to: the one that
// started the previous day if t still falls inside it, otherwise the one
// starting on t's own day.
func shiftWindowAt(shift model.ShiftConfig, t time.Time) (time.Time, time.Time, error) {
	day := timecalc.StartOfDay(t)
	prevStart, prevEnd, err := timecalc.ShiftWindow(day.AddDate(0, 0, -1), shift.StartTime, shift.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !t.Before(prevStart) && t.Before(prevEnd) {
		return prevStart, prevEnd, nil
	}
	return timecalc.ShiftWindow(day, shift.StartTime, shift.EndTime)
}
