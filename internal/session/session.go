// Package session tracks attendance sessions: check-in, check-out, the
// active-session query and the location segments of closed sessions.
package session

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/clock"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/model"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/timecalc"
)

var (
	// ErrNoActiveSession is returned by CheckOut when the user has no open session.
	ErrNoActiveSession = errors.New("no active session")
	// ErrAlreadyCheckedIn is returned by CheckIn when the user already has an
	// open session for the day.
	ErrAlreadyCheckedIn = errors.New("already checked in")
	// ErrInvalidSegments is returned when check-out segments are malformed
	// or exceed the session span.
	ErrInvalidSegments = errors.New("invalid attendance segments")
	// ErrInvalidLocation is returned for an empty location type.
	ErrInvalidLocation = errors.New("invalid location type")
)

// CheckOutOptions tunes a check-out.
type CheckOutOptions struct {
	// StrictSegments rejects segments whose total exceeds the session span.
	StrictSegments bool
	// EarlyExitReason is stored on the record when set.
	EarlyExitReason string
}

// Manager owns the attendance records. Every mutation replaces the record
// slice, so slices returned by Records stay valid. It is not safe for
// concurrent use; the owner serializes access.
type Manager struct {
	clock   clock.Clock
	records []model.AttendanceRecord
}

// NewManager returns a Manager preloaded with seed records.
func NewManager(c clock.Clock, seed []model.AttendanceRecord) *Manager {
	records := make([]model.AttendanceRecord, len(seed))
	copy(records, seed)
	return &Manager{clock: c, records: records}
}

// Records returns all attendance records in creation order.
func (m *Manager) Records() []model.AttendanceRecord {
	return m.records
}

// CheckIn opens a session for userID at the current time. A session still
// open from the previous day blocks it like one opened today.
func (m *Manager) CheckIn(userID string, loc model.LocationType, coords *model.Coordinates) (model.AttendanceRecord, error) {
	if loc == "" {
		return model.AttendanceRecord{}, ErrInvalidLocation
	}
	now := m.clock.Now()
	day := timecalc.DayKey(now)
	if idx := openSessionIndex(m.records, userID, now); idx >= 0 {
		active := m.records[idx]
		return model.AttendanceRecord{}, fmt.Errorf("%w: session %s open since %s",
			ErrAlreadyCheckedIn, active.ID, active.CheckInTime.Format("2006-01-02 15:04"))
	}

	rec := model.AttendanceRecord{
		ID:           timecalc.GenerateID(now),
		UserID:       userID,
		Date:         day,
		CheckInTime:  now,
		LocationType: loc,
		Status:       model.StatusForLocation(loc),
		Segments:     []model.AttendanceSegment{},
	}
	if coords != nil {
		c := *coords
		rec.Coordinates = &c
	}

	next := make([]model.AttendanceRecord, 0, len(m.records)+1)
	next = append(next, m.records...)
	m.records = append(next, rec)
	return rec, nil
}

// CheckOut closes the user's open session, attaching segments. It fails
// with ErrNoActiveSession and leaves state untouched when there is none.
func (m *Manager) CheckOut(userID string, segments []model.AttendanceSegment, opts CheckOutOptions) (model.AttendanceRecord, error) {
	now := m.clock.Now()
	idx := openSessionIndex(m.records, userID, now)
	if idx < 0 {
		return model.AttendanceRecord{}, ErrNoActiveSession
	}
	rec := m.records[idx]

	if err := ValidateSegments(segments, now.Sub(rec.CheckInTime), opts.StrictSegments); err != nil {
		return model.AttendanceRecord{}, err
	}

	segs := make([]model.AttendanceSegment, len(segments))
	copy(segs, segments)
	for i := range segs {
		if segs[i].ID == "" {
			segs[i].ID = timecalc.GenerateID(now)
		}
	}

	out := now
	rec.CheckOutTime = &out
	rec.Segments = segs
	rec.EarlyExitReason = opts.EarlyExitReason

	next := make([]model.AttendanceRecord, len(m.records))
	copy(next, m.records)
	next[idx] = rec
	m.records = next
	return rec, nil
}

// ValidateSegments checks that every segment has a location and a positive
// duration. With strict set, the total may not exceed span rounded up to
// whole minutes plus one minute of slack.
func ValidateSegments(segments []model.AttendanceSegment, span time.Duration, strict bool) error {
	total := 0
	for i, s := range segments {
		if s.LocationType == "" {
			return fmt.Errorf("%w: segment %d has no location", ErrInvalidSegments, i+1)
		}
		if s.DurationMinutes <= 0 {
			return fmt.Errorf("%w: segment %d has duration %d, want > 0", ErrInvalidSegments, i+1, s.DurationMinutes)
		}
		total += s.DurationMinutes
	}
	if !strict {
		return nil
	}
	limit := int(math.Ceil(span.Minutes())) + 1
	if total > limit {
		return fmt.Errorf("%w: segments total %s but the session lasted %s",
			ErrInvalidSegments, timecalc.FormatMinutes(total), timecalc.FormatDuration(int64(span.Seconds())))
	}
	return nil
}
