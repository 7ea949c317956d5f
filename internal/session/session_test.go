package session_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/clock"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/model"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/session"
)

var nineAM = time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC)

func activeCount(records []model.AttendanceRecord, userID, day string) int {
	n := 0
	for _, r := range records {
		if r.UserID == userID && r.Date == day && r.Active() {
			n++
		}
	}
	return n
}

func TestCheckInThenCheckOut(t *testing.T) {
	c := clock.Fake(nineAM)
	m := session.NewManager(c, nil)

	rec, err := m.CheckIn("u1", model.LocationOffice, &model.Coordinates{Lat: 40.71, Lng: -74.00})
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if rec.Status != model.AttendancePresent || rec.Date != "2026-02-27" || !rec.Active() {
		t.Errorf("record = %+v, want open Present record for 2026-02-27", rec)
	}
	if !session.IsCheckedIn(m.Records(), "u1", c.Now()) {
		t.Error("IsCheckedIn = false after check-in")
	}

	c.Advance(8 * time.Hour)
	out, err := m.CheckOut("u1", []model.AttendanceSegment{{LocationType: model.LocationOffice, DurationMinutes: 480}},
		session.CheckOutOptions{StrictSegments: true})
	if err != nil {
		t.Fatalf("CheckOut: %v", err)
	}
	if out.CheckOutTime == nil || !out.CheckOutTime.Equal(c.Now()) {
		t.Errorf("CheckOutTime = %v, want %v", out.CheckOutTime, c.Now())
	}
	if len(out.Segments) != 1 || out.Segments[0].ID == "" {
		t.Errorf("segments = %+v, want one segment with generated ID", out.Segments)
	}
	if session.IsCheckedIn(m.Records(), "u1", c.Now()) {
		t.Error("IsCheckedIn = true after check-out")
	}
	if out.CheckInTime != rec.CheckInTime || out.LocationType != rec.LocationType {
		t.Error("check-out changed check-in fields")
	}
}

func TestCheckInHomeIsWFH(t *testing.T) {
	m := session.NewManager(clock.Fake(nineAM), nil)
	rec, err := m.CheckIn("u1", model.LocationHome, nil)
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if rec.Status != model.AttendanceWFH {
		t.Errorf("Status = %q, want %q", rec.Status, model.AttendanceWFH)
	}
}

func TestCheckInTwiceKeepsOneActive(t *testing.T) {
	c := clock.Fake(nineAM)
	m := session.NewManager(c, nil)
	if _, err := m.CheckIn("u1", model.LocationOffice, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := m.CheckIn("u1", model.LocationHome, nil); !errors.Is(err, session.ErrAlreadyCheckedIn) {
		t.Fatalf("second CheckIn err = %v, want ErrAlreadyCheckedIn", err)
	}
	if n := activeCount(m.Records(), "u1", "2026-02-27"); n != 1 {
		t.Errorf("active records = %d, want 1", n)
	}

	// A closed session allows a new one on the same day.
	c.Advance(time.Hour)
	if _, err := m.CheckOut("u1", nil, session.CheckOutOptions{}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.CheckIn("u1", model.LocationHome, nil); err != nil {
		t.Fatalf("CheckIn after CheckOut: %v", err)
	}
	if len(m.Records()) != 2 {
		t.Errorf("records = %d, want 2", len(m.Records()))
	}
}

func TestCheckOutWithoutSession(t *testing.T) {
	m := session.NewManager(clock.Fake(nineAM), nil)
	before := m.Records()
	_, err := m.CheckOut("u1", nil, session.CheckOutOptions{})
	if !errors.Is(err, session.ErrNoActiveSession) {
		t.Fatalf("err = %v, want ErrNoActiveSession", err)
	}
	if len(m.Records()) != len(before) {
		t.Error("CheckOut without session changed records")
	}
}

func TestCheckOutOvernight(t *testing.T) {
	c := clock.Fake(time.Date(2026, 2, 27, 22, 0, 0, 0, time.UTC))
	m := session.NewManager(c, nil)
	if _, err := m.CheckIn("u1", model.LocationOffice, nil); err != nil {
		t.Fatal(err)
	}
	c.Advance(9 * time.Hour)
	if _, ok := session.ActiveRecord(m.Records(), "u1", "2026-02-28"); ok {
		t.Error("ActiveRecord found a session on the new day")
	}
	if !session.IsCheckedIn(m.Records(), "u1", c.Now()) {
		t.Error("IsCheckedIn = false for overnight session")
	}
	if _, err := m.CheckOut("u1", nil, session.CheckOutOptions{}); err != nil {
		t.Fatalf("CheckOut overnight: %v", err)
	}
}

func TestCheckInAfterMidnightWithOvernightSession(t *testing.T) {
	c := clock.Fake(time.Date(2026, 2, 27, 22, 0, 0, 0, time.UTC))
	m := session.NewManager(c, nil)
	night, err := m.CheckIn("u1", model.LocationOffice, nil)
	if err != nil {
		t.Fatal(err)
	}
	c.Advance(3 * time.Hour)

	if _, err := m.CheckIn("u1", model.LocationOffice, nil); !errors.Is(err, session.ErrAlreadyCheckedIn) {
		t.Fatalf("err = %v, want ErrAlreadyCheckedIn", err)
	}
	if len(m.Records()) != 1 {
		t.Fatalf("records = %d, want 1", len(m.Records()))
	}
	closed, err := m.CheckOut("u1", nil, session.CheckOutOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if closed.ID != night.ID {
		t.Errorf("closed %s, want overnight session %s", closed.ID, night.ID)
	}
}

func TestValidateSegments(t *testing.T) {
	span := 4 * time.Hour
	tests := []struct {
		name    string
		segs    []model.AttendanceSegment
		strict  bool
		wantErr bool
	}{
		{"empty", nil, true, false},
		{"fits", []model.AttendanceSegment{{LocationType: model.LocationOffice, DurationMinutes: 120}, {LocationType: model.LocationHome, DurationMinutes: 120}}, true, false},
		{"one minute slack", []model.AttendanceSegment{{LocationType: model.LocationOffice, DurationMinutes: 241}}, true, false},
		{"too long strict", []model.AttendanceSegment{{LocationType: model.LocationOffice, DurationMinutes: 480}}, true, true},
		{"too long advisory", []model.AttendanceSegment{{LocationType: model.LocationOffice, DurationMinutes: 480}}, false, false},
		{"zero duration", []model.AttendanceSegment{{LocationType: model.LocationOffice}}, false, true},
		{"no location", []model.AttendanceSegment{{DurationMinutes: 10}}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := session.ValidateSegments(tt.segs, span, tt.strict)
			if tt.wantErr != (err != nil) {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, session.ErrInvalidSegments) {
				t.Errorf("err = %v, want ErrInvalidSegments", err)
			}
		})
	}
}

func TestCheckOutRejectsOversizedSegments(t *testing.T) {
	c := clock.Fake(nineAM)
	m := session.NewManager(c, nil)
	if _, err := m.CheckIn("u1", model.LocationOffice, nil); err != nil {
		t.Fatal(err)
	}
	c.Advance(time.Hour)
	_, err := m.CheckOut("u1", []model.AttendanceSegment{{LocationType: model.LocationOffice, DurationMinutes: 480}},
		session.CheckOutOptions{StrictSegments: true})
	if !errors.Is(err, session.ErrInvalidSegments) {
		t.Fatalf("err = %v, want ErrInvalidSegments", err)
	}
	if !session.IsCheckedIn(m.Records(), "u1", c.Now()) {
		t.Error("failed check-out closed the session")
	}
}

func TestDistanceMeters(t *testing.T) {
	office := model.Coordinates{Lat: 40.7128, Lng: -74.0060}
	if d := session.DistanceMeters(office, office); d != 0 {
		t.Errorf("distance to self = %f, want 0", d)
	}
	// One degree of latitude is about 111.19 km on a 6371 km sphere.
	d := session.DistanceMeters(model.Coordinates{Lat: 0, Lng: 0}, model.Coordinates{Lat: 1, Lng: 0})
	if math.Abs(d-111195) > 1 {
		t.Errorf("one degree = %f m, want ~111195", d)
	}
}

func TestGeofenceEvaluate(t *testing.T) {
	fence := session.Geofence{Target: model.Coordinates{Lat: 40.7128, Lng: -74.0060}}
	near := fence.Evaluate(model.Coordinates{Lat: 40.7130, Lng: -74.0060})
	if !near.Inside || near.RadiusMeters != session.DefaultRadiusMeters {
		t.Errorf("near = %+v, want inside default radius", near)
	}
	far := fence.Evaluate(model.Coordinates{Lat: 40.7200, Lng: -74.0060})
	if far.Inside || far.DistanceMeters < 700 {
		t.Errorf("far = %+v, want outside at ~800m", far)
	}
}

func TestCheckLate(t *testing.T) {
	shift := model.ShiftConfig{Name: "General Shift A", StartTime: "09:00", EndTime: "18:00"}
	tests := []struct {
		name     string
		checkIn  time.Time
		wantLate bool
	}{
		{"early", nineAM.Add(-30 * time.Minute), false},
		{"within grace", nineAM.Add(15 * time.Minute), false},
		{"late", nineAM.Add(16 * time.Minute), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, late, err := session.CheckLate(shift, tt.checkIn, session.DefaultGracePeriod)
			if err != nil {
				t.Fatal(err)
			}
			if late != tt.wantLate {
				t.Fatalf("late = %v, want %v", late, tt.wantLate)
			}
			if late && (!dev.Expected.Equal(nineAM) || dev.Kind != session.LateCheckIn) {
				t.Errorf("deviation = %+v", dev)
			}
		})
	}
}

func TestCheckEarlyExitNightShift(t *testing.T) {
	night := model.ShiftConfig{Name: "Night Shift", StartTime: "22:00", EndTime: "07:00"}
	checkIn := time.Date(2026, 2, 27, 22, 5, 0, 0, time.UTC)

	dev, early, err := session.CheckEarlyExit(night, checkIn, time.Date(2026, 2, 28, 6, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if !early {
		t.Fatal("06:00 exit from a shift ending 07:00 not flagged")
	}
	if want := time.Date(2026, 2, 28, 7, 0, 0, 0, time.UTC); !dev.Expected.Equal(want) {
		t.Errorf("Expected = %v, want %v", dev.Expected, want)
	}
	if dev.Delta() != time.Hour {
		t.Errorf("Delta = %v, want 1h", dev.Delta())
	}

	if _, early, _ := session.CheckEarlyExit(night, checkIn, time.Date(2026, 2, 28, 7, 0, 0, 0, time.UTC)); early {
		t.Error("exit at shift end flagged as early")
	}
}

func TestCheckLateAfterMidnightOnNightShift(t *testing.T) {
	night := model.ShiftConfig{Name: "Night Shift", StartTime: "22:00", EndTime: "07:00"}
	dev, late, err := session.CheckLate(night, time.Date(2026, 2, 28, 0, 30, 0, 0, time.UTC), session.DefaultGracePeriod)
	if err != nil {
		t.Fatal(err)
	}
	if !late {
		t.Fatal("00:30 check-in for a 22:00 shift not flagged late")
	}
	if want := time.Date(2026, 2, 27, 22, 0, 0, 0, time.UTC); !dev.Expected.Equal(want) {
		t.Errorf("Expected = %v, want %v", dev.Expected, want)
	}
}
