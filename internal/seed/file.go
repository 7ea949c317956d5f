package seed

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/model"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/timecalc"
)

// fileDoc is the YAML layout of a seed file. Dates are either YYYY-MM-DD or
// relative to the load time: "today", "today+3", "today-2".
type fileDoc struct {
	Users      []model.User        `yaml:"users"`
	Attendance []attendanceDoc     `yaml:"attendance"`
	Requests   []model.RequestItem `yaml:"requests"`
	AuditLogs  []auditDoc          `yaml:"auditLogs"`
}

type attendanceDoc struct {
	ID              string                    `yaml:"id"`
	UserID          string                    `yaml:"userId"`
	Date            string                    `yaml:"date"`
	CheckIn         string                    `yaml:"checkIn"`
	CheckOut        string                    `yaml:"checkOut"`
	LocationType    model.LocationType        `yaml:"locationType"`
	Status          model.AttendanceStatus    `yaml:"status"`
	Coordinates     *model.Coordinates        `yaml:"coordinates"`
	Segments        []model.AttendanceSegment `yaml:"segments"`
	EarlyExitReason string                    `yaml:"earlyExitReason"`
}

type auditDoc struct {
	ID          string     `yaml:"id"`
	At          string     `yaml:"at"`
	Action      string     `yaml:"action"`
	Details     string     `yaml:"details"`
	PerformedBy string     `yaml:"performedBy"`
	Role        model.Role `yaml:"role"`
}

// LoadFile reads a YAML seed file, resolving relative dates against now.
func LoadFile(path string, now time.Time) (Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Data{}, fmt.Errorf("reading seed file: %w", err)
	}
	return Parse(raw, now)
}

// Parse decodes a YAML seed document.
func Parse(raw []byte, now time.Time) (Data, error) {
	var doc fileDoc
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return Data{}, fmt.Errorf("parsing seed file: %w", err)
	}

	today := timecalc.StartOfDay(now)
	data := Data{Users: doc.Users}

	for _, a := range doc.Attendance {
		rec, err := a.record(today)
		if err != nil {
			return Data{}, fmt.Errorf("attendance %s: %w", a.ID, err)
		}
		data.Attendance = append(data.Attendance, rec)
	}

	for _, r := range doc.Requests {
		for _, field := range []*string{&r.StartDate, &r.EndDate, &r.AppliedOn} {
			if *field == "" {
				continue
			}
			d, err := resolveDay(*field, today)
			if err != nil {
				return Data{}, fmt.Errorf("request %s: %w", r.ID, err)
			}
			*field = timecalc.DayKey(d)
		}
		if r.AppliedOn == "" {
			r.AppliedOn = timecalc.DayKey(today)
		}
		if r.Status == "" {
			r.Status = model.StatusPending
		}
		data.Requests = append(data.Requests, r)
	}

	for _, l := range doc.AuditLogs {
		ts, err := resolveMoment(l.At, today)
		if err != nil {
			return Data{}, fmt.Errorf("audit log %s: %w", l.ID, err)
		}
		data.AuditLogs = append(data.AuditLogs, model.AuditLog{
			ID: l.ID, Timestamp: ts, Action: l.Action, Details: l.Details,
			PerformedBy: l.PerformedBy, Role: l.Role,
		})
	}
	return data, nil
}

func (a attendanceDoc) record(today time.Time) (model.AttendanceRecord, error) {
	day, err := resolveDay(a.Date, today)
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	if a.CheckIn == "" {
		return model.AttendanceRecord{}, fmt.Errorf("checkIn is required")
	}
	in, err := timecalc.At(day, a.CheckIn)
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	rec := model.AttendanceRecord{
		ID:              a.ID,
		UserID:          a.UserID,
		Date:            timecalc.DayKey(day),
		CheckInTime:     in,
		LocationType:    a.LocationType,
		Status:          a.Status,
		Coordinates:     a.Coordinates,
		Segments:        a.Segments,
		EarlyExitReason: a.EarlyExitReason,
	}
	if rec.Status == "" {
		rec.Status = model.StatusForLocation(a.LocationType)
	}
	if rec.Segments == nil {
		rec.Segments = []model.AttendanceSegment{}
	}
	if a.CheckOut != "" {
		_, out, err := timecalc.ShiftWindow(day, a.CheckIn, a.CheckOut)
		if err != nil {
			return model.AttendanceRecord{}, err
		}
		rec.CheckOutTime = &out
	}
	return rec, nil
}

// resolveDay turns "today", "today+N", "today-N" or YYYY-MM-DD into a day.
func resolveDay(s string, today time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	rest, ok := strings.CutPrefix(s, "today")
	if !ok {
		return timecalc.ParseDay(s, today.Location())
	}
	if rest == "" {
		return today, nil
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid relative date %q", s)
	}
	return today.AddDate(0, 0, n), nil
}

// resolveMoment accepts a day optionally followed by " HH:MM".
func resolveMoment(s string, today time.Time) (time.Time, error) {
	dayPart, clockPart, hasClock := strings.Cut(strings.TrimSpace(s), " ")
	day, err := resolveDay(dayPart, today)
	if err != nil {
		return time.Time{}, err
	}
	if !hasClock {
		return day, nil
	}
	return timecalc.At(day, clockPart)
}
