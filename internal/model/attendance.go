package model

import (
	"fmt"
	"time"
)

// LocationType is where a user works from.
type LocationType string

const (
	LocationOffice       LocationType = "Office"
	LocationHome         LocationType = "Home"
	LocationCustomerSite LocationType = "Customer Site"
	LocationOther        LocationType = "Other"
)

// ParseLocationType accepts a location label or a CLI spelling ("wfh", "site").
func ParseLocationType(s string) (LocationType, error) {
	switch normalize(s) {
	case "office":
		return LocationOffice, nil
	case "home", "wfh":
		return LocationHome, nil
	case "customersite", "site", "customer", "client":
		return LocationCustomerSite, nil
	case "other":
		return LocationOther, nil
	}
	return "", fmt.Errorf("unknown location type %q", s)
}

// AttendanceStatus is the status derived for an attendance record.
type AttendanceStatus string

const (
	AttendancePresent    AttendanceStatus = "Present"
	AttendanceAbsent     AttendanceStatus = "Absent"
	AttendanceLate       AttendanceStatus = "Late"
	AttendanceOnLeave    AttendanceStatus = "On Leave"
	AttendanceWFH        AttendanceStatus = "Work From Home"
	AttendanceCheckedOut AttendanceStatus = "Checked Out"
)

// StatusForLocation derives the check-in status: WFH at home, Present elsewhere.
func StatusForLocation(loc LocationType) AttendanceStatus {
	if loc == LocationHome {
		return AttendanceWFH
	}
	return AttendancePresent
}

// Coordinates is a WGS84 position in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// AttendanceSegment attributes part of a closed session to one location.
type AttendanceSegment struct {
	ID              string       `json:"id" yaml:"id"`
	LocationType    LocationType `json:"locationType" yaml:"locationType"`
	DurationMinutes int          `json:"durationMinutes" yaml:"durationMinutes"`
	Notes           string       `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// AttendanceRecord is one check-in event and, once closed, its check-out.
type AttendanceRecord struct {
	ID              string              `json:"id" yaml:"id"`
	UserID          string              `json:"userId" yaml:"userId"`
	Date            string              `json:"date" yaml:"date"`
	CheckInTime     time.Time           `json:"checkInTime" yaml:"checkInTime"`
	CheckOutTime    *time.Time          `json:"checkOutTime,omitempty" yaml:"checkOutTime,omitempty"`
	LocationType    LocationType        `json:"locationType" yaml:"locationType"`
	Status          AttendanceStatus    `json:"status" yaml:"status"`
	Coordinates     *Coordinates        `json:"coordinates,omitempty" yaml:"coordinates,omitempty"`
	Segments        []AttendanceSegment `json:"segments" yaml:"segments"`
	EarlyExitReason string              `json:"earlyExitReason,omitempty" yaml:"earlyExitReason,omitempty"`
}

// Active reports whether the record is an open session.
func (r AttendanceRecord) Active() bool {
	return r.CheckOutTime == nil
}

// SegmentMinutes sums the durations of all segments.
func (r AttendanceRecord) SegmentMinutes() int {
	total := 0
	for _, s := range r.Segments {
		total += s.DurationMinutes
	}
	return total
}

// TeamStats summarises a team's attendance for one day.
type TeamStats struct {
	Total   int `json:"total"`
	Present int `json:"present"`
	WFH     int `json:"wfh"`
	Leave   int `json:"leave"`
	Absent  int `json:"absent"`
}
