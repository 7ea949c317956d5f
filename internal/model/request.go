package model

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/timecalc"
)

// RequestType identifies the kind of approval request.
type RequestType string

const (
	RequestLeave             RequestType = "Leave"
	RequestRegularization    RequestType = "Regularization"
	RequestPermission        RequestType = "Permission"
	RequestLocationException RequestType = "Location Exception"
	RequestShiftChange       RequestType = "Shift Change"
	RequestLateCheckIn       RequestType = "Late Check-In"
)

// RequestTypes lists every request type in display order.
var RequestTypes = []RequestType{
	RequestLeave,
	RequestRegularization,
	RequestPermission,
	RequestLocationException,
	RequestShiftChange,
	RequestLateCheckIn,
}

// ParseRequestType accepts a type label or a CLI spelling ("shift-change", "late").
func ParseRequestType(s string) (RequestType, error) {
	switch normalize(s) {
	case "leave":
		return RequestLeave, nil
	case "regularization", "regularisation", "reg":
		return RequestRegularization, nil
	case "permission", "perm":
		return RequestPermission, nil
	case "locationexception", "location", "exception":
		return RequestLocationException, nil
	case "shiftchange", "shift":
		return RequestShiftChange, nil
	case "latecheckin", "late":
		return RequestLateCheckIn, nil
	}
	return "", fmt.Errorf("unknown request type %q", s)
}

// RequestStatus is the lifecycle state of a request.
type RequestStatus string

const (
	StatusPending         RequestStatus = "Pending"
	StatusApproved        RequestStatus = "Approved"
	StatusRejected        RequestStatus = "Rejected"
	StatusInfoRequested   RequestStatus = "Info Requested"
	StatusManagerApproved RequestStatus = "Manager Approved"
)

// Terminal reports whether no further transition may leave s.
func (s RequestStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Editable reports whether the owner may still edit or delete the request.
func (s RequestStatus) Editable() bool {
	return s == StatusPending || s == StatusInfoRequested
}

// FullDay is the default duration of leave and location exceptions.
const FullDay = "Full Day"

// ErrDetailsMismatch is returned when a detail payload does not match the
// request type, or a type that needs details has none.
var ErrDetailsMismatch = errors.New("request details do not match request type")

// RequestDetails is the type-specific payload of a request. The concrete
// types below are the only implementations.
type RequestDetails interface {
	RequestType() RequestType
	isRequestDetails()
}

// LeaveDetails describes a leave request.
type LeaveDetails struct {
	Duration string `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// RegularizationDetails corrects the times of a past attendance day.
type RegularizationDetails struct {
	CheckInTime  string       `json:"checkInTime" yaml:"checkInTime"`
	CheckOutTime string       `json:"checkOutTime" yaml:"checkOutTime"`
	Location     LocationType `json:"location" yaml:"location"`
}

// PermissionDetails asks for a short absence within a working day.
type PermissionDetails struct {
	StartTime string `json:"startTime" yaml:"startTime"`
	EndTime   string `json:"endTime" yaml:"endTime"`
}

// LocationExceptionDetails asks to work from a non-standard location.
type LocationExceptionDetails struct {
	LocationType LocationType `json:"locationType" yaml:"locationType"`
	Duration     string       `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// ShiftChangeDetails asks for a different working-hours contract.
type ShiftChangeDetails struct {
	RequestedShift ShiftConfig `json:"requestedShift" yaml:"requestedShift"`
}

// LateCheckInDetails documents a check-in after the shift's grace window.
type LateCheckInDetails struct {
	ExpectedTime string       `json:"expectedTime" yaml:"expectedTime"`
	ActualTime   string       `json:"actualTime" yaml:"actualTime"`
	Location     LocationType `json:"location" yaml:"location"`
	Coordinates  *Coordinates `json:"coordinates,omitempty" yaml:"coordinates,omitempty"`
}

func (LeaveDetails) RequestType() RequestType             { return RequestLeave }
func (RegularizationDetails) RequestType() RequestType    { return RequestRegularization }
func (PermissionDetails) RequestType() RequestType        { return RequestPermission }
func (LocationExceptionDetails) RequestType() RequestType { return RequestLocationException }
func (ShiftChangeDetails) RequestType() RequestType       { return RequestShiftChange }
func (LateCheckInDetails) RequestType() RequestType       { return RequestLateCheckIn }

func (LeaveDetails) isRequestDetails()             {}
func (RegularizationDetails) isRequestDetails()    {}
func (PermissionDetails) isRequestDetails()        {}
func (LocationExceptionDetails) isRequestDetails() {}
func (ShiftChangeDetails) isRequestDetails()       {}
func (LateCheckInDetails) isRequestDetails()       {}

// CheckDetails validates d against t and returns the payload to store.
// Leave requests without details get a full-day payload; every other type
// must carry details of its own kind with every clock field in HH:MM form.
func CheckDetails(t RequestType, d RequestDetails) (RequestDetails, error) {
	if d == nil {
		if t == RequestLeave {
			return LeaveDetails{Duration: FullDay}, nil
		}
		return nil, fmt.Errorf("%w: %s request needs details", ErrDetailsMismatch, t)
	}
	if d.RequestType() != t {
		return nil, fmt.Errorf("%w: %s details on a %s request", ErrDetailsMismatch, d.RequestType(), t)
	}

	var err error
	switch v := d.(type) {
	case LeaveDetails:
		if v.Duration == "" {
			v.Duration = FullDay
		}
		d = v
	case RegularizationDetails:
		err = errors.Join(checkClock("check-in time", v.CheckInTime), checkClock("check-out time", v.CheckOutTime),
			checkLocation(v.Location))
	case PermissionDetails:
		err = errors.Join(checkClock("start time", v.StartTime), checkClock("end time", v.EndTime))
		if err == nil && clockMinutes(v.EndTime) <= clockMinutes(v.StartTime) {
			err = fmt.Errorf("end time %s is not after start time %s", v.EndTime, v.StartTime)
		}
	case LocationExceptionDetails:
		if v.Duration == "" {
			v.Duration = FullDay
		}
		d = v
		err = checkLocation(v.LocationType)
	case ShiftChangeDetails:
		err = errors.Join(checkClock("shift start", v.RequestedShift.StartTime), checkClock("shift end", v.RequestedShift.EndTime))
	case LateCheckInDetails:
		err = errors.Join(checkClock("expected time", v.ExpectedTime), checkClock("actual time", v.ActualTime),
			checkLocation(v.Location))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDetailsMismatch, err)
	}
	return d, nil
}

func checkClock(field, value string) error {
	if _, _, err := timecalc.ParseClock(value); err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	return nil
}

func clockMinutes(value string) int {
	h, m, _ := timecalc.ParseClock(value)
	return h*60 + m
}

func checkLocation(loc LocationType) error {
	if _, err := ParseLocationType(string(loc)); err != nil {
		return err
	}
	return nil
}

// RequestItem is an approval request raised by a user.
type RequestItem struct {
	ID               string
	UserID           string
	UserName         string
	Type             RequestType
	Status           RequestStatus
	StartDate        string
	EndDate          string
	Reason           string
	AppliedOn        string
	ManagerNotes     string
	EmployeeResponse string
	Details          RequestDetails
	// Version starts at 1 and grows with every change.
	Version int
	// ExternalID links the request to an imported calendar event.
	ExternalID string
}

// ShiftChange returns the shift-change payload, if any.
func (r RequestItem) ShiftChange() (ShiftChangeDetails, bool) {
	d, ok := r.Details.(ShiftChangeDetails)
	return d, ok
}

// requestDoc is the serialized form of a RequestItem: one optional field
// per detail variant, at most one of them set.
type requestDoc struct {
	ID                       string                    `json:"id" yaml:"id"`
	UserID                   string                    `json:"userId" yaml:"userId"`
	UserName                 string                    `json:"userName" yaml:"userName"`
	Type                     RequestType               `json:"type" yaml:"type"`
	Status                   RequestStatus             `json:"status" yaml:"status"`
	StartDate                string                    `json:"startDate" yaml:"startDate"`
	EndDate                  string                    `json:"endDate,omitempty" yaml:"endDate,omitempty"`
	Reason                   string                    `json:"reason" yaml:"reason"`
	AppliedOn                string                    `json:"appliedOn" yaml:"appliedOn"`
	ManagerNotes             string                    `json:"managerNotes,omitempty" yaml:"managerNotes,omitempty"`
	EmployeeResponse         string                    `json:"employeeResponse,omitempty" yaml:"employeeResponse,omitempty"`
	Version                  int                       `json:"version,omitempty" yaml:"version,omitempty"`
	ExternalID               string                    `json:"externalId,omitempty" yaml:"externalId,omitempty"`
	LeaveDetails             *LeaveDetails             `json:"leaveDetails,omitempty" yaml:"leaveDetails,omitempty"`
	RegularizationDetails    *RegularizationDetails    `json:"regularizationDetails,omitempty" yaml:"regularizationDetails,omitempty"`
	PermissionDetails        *PermissionDetails        `json:"permissionDetails,omitempty" yaml:"permissionDetails,omitempty"`
	LocationExceptionDetails *LocationExceptionDetails `json:"locationExceptionDetails,omitempty" yaml:"locationExceptionDetails,omitempty"`
	ShiftChangeDetails       *ShiftChangeDetails       `json:"shiftChangeDetails,omitempty" yaml:"shiftChangeDetails,omitempty"`
	LateCheckInDetails       *LateCheckInDetails       `json:"lateCheckInDetails,omitempty" yaml:"lateCheckInDetails,omitempty"`
}

func (r RequestItem) toDoc() requestDoc {
	doc := requestDoc{
		ID:               r.ID,
		UserID:           r.UserID,
		UserName:         r.UserName,
		Type:             r.Type,
		Status:           r.Status,
		StartDate:        r.StartDate,
		EndDate:          r.EndDate,
		Reason:           r.Reason,
		AppliedOn:        r.AppliedOn,
		ManagerNotes:     r.ManagerNotes,
		EmployeeResponse: r.EmployeeResponse,
		Version:          r.Version,
		ExternalID:       r.ExternalID,
	}
	switch d := r.Details.(type) {
	case LeaveDetails:
		doc.LeaveDetails = &d
	case RegularizationDetails:
		doc.RegularizationDetails = &d
	case PermissionDetails:
		doc.PermissionDetails = &d
	case LocationExceptionDetails:
		doc.LocationExceptionDetails = &d
	case ShiftChangeDetails:
		doc.ShiftChangeDetails = &d
	case LateCheckInDetails:
		doc.LateCheckInDetails = &d
	}
	return doc
}

func (doc requestDoc) toItem() (RequestItem, error) {
	var payloads []RequestDetails
	if doc.LeaveDetails != nil {
		payloads = append(payloads, *doc.LeaveDetails)
	}
	if doc.RegularizationDetails != nil {
		payloads = append(payloads, *doc.RegularizationDetails)
	}
	if doc.PermissionDetails != nil {
		payloads = append(payloads, *doc.PermissionDetails)
	}
	if doc.LocationExceptionDetails != nil {
		payloads = append(payloads, *doc.LocationExceptionDetails)
	}
	if doc.ShiftChangeDetails != nil {
		payloads = append(payloads, *doc.ShiftChangeDetails)
	}
	if doc.LateCheckInDetails != nil {
		payloads = append(payloads, *doc.LateCheckInDetails)
	}
	if len(payloads) > 1 {
		return RequestItem{}, fmt.Errorf("request %s: %w: %d detail payloads", doc.ID, ErrDetailsMismatch, len(payloads))
	}

	var details RequestDetails
	if len(payloads) == 1 {
		details = payloads[0]
	}
	details, err := CheckDetails(doc.Type, details)
	if err != nil {
		return RequestItem{}, fmt.Errorf("request %s: %w", doc.ID, err)
	}

	version := doc.Version
	if version == 0 {
		version = 1
	}
	return RequestItem{
		ID:               doc.ID,
		UserID:           doc.UserID,
		UserName:         doc.UserName,
		Type:             doc.Type,
		Status:           doc.Status,
		StartDate:        doc.StartDate,
		EndDate:          doc.EndDate,
		Reason:           doc.Reason,
		AppliedOn:        doc.AppliedOn,
		ManagerNotes:     doc.ManagerNotes,
		EmployeeResponse: doc.EmployeeResponse,
		Details:          details,
		Version:          version,
		ExternalID:       doc.ExternalID,
	}, nil
}

// MarshalJSON encodes the request with its type-specific detail field.
func (r RequestItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.toDoc())
}

// UnmarshalJSON decodes a request and rejects mismatched detail payloads.
func (r *RequestItem) UnmarshalJSON(data []byte) error {
	var doc requestDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	item, err := doc.toItem()
	if err != nil {
		return err
	}
	*r = item
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (r RequestItem) MarshalYAML() (any, error) {
	return r.toDoc(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *RequestItem) UnmarshalYAML(node *yaml.Node) error {
	var doc requestDoc
	if err := node.Decode(&doc); err != nil {
		return err
	}
	item, err := doc.toItem()
	if err != nil {
		return err
	}
	*r = item
	return nil
}
