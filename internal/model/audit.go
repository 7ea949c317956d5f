package model

import "time"

// AuditLog is one immutable entry of the audit trail.
type AuditLog struct {
	ID          string    `json:"id" yaml:"id"`
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
	Action      string    `json:"action" yaml:"action"`
	Details     string    `json:"details" yaml:"details"`
	PerformedBy string    `json:"performedBy" yaml:"performedBy"`
	Role        Role      `json:"role" yaml:"role"`
}
