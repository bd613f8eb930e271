package audit

import "time"

// EventType represents the type of audited event
type EventType string

const (
	TypeResidentAdmitted    EventType = "resident_admitted"
	TypeResidentTransferred EventType = "resident_transferred"
	TypeResidentDischarged  EventType = "resident_discharged"
	TypeBedOutOfService     EventType = "bed_out_of_service"
	TypeBedInService        EventType = "bed_in_service"
)

// Entry represents an event in the audit log
type Entry struct {
	ID           int64     `json:"id"`
	CenterID     string    `json:"center_id"`
	ResidentID   *string   `json:"resident_id,omitempty"`
	BedID        *string   `json:"bed_id,omitempty"`
	AssignmentID *string   `json:"assignment_id,omitempty"`
	EventType    EventType `json:"type"`
	Summary      string    `json:"summary"`
	CreatedAt    time.Time `json:"created_at"`
}
