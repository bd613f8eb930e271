package resident

import "time"

// AdmissionStatus is derived from the occupancy ledger: a resident with an
// open assignment is admitted, anyone else is discharged.
type AdmissionStatus string

const (
	StatusAdmitted   AdmissionStatus = "ADMITTED"
	StatusDischarged AdmissionStatus = "DISCHARGED"
)

// EmergencyContact holds the person to notify for a resident.
type EmergencyContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship,omitempty"`
	Phone        string `json:"phone"`
}

// Resident represents a person under care at a center.
type Resident struct {
	ID               string           `json:"id"`
	CenterID         string           `json:"center_id"`
	FirstName        string           `json:"first_name"`
	LastName         string           `json:"last_name"`
	BirthDate        *time.Time       `json:"birth_date,omitempty"`
	Gender           string           `json:"gender,omitempty"`
	EmergencyContact EmergencyContact `json:"emergency_contact"`
	MedicalNotes     string           `json:"medical_notes,omitempty"`
	Status           AdmissionStatus  `json:"status"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}
