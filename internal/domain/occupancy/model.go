package occupancy

import "time"

// Assignment links a resident to a bed for a time interval. An assignment
// with no end timestamp is open and denotes current occupancy. Rows are
// append-only: closing sets EndAt, nothing is ever deleted.
type Assignment struct {
	ID         string     `json:"id"`
	CenterID   string     `json:"center_id"`
	ResidentID string     `json:"resident_id"`
	BedID      string     `json:"bed_id"`
	StartAt    time.Time  `json:"start_at"`
	EndAt      *time.Time `json:"end_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Open reports whether the assignment is currently open.
func (a Assignment) Open() bool {
	return a.EndAt == nil
}

// TransferResult holds both halves of a completed transfer.
type TransferResult struct {
	Closed *Assignment `json:"closed"`
	Opened *Assignment `json:"opened"`
}
