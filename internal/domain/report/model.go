package report

import "time"

// RoomOccupancy is the derived occupancy state of one room.
type RoomOccupancy struct {
	RoomID        string  `json:"room_id"`
	RoomNumber    string  `json:"room_number"`
	Floor         int     `json:"floor"`
	Capacity      int     `json:"capacity"`
	BedCount      int     `json:"bed_count"`
	Occupied      int     `json:"occupied"`
	Vacant        int     `json:"vacant"`
	OutOfService  int     `json:"out_of_service"`
	OccupancyRate float64 `json:"occupancy_rate"`
}

// CenterReport aggregates occupancy for one center. All figures come from a
// single storage snapshot; rooms never mix pre- and post-commit state.
type CenterReport struct {
	CenterID      string          `json:"center_id"`
	GeneratedAt   time.Time       `json:"generated_at"`
	Rooms         []RoomOccupancy `json:"rooms"`
	TotalBeds     int             `json:"total_beds"`
	TotalCapacity int             `json:"total_capacity"`
	Occupied      int             `json:"occupied"`
	Vacant        int             `json:"vacant"`
	OutOfService  int             `json:"out_of_service"`
	OccupancyRate float64         `json:"occupancy_rate"`
}

// VacantBed identifies a currently assignable bed.
type VacantBed struct {
	BedID      string `json:"bed_id"`
	Label      string `json:"label"`
	RoomID     string `json:"room_id"`
	RoomNumber string `json:"room_number"`
	Floor      int    `json:"floor"`
}
