package facility

import "time"

// RoomStatus represents the operational state of a room.
type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomMaintenance RoomStatus = "maintenance"
	RoomQuarantine  RoomStatus = "quarantine"
)

// BedStatus is derived state: a bed is occupied iff an open assignment
// references it, out of service iff it has been flagged, vacant otherwise.
type BedStatus string

const (
	BedVacant       BedStatus = "VACANT"
	BedOccupied     BedStatus = "OCCUPIED"
	BedOutOfService BedStatus = "OUT_OF_SERVICE"
)

// Center represents a facility. It is the tenant unit: every other entity
// belongs to exactly one center.
type Center struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Room represents a room within a center.
type Room struct {
	ID         string     `json:"id"`
	CenterID   string     `json:"center_id"`
	RoomNumber string     `json:"room_number"`
	Floor      int        `json:"floor"`
	Capacity   int        `json:"capacity"`
	Status     RoomStatus `json:"status"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Bed represents a single bed within a room.
type Bed struct {
	ID        string    `json:"id"`
	CenterID  string    `json:"center_id"`
	RoomID    string    `json:"room_id"`
	Label     string    `json:"label"`
	InService bool      `json:"in_service"`
	Status    BedStatus `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// RoomSummary is a room with derived occupancy figures.
type RoomSummary struct {
	Room
	BedCount  int `json:"bed_count"`
	OpenCount int `json:"open_count"`
}
