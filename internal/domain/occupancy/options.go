package occupancy

// Filter narrows an open-assignment query. Zero-value fields are ignored;
// at most one of RoomID and BedID is expected.
type Filter struct {
	RoomID     string
	BedID      string
	ResidentID string
}
