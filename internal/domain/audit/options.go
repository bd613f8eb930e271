package audit

// ListOptions provides filtering options for listing audit entries
type ListOptions struct {
	ResidentID *string
	BedID      *string
	EventType  *EventType
	Limit      int
	Offset     int
}
