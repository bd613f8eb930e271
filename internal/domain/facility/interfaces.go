package facility

import (
	"context"

	"github.com/aldervale/census/internal/domain/audit"
)

// FacilityRepository provides persistence for centers, rooms, and beds.
type FacilityRepository interface {
	CreateCenter(ctx context.Context, center *Center) error
	GetCenter(ctx context.Context, centerID string) (*Center, error)
	CreateRoom(ctx context.Context, centerID string, room *Room) error
	GetRoom(ctx context.Context, centerID, roomID string) (*Room, error)
	ListRooms(ctx context.Context, centerID string) ([]RoomSummary, error)
	CreateBed(ctx context.Context, centerID string, bed *Bed) error
	GetBed(ctx context.Context, centerID, bedID string) (*Bed, error)
	ListBeds(ctx context.Context, centerID, roomID string) ([]Bed, error)
	SetBedService(ctx context.Context, centerID, bedID string, inService bool) error
}

// AuditRepository records facility events.
type AuditRepository interface {
	Log(ctx context.Context, centerID string, entry *audit.Entry) error
}
