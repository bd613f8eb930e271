package occupancy

import (
	"context"
	"time"

	"github.com/aldervale/census/internal/domain/audit"
	"github.com/aldervale/census/internal/domain/facility"
	"github.com/aldervale/census/internal/domain/resident"
)

// LedgerRepository is the durable occupancy ledger. Implementations must run
// every mutation in a single transaction so the capacity check and the write
// that consumes the slot are atomic.
type LedgerRepository interface {
	RecordAssignment(ctx context.Context, centerID string, a *Assignment) error
	CloseAssignment(ctx context.Context, centerID, assignmentID string, endAt time.Time) error
	CloseByResident(ctx context.Context, centerID, residentID string, endAt time.Time) (*Assignment, error)
	Transfer(ctx context.Context, centerID, residentID string, next *Assignment) (*Assignment, error)
	OpenAssignments(ctx context.Context, centerID string, filter Filter) ([]Assignment, error)
	Get(ctx context.Context, centerID, id string) (*Assignment, error)
}

// ResidentRepository provides resident lookups for admission checks.
type ResidentRepository interface {
	Get(ctx context.Context, centerID, id string) (*resident.Resident, error)
}

// FacilityRepository provides bed lookups for admission checks.
type FacilityRepository interface {
	GetBed(ctx context.Context, centerID, bedID string) (*facility.Bed, error)
}

// AuditRepository records occupancy events.
type AuditRepository interface {
	Log(ctx context.Context, centerID string, entry *audit.Entry) error
}
