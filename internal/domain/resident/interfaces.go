package resident

import "context"

// ResidentRepository provides persistence for residents.
type ResidentRepository interface {
	Create(ctx context.Context, centerID string, res *Resident) error
	Get(ctx context.Context, centerID, id string) (*Resident, error)
	Update(ctx context.Context, centerID string, res *Resident) error
	List(ctx context.Context, centerID string) ([]Resident, error)
}
