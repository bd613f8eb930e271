package report

import "context"

// ReportRepository computes occupancy aggregates. Implementations must read
// all figures of one call within a single consistent snapshot.
type ReportRepository interface {
	RoomOccupancy(ctx context.Context, centerID string) ([]RoomOccupancy, error)
	VacantBeds(ctx context.Context, centerID string) ([]VacantBed, error)
}
