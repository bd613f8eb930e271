package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Service derives occupancy metrics from the ledger's committed state. It is
// read-only and enforces no invariants.
type Service struct {
	reports ReportRepository
	logger  *slog.Logger
}

// NewService creates a new report service.
func NewService(reports ReportRepository, logger *slog.Logger) *Service {
	return &Service{reports: reports, logger: logger}
}

// Occupancy builds a center-wide occupancy report.
func (s *Service) Occupancy(ctx context.Context, centerID string) (*CenterReport, error) {
	rooms, err := s.reports.RoomOccupancy(ctx, centerID)
	if err != nil {
		return nil, fmt.Errorf("computing room occupancy: %w", err)
	}

	rep := &CenterReport{
		CenterID:    centerID,
		GeneratedAt: time.Now().UTC(),
		Rooms:       rooms,
	}
	// TotalBeds counts physical beds; a room may hold more beds than its
	// capacity admits, so this can exceed occupied+vacant+out-of-service.
	for _, room := range rooms {
		rep.TotalBeds += room.BedCount
		rep.TotalCapacity += room.Capacity
		rep.Occupied += room.Occupied
		rep.Vacant += room.Vacant
		rep.OutOfService += room.OutOfService
	}
	if rep.TotalCapacity > 0 {
		rep.OccupancyRate = round1(float64(rep.Occupied) / float64(rep.TotalCapacity) * 100)
	}

	return rep, nil
}

// VacantBeds lists the currently assignable beds of a center.
func (s *Service) VacantBeds(ctx context.Context, centerID string) ([]VacantBed, error) {
	beds, err := s.reports.VacantBeds(ctx, centerID)
	if err != nil {
		return nil, fmt.Errorf("listing vacant beds: %w", err)
	}
	return beds, nil
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
