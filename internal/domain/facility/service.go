package facility

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aldervale/census/internal/domain/audit"
	"github.com/aldervale/census/internal/repository"
	"github.com/google/uuid"
)

// Service handles facility business logic.
type Service struct {
	facilities FacilityRepository
	audits     AuditRepository
	logger     *slog.Logger
}

// NewService creates a new facility service.
func NewService(facilities FacilityRepository, audits AuditRepository, logger *slog.Logger) *Service {
	return &Service{facilities: facilities, audits: audits, logger: logger}
}

// CreateCenterRequest describes a center creation request.
type CreateCenterRequest struct {
	ID   string
	Name string
}

// CreateRoomRequest describes a room creation request.
type CreateRoomRequest struct {
	RoomNumber string
	Floor      int
	Capacity   int
	Status     RoomStatus
	Notes      string
}

// CreateBedRequest describes a bed creation request.
type CreateBedRequest struct {
	RoomID string
	Label  string
}

// CreateCenter registers a new center.
func (s *Service) CreateCenter(ctx context.Context, req CreateCenterRequest) (*Center, error) {
	if req.Name == "" {
		return nil, ErrInvalidInput
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	center := &Center{
		ID:        id,
		Name:      req.Name,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.facilities.CreateCenter(ctx, center); err != nil {
		return nil, fmt.Errorf("creating center: %w", err)
	}

	return center, nil
}

// CreateRoom adds a room to a center. Capacity must be positive.
func (s *Service) CreateRoom(ctx context.Context, centerID string, req CreateRoomRequest) (*Room, error) {
	if centerID == "" || req.RoomNumber == "" || req.Capacity <= 0 {
		return nil, ErrInvalidInput
	}

	status := req.Status
	if status == "" {
		status = RoomAvailable
	}
	switch status {
	case RoomAvailable, RoomMaintenance, RoomQuarantine:
	default:
		return nil, ErrInvalidInput
	}

	now := time.Now().UTC()
	room := &Room{
		ID:         uuid.NewString(),
		CenterID:   centerID,
		RoomNumber: req.RoomNumber,
		Floor:      req.Floor,
		Capacity:   req.Capacity,
		Status:     status,
		Notes:      req.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.facilities.CreateRoom(ctx, centerID, room); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrDuplicateRoom
		case errors.Is(err, repository.ErrForeignKeyViolation):
			return nil, ErrCenterNotFound
		}
		return nil, fmt.Errorf("creating room: %w", err)
	}

	return room, nil
}

// CreateBed adds a bed to a room.
func (s *Service) CreateBed(ctx context.Context, centerID string, req CreateBedRequest) (*Bed, error) {
	if centerID == "" || req.RoomID == "" || req.Label == "" {
		return nil, ErrInvalidInput
	}

	if _, err := s.facilities.GetRoom(ctx, centerID, req.RoomID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("loading room: %w", err)
	}

	bed := &Bed{
		ID:        uuid.NewString(),
		CenterID:  centerID,
		RoomID:    req.RoomID,
		Label:     req.Label,
		InService: true,
		Status:    BedVacant,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.facilities.CreateBed(ctx, centerID, bed); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateBed
		}
		return nil, fmt.Errorf("creating bed: %w", err)
	}

	return bed, nil
}

// GetRoom returns a room by ID.
func (s *Service) GetRoom(ctx context.Context, centerID, roomID string) (*Room, error) {
	room, err := s.facilities.GetRoom(ctx, centerID, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("getting room: %w", err)
	}
	return room, nil
}

// ListRooms returns all rooms of a center with derived occupancy counts.
func (s *Service) ListRooms(ctx context.Context, centerID string) ([]RoomSummary, error) {
	return s.facilities.ListRooms(ctx, centerID)
}

// ListBeds returns beds of a room with derived status.
func (s *Service) ListBeds(ctx context.Context, centerID, roomID string) ([]Bed, error) {
	return s.facilities.ListBeds(ctx, centerID, roomID)
}

// SetBedService flags a bed in or out of service. A bed with an open
// assignment cannot be taken out of service; discharge or transfer first.
func (s *Service) SetBedService(ctx context.Context, centerID, bedID string, inService bool) error {
	if centerID == "" || bedID == "" {
		return ErrInvalidInput
	}

	if err := s.facilities.SetBedService(ctx, centerID, bedID, inService); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return ErrBedNotFound
		case errors.Is(err, repository.ErrBedOccupied):
			return ErrBedOccupied
		}
		return fmt.Errorf("updating bed service state: %w", err)
	}

	eventType := audit.TypeBedOutOfService
	summary := fmt.Sprintf("bed %s taken out of service", bedID)
	if inService {
		eventType = audit.TypeBedInService
		summary = fmt.Sprintf("bed %s returned to service", bedID)
	}
	s.audit(ctx, centerID, &audit.Entry{
		BedID:     &bedID,
		EventType: eventType,
		Summary:   summary,
	})

	s.logger.Info("bed service state changed", "center_id", centerID, "bed_id", bedID, "in_service", inService)
	return nil
}

func (s *Service) audit(ctx context.Context, centerID string, entry *audit.Entry) {
	if s.audits == nil {
		return
	}
	if err := s.audits.Log(ctx, centerID, entry); err != nil {
		s.logger.Warn("audit log write failed", "center_id", centerID, "type", entry.EventType, "error", err)
	}
}
