package resident

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aldervale/census/internal/repository"
	"github.com/google/uuid"
)

// Service handles resident registry logic.
type Service struct {
	residents ResidentRepository
	logger    *slog.Logger
}

// NewService creates a new resident service.
func NewService(residents ResidentRepository, logger *slog.Logger) *Service {
	return &Service{residents: residents, logger: logger}
}

// RegisterRequest describes a resident registration request.
type RegisterRequest struct {
	FirstName        string
	LastName         string
	BirthDate        *time.Time
	Gender           string
	EmergencyContact EmergencyContact
	MedicalNotes     string
}

// UpdateRequest describes a resident update request. Nil fields are left
// unchanged.
type UpdateRequest struct {
	ID               string
	FirstName        *string
	LastName         *string
	EmergencyContact *EmergencyContact
	MedicalNotes     *string
}

// Register creates a new resident record. Registration does not place the
// resident in a bed; admission is a separate occupancy operation.
func (s *Service) Register(ctx context.Context, centerID string, req RegisterRequest) (*Resident, error) {
	if centerID == "" {
		return nil, ErrInvalidInput
	}
	if err := ValidateRegisterInput(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	res := &Resident{
		ID:               uuid.NewString(),
		CenterID:         centerID,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		BirthDate:        req.BirthDate,
		Gender:           req.Gender,
		EmergencyContact: req.EmergencyContact,
		MedicalNotes:     req.MedicalNotes,
		Status:           StatusDischarged,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.residents.Create(ctx, centerID, res); err != nil {
		if errors.Is(err, repository.ErrForeignKeyViolation) {
			return nil, ErrCenterNotFound
		}
		return nil, fmt.Errorf("creating resident: %w", err)
	}

	return res, nil
}

// Get returns a resident by ID with derived admission status.
func (s *Service) Get(ctx context.Context, centerID, id string) (*Resident, error) {
	res, err := s.residents.Get(ctx, centerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrResidentNotFound
		}
		return nil, fmt.Errorf("getting resident: %w", err)
	}
	return res, nil
}

// Update modifies a resident's contact and notes fields.
func (s *Service) Update(ctx context.Context, centerID string, req UpdateRequest) (*Resident, error) {
	if centerID == "" || req.ID == "" {
		return nil, ErrInvalidInput
	}

	current, err := s.residents.Get(ctx, centerID, req.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrResidentNotFound
		}
		return nil, fmt.Errorf("loading resident: %w", err)
	}

	updated := *current
	if req.FirstName != nil {
		updated.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		updated.LastName = *req.LastName
	}
	if req.EmergencyContact != nil {
		updated.EmergencyContact = *req.EmergencyContact
	}
	if req.MedicalNotes != nil {
		updated.MedicalNotes = *req.MedicalNotes
	}
	if updated.FirstName == "" || updated.LastName == "" {
		return nil, ErrInvalidInput
	}
	updated.UpdatedAt = time.Now().UTC()

	if err := s.residents.Update(ctx, centerID, &updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrResidentNotFound
		}
		return nil, fmt.Errorf("updating resident: %w", err)
	}

	return &updated, nil
}

// List returns all residents of a center.
func (s *Service) List(ctx context.Context, centerID string) ([]Resident, error) {
	return s.residents.List(ctx, centerID)
}
