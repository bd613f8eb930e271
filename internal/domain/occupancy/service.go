package occupancy

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

// Service enforces the occupancy business rules on top of the ledger. It is
// the only component with capacity and exclusivity logic; the surrounding
// delivery layers map its typed errors to their own vocabulary.
type Service struct {
	ledger     LedgerRepository
	residents  ResidentRepository
	facilities FacilityRepository
	audits     AuditRepository
	logger     *slog.Logger
}

// NewService creates a new occupancy service.
func NewService(
	ledger LedgerRepository,
	residents ResidentRepository,
	facilities FacilityRepository,
	audits AuditRepository,
	logger *slog.Logger,
) *Service {
	return &Service{
		ledger:     ledger,
		residents:  residents,
		facilities: facilities,
		audits:     audits,
		logger:     logger,
	}
}

// AdmitRequest describes an admission request.
type AdmitRequest struct {
	ResidentID string
	BedID      string
	At         time.Time
}

// TransferRequest describes a transfer request.
type TransferRequest struct {
	ResidentID string
	NewBedID   string
	At         time.Time
}

// DischargeRequest describes a discharge request.
type DischargeRequest struct {
	ResidentID string
	At         time.Time
}

// Admit places a resident in a bed, opening a new assignment. The capacity
// check happens inside the ledger's write transaction; a concurrent admit
// that loses the race on the last free slot gets ErrCapacityExceeded or
// ErrConflict and is never partially applied.
func (s *Service) Admit(ctx context.Context, centerID string, req AdmitRequest) (*Assignment, error) {
	if centerID == "" || req.ResidentID == "" || req.BedID == "" {
		return nil, ErrInvalidInput
	}

	if _, err := s.residents.Get(ctx, centerID, req.ResidentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrResidentNotFound
		}
		return nil, fmt.Errorf("loading resident: %w", err)
	}

	bed, err := s.facilities.GetBed(ctx, centerID, req.BedID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBedNotFound
		}
		return nil, fmt.Errorf("loading bed: %w", err)
	}
	if !bed.InService {
		return nil, ErrBedOutOfService
	}

	at := req.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	a := &Assignment{
		ID:         uuid.NewString(),
		CenterID:   centerID,
		ResidentID: req.ResidentID,
		BedID:      req.BedID,
		StartAt:    at,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.ledger.RecordAssignment(ctx, centerID, a); err != nil {
		if mapped := mapLedgerError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("recording assignment: %w", err)
	}

	s.audit(ctx, centerID, &audit.Entry{
		ResidentID:   &a.ResidentID,
		BedID:        &a.BedID,
		AssignmentID: &a.ID,
		EventType:    audit.TypeResidentAdmitted,
		Summary:      fmt.Sprintf("resident %s admitted to bed %s", a.ResidentID, a.BedID),
	})

	return a, nil
}

// Transfer moves a resident to a new bed: the current open assignment is
// closed at req.At and a new one opened on the destination bed, both inside
// one ledger transaction. No other transaction can observe the resident with
// zero or two open assignments.
func (s *Service) Transfer(ctx context.Context, centerID string, req TransferRequest) (*TransferResult, error) {
	if centerID == "" || req.ResidentID == "" || req.NewBedID == "" {
		return nil, ErrInvalidInput
	}

	bed, err := s.facilities.GetBed(ctx, centerID, req.NewBedID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBedNotFound
		}
		return nil, fmt.Errorf("loading bed: %w", err)
	}
	if !bed.InService {
		return nil, ErrBedOutOfService
	}

	at := req.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	next := &Assignment{
		ID:         uuid.NewString(),
		CenterID:   centerID,
		ResidentID: req.ResidentID,
		BedID:      req.NewBedID,
		StartAt:    at,
		CreatedAt:  time.Now().UTC(),
	}

	closed, err := s.ledger.Transfer(ctx, centerID, req.ResidentID, next)
	if err != nil {
		if mapped := mapLedgerError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("transferring assignment: %w", err)
	}

	s.audit(ctx, centerID, &audit.Entry{
		ResidentID:   &next.ResidentID,
		BedID:        &next.BedID,
		AssignmentID: &next.ID,
		EventType:    audit.TypeResidentTransferred,
		Summary:      fmt.Sprintf("resident %s transferred from bed %s to bed %s", next.ResidentID, closed.BedID, next.BedID),
	})

	return &TransferResult{Closed: closed, Opened: next}, nil
}

// Discharge closes the resident's open assignment at req.At. Discharging a
// resident with no open assignment fails with ErrNoActiveAssignment and
// leaves the ledger untouched.
func (s *Service) Discharge(ctx context.Context, centerID string, req DischargeRequest) (*Assignment, error) {
	if centerID == "" || req.ResidentID == "" {
		return nil, ErrInvalidInput
	}

	at := req.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	closed, err := s.ledger.CloseByResident(ctx, centerID, req.ResidentID, at)
	if err != nil {
		if mapped := mapLedgerError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("closing assignment: %w", err)
	}

	s.audit(ctx, centerID, &audit.Entry{
		ResidentID:   &closed.ResidentID,
		BedID:        &closed.BedID,
		AssignmentID: &closed.ID,
		EventType:    audit.TypeResidentDischarged,
		Summary:      fmt.Sprintf("resident %s discharged from bed %s", closed.ResidentID, closed.BedID),
	})

	return closed, nil
}

// OpenAssignments returns the currently open assignments matching the filter,
// ordered by start time.
func (s *Service) OpenAssignments(ctx context.Context, centerID string, filter Filter) ([]Assignment, error) {
	if centerID == "" {
		return nil, ErrInvalidInput
	}
	return s.ledger.OpenAssignments(ctx, centerID, filter)
}

// Get returns an assignment by ID, open or closed.
func (s *Service) Get(ctx context.Context, centerID, id string) (*Assignment, error) {
	a, err := s.ledger.Get(ctx, centerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("getting assignment: %w", err)
	}
	return a, nil
}

func (s *Service) audit(ctx context.Context, centerID string, entry *audit.Entry) {
	if s.audits == nil {
		return
	}
	if err := s.audits.Log(ctx, centerID, entry); err != nil {
		s.logger.Warn("audit log write failed", "center_id", centerID, "type", entry.EventType, "error", err)
	}
}

// mapLedgerError translates repository sentinels into the occupancy error
// taxonomy. Returns nil for errors that should be wrapped instead.
func mapLedgerError(err error) error {
	switch {
	case errors.Is(err, repository.ErrCapacityExceeded):
		return ErrCapacityExceeded
	case errors.Is(err, repository.ErrResidentAssigned):
		return ErrDuplicateAssignment
	case errors.Is(err, repository.ErrBedOccupied):
		return ErrConflict
	case errors.Is(err, repository.ErrBedOutOfService):
		return ErrBedOutOfService
	case errors.Is(err, repository.ErrNoOpenAssignment):
		return ErrNoActiveAssignment
	case errors.Is(err, repository.ErrInvalidInterval):
		return ErrInvalidInterval
	case errors.Is(err, repository.ErrNotFound):
		return ErrBedNotFound
	case errors.Is(err, repository.ErrForeignKeyViolation):
		return ErrResidentNotFound
	}
	return nil
}
