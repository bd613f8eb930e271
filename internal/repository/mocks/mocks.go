package mocks

import (
	"context"
	"time"

	"github.com/aldervale/census/internal/domain/audit"
	"github.com/aldervale/census/internal/domain/facility"
	"github.com/aldervale/census/internal/domain/occupancy"
	"github.com/aldervale/census/internal/domain/report"
	"github.com/aldervale/census/internal/domain/resident"
	"github.com/stretchr/testify/mock"
)

// FacilityRepository is a mock for facility.FacilityRepository.
type FacilityRepository struct {
	mock.Mock
}

func (m *FacilityRepository) CreateCenter(ctx context.Context, center *facility.Center) error {
	args := m.Called(ctx, center)
	return args.Error(0)
}

func (m *FacilityRepository) GetCenter(ctx context.Context, centerID string) (*facility.Center, error) {
	args := m.Called(ctx, centerID)
	if center, ok := args.Get(0).(*facility.Center); ok {
		return center, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *FacilityRepository) CreateRoom(ctx context.Context, centerID string, room *facility.Room) error {
	args := m.Called(ctx, centerID, room)
	return args.Error(0)
}

func (m *FacilityRepository) GetRoom(ctx context.Context, centerID, roomID string) (*facility.Room, error) {
	args := m.Called(ctx, centerID, roomID)
	if room, ok := args.Get(0).(*facility.Room); ok {
		return room, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *FacilityRepository) ListRooms(ctx context.Context, centerID string) ([]facility.RoomSummary, error) {
	args := m.Called(ctx, centerID)
	if list, ok := args.Get(0).([]facility.RoomSummary); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *FacilityRepository) CreateBed(ctx context.Context, centerID string, bed *facility.Bed) error {
	args := m.Called(ctx, centerID, bed)
	return args.Error(0)
}

func (m *FacilityRepository) GetBed(ctx context.Context, centerID, bedID string) (*facility.Bed, error) {
	args := m.Called(ctx, centerID, bedID)
	if bed, ok := args.Get(0).(*facility.Bed); ok {
		return bed, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *FacilityRepository) ListBeds(ctx context.Context, centerID, roomID string) ([]facility.Bed, error) {
	args := m.Called(ctx, centerID, roomID)
	if list, ok := args.Get(0).([]facility.Bed); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *FacilityRepository) SetBedService(ctx context.Context, centerID, bedID string, inService bool) error {
	args := m.Called(ctx, centerID, bedID, inService)
	return args.Error(0)
}

// ResidentRepository is a mock for resident.ResidentRepository.
type ResidentRepository struct {
	mock.Mock
}

func (m *ResidentRepository) Create(ctx context.Context, centerID string, res *resident.Resident) error {
	args := m.Called(ctx, centerID, res)
	return args.Error(0)
}

func (m *ResidentRepository) Get(ctx context.Context, centerID, id string) (*resident.Resident, error) {
	args := m.Called(ctx, centerID, id)
	if res, ok := args.Get(0).(*resident.Resident); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ResidentRepository) Update(ctx context.Context, centerID string, res *resident.Resident) error {
	args := m.Called(ctx, centerID, res)
	return args.Error(0)
}

func (m *ResidentRepository) List(ctx context.Context, centerID string) ([]resident.Resident, error) {
	args := m.Called(ctx, centerID)
	if list, ok := args.Get(0).([]resident.Resident); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// LedgerRepository is a mock for occupancy.LedgerRepository.
type LedgerRepository struct {
	mock.Mock
}

func (m *LedgerRepository) RecordAssignment(ctx context.Context, centerID string, a *occupancy.Assignment) error {
	args := m.Called(ctx, centerID, a)
	return args.Error(0)
}

func (m *LedgerRepository) CloseAssignment(ctx context.Context, centerID, assignmentID string, endAt time.Time) error {
	args := m.Called(ctx, centerID, assignmentID, endAt)
	return args.Error(0)
}

func (m *LedgerRepository) CloseByResident(ctx context.Context, centerID, residentID string, endAt time.Time) (*occupancy.Assignment, error) {
	args := m.Called(ctx, centerID, residentID, endAt)
	if a, ok := args.Get(0).(*occupancy.Assignment); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LedgerRepository) Transfer(ctx context.Context, centerID, residentID string, next *occupancy.Assignment) (*occupancy.Assignment, error) {
	args := m.Called(ctx, centerID, residentID, next)
	if a, ok := args.Get(0).(*occupancy.Assignment); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LedgerRepository) OpenAssignments(ctx context.Context, centerID string, filter occupancy.Filter) ([]occupancy.Assignment, error) {
	args := m.Called(ctx, centerID, filter)
	if list, ok := args.Get(0).([]occupancy.Assignment); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LedgerRepository) Get(ctx context.Context, centerID, id string) (*occupancy.Assignment, error) {
	args := m.Called(ctx, centerID, id)
	if a, ok := args.Get(0).(*occupancy.Assignment); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

// ReportRepository is a mock for report.ReportRepository.
type ReportRepository struct {
	mock.Mock
}

func (m *ReportRepository) RoomOccupancy(ctx context.Context, centerID string) ([]report.RoomOccupancy, error) {
	args := m.Called(ctx, centerID)
	if list, ok := args.Get(0).([]report.RoomOccupancy); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ReportRepository) VacantBeds(ctx context.Context, centerID string) ([]report.VacantBed, error) {
	args := m.Called(ctx, centerID)
	if list, ok := args.Get(0).([]report.VacantBed); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// AuditRepository is a mock for audit.AuditRepository.
type AuditRepository struct {
	mock.Mock
}

func (m *AuditRepository) Log(ctx context.Context, centerID string, entry *audit.Entry) error {
	args := m.Called(ctx, centerID, entry)
	return args.Error(0)
}

func (m *AuditRepository) List(ctx context.Context, centerID string, opts audit.ListOptions) ([]audit.Entry, error) {
	args := m.Called(ctx, centerID, opts)
	if list, ok := args.Get(0).([]audit.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
