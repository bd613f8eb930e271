package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/aldervale/census/internal/domain/facility"
	"github.com/aldervale/census/internal/repository"
)

func TestCreateAndGetRoom(t *testing.T) {
	db := NewTestDB(t)
	repo := NewFacilityRepository(db)
	ctx := context.Background()

	centerID := seedCenter(t, db)
	now := time.Now().UTC()
	room := &facility.Room{
		ID:         uuid.NewString(),
		CenterID:   centerID,
		RoomNumber: "204",
		Floor:      2,
		Capacity:   3,
		Status:     facility.RoomAvailable,
		Notes:      "window side",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, repo.CreateRoom(ctx, centerID, room))

	got, err := repo.GetRoom(ctx, centerID, room.ID)
	require.NoError(t, err)
	require.Equal(t, "204", got.RoomNumber)
	require.Equal(t, 3, got.Capacity)
	require.Equal(t, facility.RoomAvailable, got.Status)
	require.Equal(t, "window side", got.Notes)
}

func TestCreateRoomDuplicateNumber(t *testing.T) {
	db := NewTestDB(t)
	repo := NewFacilityRepository(db)
	ctx := context.Background()

	centerID := seedCenter(t, db)
	seedRoom(t, db, centerID, "101", 2)

	now := time.Now().UTC()
	err := repo.CreateRoom(ctx, centerID, &facility.Room{
		ID:         uuid.NewString(),
		CenterID:   centerID,
		RoomNumber: "101",
		Floor:      1,
		Capacity:   2,
		Status:     facility.RoomAvailable,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	require.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestCreateRoomUnknownCenter(t *testing.T) {
	db := NewTestDB(t)
	repo := NewFacilityRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	err := repo.CreateRoom(ctx, "missing", &facility.Room{
		ID:         uuid.NewString(),
		RoomNumber: "101",
		Floor:      1,
		Capacity:   2,
		Status:     facility.RoomAvailable,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	require.ErrorIs(t, err, repository.ErrForeignKeyViolation)
}

func TestCreateBedDuplicateLabel(t *testing.T) {
	db := NewTestDB(t)
	repo := NewFacilityRepository(db)
	ctx := context.Background()

	centerID := seedCenter(t, db)
	roomID := seedRoom(t, db, centerID, "101", 2)
	seedBed(t, db, centerID, roomID, "A")

	err := repo.CreateBed(ctx, centerID, &facility.Bed{
		ID:        uuid.NewString(),
		CenterID:  centerID,
		RoomID:    roomID,
		Label:     "A",
		InService: true,
		CreatedAt: time.Now().UTC(),
	})
	require.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestGetBedDerivedStatus(t *testing.T) {
	db := NewTestDB(t)
	repo := NewFacilityRepository(db)
	ledger := NewLedgerRepository(db)
	ctx := context.Background()

	centerID := seedCenter(t, db)
	roomID := seedRoom(t, db, centerID, "101", 2)
	bedID := seedBed(t, db, centerID, roomID, "A")
	residentID := seedResident(t, db, centerID, "Alvarez")

	bed, err := repo.GetBed(ctx, centerID, bedID)
	require.NoError(t, err)
	require.Equal(t, facility.BedVacant, bed.Status)

	// Occupied while an open assignment references the bed
	require.NoError(t, ledger.RecordAssignment(ctx, centerID, newAssignment(centerID, residentID, bedID, time.Now().UTC())))
	bed, err = repo.GetBed(ctx, centerID, bedID)
	require.NoError(t, err)
	require.Equal(t, facility.BedOccupied, bed.Status)

	// Vacant again after the assignment closes
	_, err = ledger.CloseByResident(ctx, centerID, residentID, time.Now().UTC())
	require.NoError(t, err)
	bed, err = repo.GetBed(ctx, centerID, bedID)
	require.NoError(t, err)
	require.Equal(t, facility.BedVacant, bed.Status)
}

func TestSetBedService(t *testing.T) {
	db := NewTestDB(t)
	repo := NewFacilityRepository(db)
	ctx := context.Background()

	centerID := seedCenter(t, db)
	roomID := seedRoom(t, db, centerID, "101", 2)
	bedID := seedBed(t, db, centerID, roomID, "A")

	require.NoError(t, repo.SetBedService(ctx, centerID, bedID, false))

	bed, err := repo.GetBed(ctx, centerID, bedID)
	require.NoError(t, err)
	require.False(t, bed.InService)
	require.Equal(t, facility.BedOutOfService, bed.Status)

	require.NoError(t, repo.SetBedService(ctx, centerID, bedID, true))
	bed, err = repo.GetBed(ctx, centerID, bedID)
	require.NoError(t, err)
	require.True(t, bed.InService)
}

func TestSetBedServiceOccupied(t *testing.T) {
	db := NewTestDB(t)
	repo := NewFacilityRepository(db)
	ledger := NewLedgerRepository(db)
	ctx := context.Background()

	centerID := seedCenter(t, db)
	roomID := seedRoom(t, db, centerID, "101", 2)
	bedID := seedBed(t, db, centerID, roomID, "A")
	residentID := seedResident(t, db, centerID, "Alvarez")

	require.NoError(t, ledger.RecordAssignment(ctx, centerID, newAssignment(centerID, residentID, bedID, time.Now().UTC())))

	err := repo.SetBedService(ctx, centerID, bedID, false)
	require.ErrorIs(t, err, repository.ErrBedOccupied)
}

func TestSetBedServiceUnknownBed(t *testing.T) {
	db := NewTestDB(t)
	repo := NewFacilityRepository(db)

	centerID := seedCenter(t, db)
	err := repo.SetBedService(context.Background(), centerID, "missing", false)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListRoomsWithCounts(t *testing.T) {
	db := NewTestDB(t)
	repo := NewFacilityRepository(db)
	ledger := NewLedgerRepository(db)
	ctx := context.Background()

	centerID := seedCenter(t, db)
	roomA := seedRoom(t, db, centerID, "101", 2)
	roomB := seedRoom(t, db, centerID, "102", 1)
	bedA1 := seedBed(t, db, centerID, roomA, "A")
	seedBed(t, db, centerID, roomA, "B")
	seedBed(t, db, centerID, roomB, "A")
	residentID := seedResident(t, db, centerID, "Alvarez")

	require.NoError(t, ledger.RecordAssignment(ctx, centerID, newAssignment(centerID, residentID, bedA1, time.Now().UTC())))

	rooms, err := repo.ListRooms(ctx, centerID)
	require.NoError(t, err)
	require.Len(t, rooms, 2)

	require.Equal(t, "101", rooms[0].RoomNumber)
	require.Equal(t, 2, rooms[0].BedCount)
	require.Equal(t, 1, rooms[0].OpenCount)

	require.Equal(t, "102", rooms[1].RoomNumber)
	require.Equal(t, 1, rooms[1].BedCount)
	require.Equal(t, 0, rooms[1].OpenCount)
}

func TestListBeds(t *testing.T) {
	db := NewTestDB(t)
	repo := NewFacilityRepository(db)
	ctx := context.Background()

	centerID := seedCenter(t, db)
	roomID := seedRoom(t, db, centerID, "101", 2)
	seedBed(t, db, centerID, roomID, "B")
	seedBed(t, db, centerID, roomID, "A")

	beds, err := repo.ListBeds(ctx, centerID, roomID)
	require.NoError(t, err)
	require.Len(t, beds, 2)
	require.Equal(t, "A", beds[0].Label)
	require.Equal(t, "B", beds[1].Label)
}
