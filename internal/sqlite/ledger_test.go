package sqlite

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/aldervale/census/internal/domain/occupancy"
	"github.com/aldervale/census/internal/repository"
)

func newAssignment(centerID, residentID, bedID string, startAt time.Time) *occupancy.Assignment {
	return &occupancy.Assignment{
		ID:         uuid.NewString(),
		CenterID:   centerID,
		ResidentID: residentID,
		BedID:      bedID,
		StartAt:    startAt,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestRecordAssignment(t *testing.T) {
	db := NewTestDB(t)
	ledger := NewLedgerRepository(db)
	ctx := context.Background()

	centerID := seedCenter(t, db)
	roomID := seedRoom(t, db, centerID, "101", 2)
	bedID := seedBed(t, db, centerID, roomID, "A")
	residentID := seedResident(t, db, centerID, "Alvarez")

	a := newAssignment(centerID, residentID, bedID, time.Now().UTC())
	err := ledger.RecordAssignment(ctx, centerID, a)
	require.NoError(t, err)

	got, err := ledger.Get(ctx, centerID, a.ID)
	require.NoError(t, err)
	require.Equal(t, residentID, got.ResidentID)
	require.Equal(t, bedID, got.BedID)
	require.Nil(t, got.EndAt)
	require.True(t, got.Open())
}

func TestRecordAssignmentBedOccupied(t *testing.T) {
	db := NewTestDB(t)
	ledger := NewLedgerRepository(db)
	ctx := context.Background()

	centerID := seedCenter(t, db)
	roomID := seedRoom(t, db, centerID, "101", 2)
	bedID := seedBed(t, db, centerID, roomID, "A")
	first := seedResident(t, db, centerID, "Alvarez")
	second := seedResident(t, db, centerID, "Bennett")

	err := ledger.RecordAssignment(ctx, centerID, newAssignment(centerID, first, bedID, time.Now().UTC()))
	require.NoError(t, err)

	err = ledger.RecordAssignment(ctx, centerID, newAssignment(centerID, second, bedID, time.Now().UTC()))
	require.ErrorIs(t, err, repository.ErrBedOccupied)
}

func TestRecordAssignmentResidentAlreadyAssigned(t *testing.T) {
	db := NewTestDB(t)
	ledger := NewLedgerRepository(db)
	ctx := context.Background()

	centerID := seedCenter(t, db)
	roomID := seedRoom(t, db, centerID, "101", 2)
	bedA := seedBed(t, db, centerID, roomID, "A")
	bedB := seedBed(t, db, centerID, roomID, "B")
	residentID := seedResident(t, db, centerID, "Alvarez")

	err := ledger.RecordAssignment(ctx, centerID, newAssignment(centerID, residentID, bedA, time.Now().UTC()))
	require.NoError(t, err)

	err = ledger.RecordAssignment(ctx, centerID, newAssignment(centerID, residentID, bedB, time.Now().UTC()))
	require.ErrorIs(t, err, repository.ErrResidentAssigned)
}

func TestRecordAssignmentCapacityExceeded(t *testing.T) {
	db := NewTestDB(t)
	ledger := NewLedgerRepository(db)
	ctx := context.Background()

	// Two beds but capacity one: the second admission must fail even though
	// the destination bed itself is free.
	centerID := seedCenter(t, db)
	roomID := seedRoom(t, db, centerID, "101", 1)
	bedA := seedBed(t, db, centerID, roomID, "A")
	bedB := seedBed(t, db, centerID, roomID, "B")
	first := seedResident(t, db, centerID, "Alvarez")
	second := seedResident(t, db, centerID, "Bennett")

	err := ledger.RecordAssignment(ctx, centerID, newAssignment(centerID, first, bedA, time.Now().UTC()))
	require.NoError(t, err)

	err = ledger.RecordAssignment(ctx, centerID, newAssignment(centerID, second, bedB, time.Now().UTC()))
	require.ErrorIs(t, err, repository.ErrCapacityExceeded)
}

func TestRecordAssignmentBedOutOfService(t *testing.T) {
	db := NewTestDB(t)
	ledger := NewLedgerRepository(db)
	facilities := NewFacilityRepository(db)
	ctx := context.Background()

	centerID := seedCenter(t, db)
	roomID := seedRoom(t, db, centerID, "101", 2)
	bedID := seedBed(t, db, centerID, roomID, "A")
	residentID := seedResident(t, db, centerID, "Alvarez")

	require.NoError(t, facilities.SetBedService(ctx, centerID, bedID, false))

	err := ledger.RecordAssignment(ctx, centerID, newAssignment(centerID, residentID, bedID, time.Now().UTC()))
	require.ErrorIs(t, err, repository.ErrBedOutOfService)
}

func TestRecordAssignmentUnknownBed(t *testing.T) {
	db := NewTestDB(t)
	ledger := NewLedgerRepository(db)
	ctx := context.Background()

	centerID := seedCenter(t, db)
	residentID := seedResident(t, db, centerID, "Alvarez")

	err := ledger.RecordAssignment(ctx, centerID, newAssignment(centerID, residentID, "missing", time.Now().UTC()))
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRecordAssignmentUnknownResident(t *testing.T) {
	db := NewTestDB(t)
	ledger := NewLedgerRepository(db)
	ctx := context.Background()

	centerID := seedCenter(t, db)
	roomID := seedRoom(t, db, centerID, "101", 2)
	bedID := seedBed(t, db, centerID, roomID, "A")

	err := ledger.RecordAssignment(ctx, centerID, newAssignment(centerID, "missing", bedID, time.Now().UTC()))
	require.ErrorIs(t, err, repository.ErrForeignKeyViolation)
}

func TestCloseByResident(t *testing.T) {
	db := NewTestDB(t)
	ledger := NewLedgerRepository(db)
	ctx := context.Background()

	centerID := seedCenter(t, db)
	roomID := seedRoom(t, db, centerID, "101", 2)
	bedID := seedBed(t, db, centerID, roomID, "A")
	residentID := seedResident(t, db, centerID, "Alvarez")

	startAt := time.Now().UTC().Add(-time.Hour)
	a := newAssignment(centerID, residentID, bedID, startAt)
	require.NoError(t, ledger.RecordAssignment(ctx, centerID, a))

	endAt := time.Now().UTC()
	closed, err := ledger.CloseByResident(ctx, centerID, residentID, endAt)
	require.NoError(t, err)
	require.Equal(t, a.ID, closed.ID)
	require.NotNil(t, closed.EndAt)
	require.WithinDuration(t, endAt, *closed.EndAt, time.Second)

	// The ledger keeps the closed row
	got, err := ledger.Get(ctx, centerID, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.EndAt)

	// A second close finds no open assignment
	_, err = ledger.CloseByResident(ctx, centerID, residentID, time.Now().UTC())
	require.ErrorIs(t, err, repository.ErrNoOpenAssignment)
}

func TestCloseByResidentInvalidInterval(t *testing.T) {
	db := NewTestDB(t)
	ledger := NewLedgerRepository(db)
	ctx := context.Background()

	centerID := seedCenter(t, db)
	roomID := seedRoom(t, db, centerID, "101", 2)
	bedID := seedBed(t, db, centerID, roomID, "A")
	residentID := seedResident(t, db, centerID, "Alvarez")

	startAt := time.Now().UTC()
	require.NoError(t, ledger.RecordAssignment(ctx, centerID, newAssignment(centerID, residentID, bedID, startAt)))

	_, err := ledger.CloseByResident(ctx, centerID, residentID, startAt.Add(-time.Hour))
	require.ErrorIs(t, err, repository.ErrInvalidInterval)

	// The failed close left the assignment open
	open, err := ledger.OpenAssignments(ctx, centerID, occupancy.Filter{ResidentID: residentID})
	require.NoError(t, err)
	require.Len(t, open, 1)
}

func TestCloseAssignment(t *testing.T) {
	db := NewTestDB(t)
	ledger := NewLedgerRepository(db)
	ctx := context.Background()

	centerID := seedCenter(t, db)
	roomID := seedRoom(t, db, centerID, "101", 2)
	bedID := seedBed(t, db, centerID, roomID, "A")
	residentID := seedResident(t, db, centerID, "Alvarez")

	a := newAssignment(centerID, residentID, bedID, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, ledger.RecordAssignment(ctx, centerID, a))

	require.NoError(t, ledger.CloseAssignment(ctx, centerID, a.ID, time.Now().UTC()))

	err := ledger.CloseAssignment(ctx, centerID, a.ID, time.Now().UTC())
	require.ErrorIs(t, err, repository.ErrNoOpenAssignment)

	err = ledger.CloseAssignment(ctx, centerID, "missing", time.Now().UTC())
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTransfer(t *testing.T) {
	db := NewTestDB(t)
	ledger := NewLedgerRepository(db)
	ctx := context.Background()

	centerID := seedCenter(t, db)
	roomA := seedRoom(t, db, centerID, "101", 2)
	roomB := seedRoom(t, db, centerID, "102", 2)
	bedA := seedBed(t, db, centerID, roomA, "A")
	bedB := seedBed(t, db, centerID, roomB, "A")
	residentID := seedResident(t, db, centerID, "Alvarez")

	startAt := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, ledger.RecordAssignment(ctx, centerID, newAssignment(centerID, residentID, bedA, startAt)))

	moveAt := time.Now().UTC()
	next := newAssignment(centerID, residentID, bedB, moveAt)
	closed, err := ledger.Transfer(ctx, centerID, residentID, next)
	require.NoError(t, err)
	require.Equal(t, bedA, closed.BedID)
	require.NotNil(t, closed.EndAt)
	require.WithinDuration(t, moveAt, *closed.EndAt, time.Second)

	// Exactly one open assignment, on the destination bed
	open, err := ledger.OpenAssignments(ctx, centerID, occupancy.Filter{ResidentID: residentID})
	require.NoError(t, err)
	require.Len(t, open, 1)
	require.Equal(t, bedB, open[0].BedID)

	// The source bed is free for someone else
	other := seedResident(t, db, centerID, "Bennett")
	require.NoError(t, ledger.RecordAssignment(ctx, centerID, newAssignment(centerID, other, bedA, time.Now().UTC())))
}

func TestTransferToSameBed(t *testing.T) {
	db := NewTestDB(t)
	ledger := NewLedgerRepository(db)
	ctx := context.Background()

	centerID := seedCenter(t, db)
	roomID := seedRoom(t, db, centerID, "101", 2)
	bedA := seedBed(t, db, centerID, roomID, "A")
	residentID := seedResident(t, db, centerID, "Alvarez")

	startAt := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, ledger.RecordAssignment(ctx, centerID, newAssignment(centerID, residentID, bedA, startAt)))

	// Moving a resident onto the bed they already occupy is a no-op dressed
	// as a transfer; reject it and keep the original assignment open.
	_, err := ledger.Transfer(ctx, centerID, residentID, newAssignment(centerID, residentID, bedA, time.Now().UTC()))
	require.ErrorIs(t, err, repository.ErrBedOccupied)

	open, err := ledger.OpenAssignments(ctx, centerID, occupancy.Filter{ResidentID: residentID})
	require.NoError(t, err)
	require.Len(t, open, 1)
	require.Equal(t, bedA, open[0].BedID)
	require.Equal(t, startAt.Unix(), open[0].StartAt.Unix())
}

func TestTransferWithinFullRoom(t *testing.T) {
	db := NewTestDB(t)
	ledger := NewLedgerRepository(db)
	ctx := context.Background()

	// Room at full capacity: moving between its own beds must still work
	// because the close happens before the capacity count.
	centerID := seedCenter(t, db)
	roomID := seedRoom(t, db, centerID, "101", 1)
	bedA := seedBed(t, db, centerID, roomID, "A")
	bedB := seedBed(t, db, centerID, roomID, "B")
	residentID := seedResident(t, db, centerID, "Alvarez")

	require.NoError(t, ledger.RecordAssignment(ctx, centerID, newAssignment(centerID, residentID, bedA, time.Now().UTC().Add(-time.Hour))))

	next := newAssignment(centerID, residentID, bedB, time.Now().UTC())
	_, err := ledger.Transfer(ctx, centerID, residentID, next)
	require.NoError(t, err)

	open, err := ledger.OpenAssignments(ctx, centerID, occupancy.Filter{RoomID: roomID})
	require.NoError(t, err)
	require.Len(t, open, 1)
	require.Equal(t, bedB, open[0].BedID)
}

func TestTransferToFullRoomRollsBack(t *testing.T) {
	db := NewTestDB(t)
	ledger := NewLedgerRepository(db)
	ctx := context.Background()

	centerID := seedCenter(t, db)
	roomA := seedRoom(t, db, centerID, "101", 2)
	roomB := seedRoom(t, db, centerID, "102", 1)
	bedA := seedBed(t, db, centerID, roomA, "A")
	bedB1 := seedBed(t, db, centerID, roomB, "A")
	bedB2 := seedBed(t, db, centerID, roomB, "B")
	mover := seedResident(t, db, centerID, "Alvarez")
	occupant := seedResident(t, db, centerID, "Bennett")

	require.NoError(t, ledger.RecordAssignment(ctx, centerID, newAssignment(centerID, mover, bedA, time.Now().UTC().Add(-time.Hour))))
	require.NoError(t, ledger.RecordAssignment(ctx, centerID, newAssignment(centerID, occupant, bedB1, time.Now().UTC().Add(-time.Hour))))

	next := newAssignment(centerID, mover, bedB2, time.Now().UTC())
	_, err := ledger.Transfer(ctx, centerID, mover, next)
	require.ErrorIs(t, err, repository.ErrCapacityExceeded)

	// The failed transfer did not close the source assignment
	open, err := ledger.OpenAssignments(ctx, centerID, occupancy.Filter{ResidentID: mover})
	require.NoError(t, err)
	require.Len(t, open, 1)
	require.Equal(t, bedA, open[0].BedID)
	require.Nil(t, open[0].EndAt)
}

func TestTransferToOccupiedBedRollsBack(t *testing.T) {
	db := NewTestDB(t)
	ledger := NewLedgerRepository(db)
	ctx := context.Background()

	centerID := seedCenter(t, db)
	roomID := seedRoom(t, db, centerID, "101", 3)
	bedA := seedBed(t, db, centerID, roomID, "A")
	bedB := seedBed(t, db, centerID, roomID, "B")
	mover := seedResident(t, db, centerID, "Alvarez")
	occupant := seedResident(t, db, centerID, "Bennett")

	require.NoError(t, ledger.RecordAssignment(ctx, centerID, newAssignment(centerID, mover, bedA, time.Now().UTC().Add(-time.Hour))))
	require.NoError(t, ledger.RecordAssignment(ctx, centerID, newAssignment(centerID, occupant, bedB, time.Now().UTC().Add(-time.Hour))))

	next := newAssignment(centerID, mover, bedB, time.Now().UTC())
	_, err := ledger.Transfer(ctx, centerID, mover, next)
	require.ErrorIs(t, err, repository.ErrBedOccupied)

	open, err := ledger.OpenAssignments(ctx, centerID, occupancy.Filter{ResidentID: mover})
	require.NoError(t, err)
	require.Len(t, open, 1)
	require.Equal(t, bedA, open[0].BedID)
}

func TestTransferWithoutOpenAssignment(t *testing.T) {
	db := NewTestDB(t)
	ledger := NewLedgerRepository(db)
	ctx := context.Background()

	centerID := seedCenter(t, db)
	roomID := seedRoom(t, db, centerID, "101", 2)
	bedID := seedBed(t, db, centerID, roomID, "A")
	residentID := seedResident(t, db, centerID, "Alvarez")

	next := newAssignment(centerID, residentID, bedID, time.Now().UTC())
	_, err := ledger.Transfer(ctx, centerID, residentID, next)
	require.ErrorIs(t, err, repository.ErrNoOpenAssignment)
}

func TestTransferBeforeCurrentStart(t *testing.T) {
	db := NewTestDB(t)
	ledger := NewLedgerRepository(db)
	ctx := context.Background()

	centerID := seedCenter(t, db)
	roomID := seedRoom(t, db, centerID, "101", 2)
	bedA := seedBed(t, db, centerID, roomID, "A")
	bedB := seedBed(t, db, centerID, roomID, "B")
	residentID := seedResident(t, db, centerID, "Alvarez")

	startAt := time.Now().UTC()
	require.NoError(t, ledger.RecordAssignment(ctx, centerID, newAssignment(centerID, residentID, bedA, startAt)))

	next := newAssignment(centerID, residentID, bedB, startAt.Add(-time.Hour))
	_, err := ledger.Transfer(ctx, centerID, residentID, next)
	require.ErrorIs(t, err, repository.ErrInvalidInterval)
}

func TestOpenAssignmentsFilters(t *testing.T) {
	db := NewTestDB(t)
	ledger := NewLedgerRepository(db)
	ctx := context.Background()

	centerID := seedCenter(t, db)
	roomA := seedRoom(t, db, centerID, "101", 2)
	roomB := seedRoom(t, db, centerID, "102", 2)
	bedA := seedBed(t, db, centerID, roomA, "A")
	bedB := seedBed(t, db, centerID, roomB, "A")
	first := seedResident(t, db, centerID, "Alvarez")
	second := seedResident(t, db, centerID, "Bennett")

	base := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, ledger.RecordAssignment(ctx, centerID, newAssignment(centerID, first, bedA, base)))
	require.NoError(t, ledger.RecordAssignment(ctx, centerID, newAssignment(centerID, second, bedB, base.Add(time.Minute))))

	all, err := ledger.OpenAssignments(ctx, centerID, occupancy.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	// Ordered by start time
	require.Equal(t, first, all[0].ResidentID)
	require.Equal(t, second, all[1].ResidentID)

	byRoom, err := ledger.OpenAssignments(ctx, centerID, occupancy.Filter{RoomID: roomA})
	require.NoError(t, err)
	require.Len(t, byRoom, 1)
	require.Equal(t, bedA, byRoom[0].BedID)

	byBed, err := ledger.OpenAssignments(ctx, centerID, occupancy.Filter{BedID: bedB})
	require.NoError(t, err)
	require.Len(t, byBed, 1)
	require.Equal(t, second, byBed[0].ResidentID)

	byResident, err := ledger.OpenAssignments(ctx, centerID, occupancy.Filter{ResidentID: first})
	require.NoError(t, err)
	require.Len(t, byResident, 1)
	require.Equal(t, bedA, byResident[0].BedID)
}

func TestConcurrentAdmitsLastSlot(t *testing.T) {
	db := NewTestDB(t)
	ledger := NewLedgerRepository(db)
	ctx := context.Background()

	centerID := seedCenter(t, db)
	roomID := seedRoom(t, db, centerID, "101", 1)

	const workers = 8
	bedIDs := make([]string, workers)
	residentIDs := make([]string, workers)
	for i := 0; i < workers; i++ {
		bedIDs[i] = seedBed(t, db, centerID, roomID, string(rune('A'+i)))
		residentIDs[i] = seedResident(t, db, centerID, "Resident")
	}

	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = ledger.RecordAssignment(ctx, centerID, newAssignment(centerID, residentIDs[i], bedIDs[i], time.Now().UTC()))
		}(i)
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, repository.ErrCapacityExceeded)
	}
	require.Equal(t, 1, succeeded, "exactly one admission may win the last slot")

	open, err := ledger.OpenAssignments(ctx, centerID, occupancy.Filter{RoomID: roomID})
	require.NoError(t, err)
	require.Len(t, open, 1)
}

func TestGetUnknownAssignment(t *testing.T) {
	db := NewTestDB(t)
	ledger := NewLedgerRepository(db)

	centerID := seedCenter(t, db)
	_, err := ledger.Get(context.Background(), centerID, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}
