package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aldervale/census/internal/domain/occupancy"
	"github.com/aldervale/census/internal/repository"
)

// LedgerRepository is the SQLite occupancy ledger. Every
// mutation runs in one transaction so the invariant checks and the write
// they guard are a single atomic unit; a failed call leaves no partial state.
type LedgerRepository struct {
	db *DB
}

// NewLedgerRepository creates a new LedgerRepository
func NewLedgerRepository(db *DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// RecordAssignment opens a new assignment. Inside the transaction it checks
// that the bed exists and is in service and that the destination room has
// free capacity; the partial unique indexes catch bed and resident
// exclusivity violations on insert.
func (r *LedgerRepository) RecordAssignment(ctx context.Context, centerID string, a *occupancy.Assignment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := checkBedAssignable(ctx, tx, centerID, a.BedID); err != nil {
		return err
	}

	query := `
		INSERT INTO assignments (id, center_id, resident_id, bed_id, start_at, end_at, created_at)
		VALUES (?, ?, ?, ?, ?, NULL, ?)
	`
	if _, err := tx.ExecContext(ctx, query,
		a.ID, centerID, a.ResidentID, a.BedID, a.StartAt, a.CreatedAt,
	); err != nil {
		switch {
		case isOpenBedViolation(err):
			return repository.ErrBedOccupied
		case isOpenResidentViolation(err):
			return repository.ErrResidentAssigned
		case isForeignKeyViolation(err):
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to insert assignment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit assignment: %w", err)
	}

	return nil
}

// CloseAssignment sets the end timestamp of an open assignment.
func (r *LedgerRepository) CloseAssignment(ctx context.Context, centerID, assignmentID string, endAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var startAt time.Time
	var end sql.NullTime
	err = tx.QueryRowContext(ctx,
		`SELECT start_at, end_at FROM assignments WHERE id = ? AND center_id = ?`,
		assignmentID, centerID,
	).Scan(&startAt, &end)
	if err == sql.ErrNoRows {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load assignment: %w", err)
	}

	if end.Valid {
		return repository.ErrNoOpenAssignment
	}
	if endAt.Before(startAt) {
		return repository.ErrInvalidInterval
	}

	if err := closeOpenAssignment(ctx, tx, assignmentID, endAt); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit close: %w", err)
	}

	return nil
}

// CloseByResident closes the resident's open assignment and returns it.
func (r *LedgerRepository) CloseByResident(ctx context.Context, centerID, residentID string, endAt time.Time) (*occupancy.Assignment, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	open, err := openByResident(ctx, tx, centerID, residentID)
	if err != nil {
		return nil, err
	}
	if endAt.Before(open.StartAt) {
		return nil, repository.ErrInvalidInterval
	}

	if err := closeOpenAssignment(ctx, tx, open.ID, endAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit close: %w", err)
	}

	open.EndAt = &endAt
	return open, nil
}

// Transfer closes the resident's open assignment at next.StartAt and opens
// next in the same transaction: either both apply or neither. Because the
// close happens before the destination capacity count, moving between beds
// of a full room succeeds. A transfer to the bed the resident already
// occupies is rejected with ErrBedOccupied.
func (r *LedgerRepository) Transfer(ctx context.Context, centerID, residentID string, next *occupancy.Assignment) (*occupancy.Assignment, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	open, err := openByResident(ctx, tx, centerID, residentID)
	if err != nil {
		return nil, err
	}
	if next.BedID == open.BedID {
		return nil, repository.ErrBedOccupied
	}
	if next.StartAt.Before(open.StartAt) {
		return nil, repository.ErrInvalidInterval
	}

	if err := closeOpenAssignment(ctx, tx, open.ID, next.StartAt); err != nil {
		return nil, err
	}

	if err := checkBedAssignable(ctx, tx, centerID, next.BedID); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO assignments (id, center_id, resident_id, bed_id, start_at, end_at, created_at)
		VALUES (?, ?, ?, ?, ?, NULL, ?)
	`
	if _, err := tx.ExecContext(ctx, query,
		next.ID, centerID, next.ResidentID, next.BedID, next.StartAt, next.CreatedAt,
	); err != nil {
		switch {
		case isOpenBedViolation(err):
			return nil, repository.ErrBedOccupied
		case isForeignKeyViolation(err):
			return nil, repository.ErrForeignKeyViolation
		}
		return nil, fmt.Errorf("failed to insert assignment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transfer: %w", err)
	}

	endAt := next.StartAt
	open.EndAt = &endAt
	return open, nil
}

// OpenAssignments returns the currently open assignments matching the filter,
// ordered by start time.
func (r *LedgerRepository) OpenAssignments(ctx context.Context, centerID string, filter occupancy.Filter) ([]occupancy.Assignment, error) {
	query := `
		SELECT a.id, a.center_id, a.resident_id, a.bed_id, a.start_at, a.end_at, a.created_at
		FROM assignments a
	`
	args := []any{}

	if filter.RoomID != "" {
		query += ` JOIN beds b ON b.id = a.bed_id`
	}
	query += ` WHERE a.center_id = ? AND a.end_at IS NULL`
	args = append(args, centerID)

	if filter.RoomID != "" {
		query += ` AND b.room_id = ?`
		args = append(args, filter.RoomID)
	}
	if filter.BedID != "" {
		query += ` AND a.bed_id = ?`
		args = append(args, filter.BedID)
	}
	if filter.ResidentID != "" {
		query += ` AND a.resident_id = ?`
		args = append(args, filter.ResidentID)
	}

	query += ` ORDER BY a.start_at ASC, a.id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list open assignments: %w", err)
	}
	defer rows.Close()

	var assignments []occupancy.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignment rows: %w", err)
	}

	return assignments, nil
}

// Get retrieves an assignment by ID, open or closed.
func (r *LedgerRepository) Get(ctx context.Context, centerID, id string) (*occupancy.Assignment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, center_id, resident_id, bed_id, start_at, end_at, created_at
		FROM assignments
		WHERE id = ? AND center_id = ?
	`, id, centerID)

	a, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssignment(row rowScanner) (*occupancy.Assignment, error) {
	var a occupancy.Assignment
	var end sql.NullTime
	err := row.Scan(&a.ID, &a.CenterID, &a.ResidentID, &a.BedID, &a.StartAt, &end, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan assignment: %w", err)
	}
	if end.Valid {
		endAt := end.Time
		a.EndAt = &endAt
	}
	return &a, nil
}

// checkBedAssignable verifies, inside the caller's transaction, that the bed
// exists, is in service, and that its room has free capacity.
func checkBedAssignable(ctx context.Context, tx *sql.Tx, centerID, bedID string) error {
	var roomID string
	var inService bool
	var capacity int
	err := tx.QueryRowContext(ctx, `
		SELECT b.room_id, b.in_service, rm.capacity
		FROM beds b
		JOIN rooms rm ON rm.id = b.room_id
		WHERE b.id = ? AND b.center_id = ?
	`, bedID, centerID).Scan(&roomID, &inService, &capacity)
	if err == sql.ErrNoRows {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load bed: %w", err)
	}

	if !inService {
		return repository.ErrBedOutOfService
	}

	var open int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM assignments a
		JOIN beds b ON b.id = a.bed_id
		WHERE b.room_id = ? AND a.end_at IS NULL
	`, roomID).Scan(&open)
	if err != nil {
		return fmt.Errorf("failed to count open assignments: %w", err)
	}

	if open >= capacity {
		return repository.ErrCapacityExceeded
	}

	return nil
}

func closeOpenAssignment(ctx context.Context, tx *sql.Tx, assignmentID string, endAt time.Time) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE assignments SET end_at = ? WHERE id = ? AND end_at IS NULL`,
		endAt, assignmentID,
	)
	if err != nil {
		return fmt.Errorf("failed to close assignment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNoOpenAssignment
	}

	return nil
}

func openByResident(ctx context.Context, tx *sql.Tx, centerID, residentID string) (*occupancy.Assignment, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT id, center_id, resident_id, bed_id, start_at, end_at, created_at
		FROM assignments
		WHERE resident_id = ? AND center_id = ? AND end_at IS NULL
	`, residentID, centerID)

	a, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNoOpenAssignment
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}
