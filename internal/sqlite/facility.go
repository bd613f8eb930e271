package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aldervale/census/internal/domain/facility"
	"github.com/aldervale/census/internal/repository"
)

// FacilityRepository manages center, room, and bed persistence in SQLite
type FacilityRepository struct {
	db *DB
}

// NewFacilityRepository creates a new FacilityRepository
func NewFacilityRepository(db *DB) *FacilityRepository {
	return &FacilityRepository{db: db}
}

// CreateCenter creates a new center
func (r *FacilityRepository) CreateCenter(ctx context.Context, center *facility.Center) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO centers (id, name, created_at) VALUES (?, ?, ?)`,
		center.ID, center.Name, center.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create center: %w", err)
	}
	return nil
}

// GetCenter retrieves a center by ID
func (r *FacilityRepository) GetCenter(ctx context.Context, centerID string) (*facility.Center, error) {
	var center facility.Center
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM centers WHERE id = ?`,
		centerID,
	).Scan(&center.ID, &center.Name, &center.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get center: %w", err)
	}
	return &center, nil
}

// CreateRoom creates a new room
func (r *FacilityRepository) CreateRoom(ctx context.Context, centerID string, room *facility.Room) error {
	query := `
		INSERT INTO rooms (id, center_id, room_number, floor, capacity, status, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		room.ID, centerID, room.RoomNumber, room.Floor, room.Capacity,
		room.Status, room.Notes, room.CreatedAt, room.UpdatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return repository.ErrDuplicate
		case isForeignKeyViolation(err):
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

// GetRoom retrieves a room by ID
func (r *FacilityRepository) GetRoom(ctx context.Context, centerID, roomID string) (*facility.Room, error) {
	var room facility.Room
	err := r.db.QueryRowContext(ctx, `
		SELECT id, center_id, room_number, floor, capacity, status, notes, created_at, updated_at
		FROM rooms
		WHERE id = ? AND center_id = ?
	`, roomID, centerID).Scan(
		&room.ID, &room.CenterID, &room.RoomNumber, &room.Floor, &room.Capacity,
		&room.Status, &room.Notes, &room.CreatedAt, &room.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return &room, nil
}

// ListRooms returns all rooms of a center with derived occupancy counts
func (r *FacilityRepository) ListRooms(ctx context.Context, centerID string) ([]facility.RoomSummary, error) {
	query := `
		SELECT
			rm.id, rm.center_id, rm.room_number, rm.floor, rm.capacity, rm.status, rm.notes,
			rm.created_at, rm.updated_at,
			COUNT(DISTINCT b.id) AS bed_count,
			COUNT(DISTINCT a.id) AS open_count
		FROM rooms rm
		LEFT JOIN beds b ON b.room_id = rm.id
		LEFT JOIN assignments a ON a.bed_id = b.id AND a.end_at IS NULL
		WHERE rm.center_id = ?
		GROUP BY rm.id, rm.center_id, rm.room_number, rm.floor, rm.capacity, rm.status, rm.notes, rm.created_at, rm.updated_at
		ORDER BY rm.floor ASC, rm.room_number ASC
	`

	rows, err := r.db.QueryContext(ctx, query, centerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	var summaries []facility.RoomSummary
	for rows.Next() {
		var s facility.RoomSummary
		err := rows.Scan(
			&s.ID, &s.CenterID, &s.RoomNumber, &s.Floor, &s.Capacity, &s.Status, &s.Notes,
			&s.CreatedAt, &s.UpdatedAt, &s.BedCount, &s.OpenCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating room rows: %w", err)
	}

	return summaries, nil
}

// CreateBed creates a new bed
func (r *FacilityRepository) CreateBed(ctx context.Context, centerID string, bed *facility.Bed) error {
	query := `
		INSERT INTO beds (id, center_id, room_id, label, in_service, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		bed.ID, centerID, bed.RoomID, bed.Label, bed.InService, bed.CreatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return repository.ErrDuplicate
		case isForeignKeyViolation(err):
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create bed: %w", err)
	}
	return nil
}

// GetBed retrieves a bed by ID with derived status
func (r *FacilityRepository) GetBed(ctx context.Context, centerID, bedID string) (*facility.Bed, error) {
	var bed facility.Bed
	var occupied bool
	err := r.db.QueryRowContext(ctx, `
		SELECT
			b.id, b.center_id, b.room_id, b.label, b.in_service, b.created_at,
			EXISTS (SELECT 1 FROM assignments a WHERE a.bed_id = b.id AND a.end_at IS NULL) AS occupied
		FROM beds b
		WHERE b.id = ? AND b.center_id = ?
	`, bedID, centerID).Scan(
		&bed.ID, &bed.CenterID, &bed.RoomID, &bed.Label, &bed.InService, &bed.CreatedAt, &occupied,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bed: %w", err)
	}

	bed.Status = deriveBedStatus(bed.InService, occupied)
	return &bed, nil
}

// ListBeds returns the beds of a room with derived status
func (r *FacilityRepository) ListBeds(ctx context.Context, centerID, roomID string) ([]facility.Bed, error) {
	query := `
		SELECT
			b.id, b.center_id, b.room_id, b.label, b.in_service, b.created_at,
			EXISTS (SELECT 1 FROM assignments a WHERE a.bed_id = b.id AND a.end_at IS NULL) AS occupied
		FROM beds b
		WHERE b.room_id = ? AND b.center_id = ?
		ORDER BY b.label ASC
	`

	rows, err := r.db.QueryContext(ctx, query, roomID, centerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list beds: %w", err)
	}
	defer rows.Close()

	var beds []facility.Bed
	for rows.Next() {
		var bed facility.Bed
		var occupied bool
		err := rows.Scan(&bed.ID, &bed.CenterID, &bed.RoomID, &bed.Label, &bed.InService, &bed.CreatedAt, &occupied)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bed: %w", err)
		}
		bed.Status = deriveBedStatus(bed.InService, occupied)
		beds = append(beds, bed)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bed rows: %w", err)
	}

	return beds, nil
}

// SetBedService flags a bed in or out of service. Taking an occupied bed out
// of service is rejected inside the same statement that checks occupancy.
func (r *FacilityRepository) SetBedService(ctx context.Context, centerID, bedID string, inService bool) error {
	var result sql.Result
	var err error

	if inService {
		result, err = r.db.ExecContext(ctx,
			`UPDATE beds SET in_service = 1 WHERE id = ? AND center_id = ?`,
			bedID, centerID,
		)
	} else {
		result, err = r.db.ExecContext(ctx, `
			UPDATE beds SET in_service = 0
			WHERE id = ? AND center_id = ?
			  AND NOT EXISTS (SELECT 1 FROM assignments a WHERE a.bed_id = beds.id AND a.end_at IS NULL)
		`, bedID, centerID)
	}
	if err != nil {
		return fmt.Errorf("failed to update bed service state: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		var exists bool
		err = r.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM beds WHERE id = ? AND center_id = ?)`,
			bedID, centerID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check bed existence: %w", err)
		}
		if !exists {
			return repository.ErrNotFound
		}
		// Bed exists but the occupancy guard blocked the update
		return repository.ErrBedOccupied
	}

	return nil
}

func deriveBedStatus(inService, occupied bool) facility.BedStatus {
	switch {
	case !inService:
		return facility.BedOutOfService
	case occupied:
		return facility.BedOccupied
	default:
		return facility.BedVacant
	}
}
