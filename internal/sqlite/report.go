package sqlite

import (
	"context"
	"fmt"

	"github.com/aldervale/census/internal/domain/report"
)

// ReportRepository computes occupancy aggregates over SQLite. Reads
// run inside a read-only transaction so a report never mixes pre- and
// post-commit state across rooms.
type ReportRepository struct {
	db *DB
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(db *DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// RoomOccupancy returns derived occupancy figures per room
func (r *ReportRepository) RoomOccupancy(ctx context.Context, centerID string) ([]report.RoomOccupancy, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin read transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		SELECT
			rm.id, rm.room_number, rm.floor, rm.capacity,
			COUNT(DISTINCT a.id) AS occupied,
			COUNT(DISTINCT CASE WHEN b.in_service = 0 THEN b.id END) AS out_of_service,
			COUNT(DISTINCT b.id) AS bed_count
		FROM rooms rm
		LEFT JOIN beds b ON b.room_id = rm.id
		LEFT JOIN assignments a ON a.bed_id = b.id AND a.end_at IS NULL
		WHERE rm.center_id = ?
		GROUP BY rm.id, rm.room_number, rm.floor, rm.capacity
		ORDER BY rm.floor ASC, rm.room_number ASC
	`

	rows, err := tx.QueryContext(ctx, query, centerID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute room occupancy: %w", err)
	}
	defer rows.Close()

	var result []report.RoomOccupancy
	for rows.Next() {
		var ro report.RoomOccupancy
		err := rows.Scan(&ro.RoomID, &ro.RoomNumber, &ro.Floor, &ro.Capacity, &ro.Occupied, &ro.OutOfService, &ro.BedCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room occupancy: %w", err)
		}

		// Assignable slots are bounded by both room capacity and the number
		// of in-service beds.
		inService := ro.BedCount - ro.OutOfService
		vacant := inService - ro.Occupied
		if byCapacity := ro.Capacity - ro.Occupied; byCapacity < vacant {
			vacant = byCapacity
		}
		if vacant < 0 {
			vacant = 0
		}
		ro.Vacant = vacant

		if ro.Capacity > 0 {
			ro.OccupancyRate = round1(float64(ro.Occupied) / float64(ro.Capacity) * 100)
		}

		result = append(result, ro)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating occupancy rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit read transaction: %w", err)
	}

	return result, nil
}

// VacantBeds returns the currently assignable beds of a center: in service,
// unoccupied, in an available room with free capacity
func (r *ReportRepository) VacantBeds(ctx context.Context, centerID string) ([]report.VacantBed, error) {
	query := `
		SELECT b.id, b.label, rm.id, rm.room_number, rm.floor
		FROM beds b
		JOIN rooms rm ON rm.id = b.room_id
		WHERE b.center_id = ?
		  AND b.in_service = 1
		  AND rm.status = 'available'
		  AND NOT EXISTS (SELECT 1 FROM assignments a WHERE a.bed_id = b.id AND a.end_at IS NULL)
		  AND (
			SELECT COUNT(*)
			FROM assignments a
			JOIN beds b2 ON b2.id = a.bed_id
			WHERE b2.room_id = rm.id AND a.end_at IS NULL
		  ) < rm.capacity
		ORDER BY rm.floor ASC, rm.room_number ASC, b.label ASC
	`

	rows, err := r.db.QueryContext(ctx, query, centerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vacant beds: %w", err)
	}
	defer rows.Close()

	var beds []report.VacantBed
	for rows.Next() {
		var vb report.VacantBed
		if err := rows.Scan(&vb.BedID, &vb.Label, &vb.RoomID, &vb.RoomNumber, &vb.Floor); err != nil {
			return nil, fmt.Errorf("failed to scan vacant bed: %w", err)
		}
		beds = append(beds, vb)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vacant bed rows: %w", err)
	}

	return beds, nil
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
