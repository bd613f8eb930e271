package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/aldervale/census/internal/domain/audit"
)

// AuditRepository manages audit log persistence in SQLite
type AuditRepository struct {
	db *DB
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Log appends an audit entry
func (r *AuditRepository) Log(ctx context.Context, centerID string, entry *audit.Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO audit_log (center_id, resident_id, bed_id, assignment_id, event_type, summary, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		centerID,
		entry.ResidentID,
		entry.BedID,
		entry.AssignmentID,
		entry.EventType,
		entry.Summary,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get audit entry id: %w", err)
	}
	entry.ID = id
	entry.CenterID = centerID

	return nil
}

// List returns audit entries matching the options, newest first
func (r *AuditRepository) List(ctx context.Context, centerID string, opts audit.ListOptions) ([]audit.Entry, error) {
	query := `
		SELECT id, center_id, resident_id, bed_id, assignment_id, event_type, summary, created_at
		FROM audit_log
		WHERE center_id = ?
	`
	args := []any{centerID}

	if opts.ResidentID != nil {
		query += ` AND resident_id = ?`
		args = append(args, *opts.ResidentID)
	}
	if opts.BedID != nil {
		query += ` AND bed_id = ?`
		args = append(args, *opts.BedID)
	}
	if opts.EventType != nil {
		query += ` AND event_type = ?`
		args = append(args, *opts.EventType)
	}

	query += ` ORDER BY created_at DESC, id DESC`

	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}
	if opts.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, opts.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var entry audit.Entry
		err := rows.Scan(
			&entry.ID, &entry.CenterID, &entry.ResidentID, &entry.BedID,
			&entry.AssignmentID, &entry.EventType, &entry.Summary, &entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit rows: %w", err)
	}

	return entries, nil
}
