package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aldervale/census/internal/domain/resident"
	"github.com/aldervale/census/internal/repository"
)

// ResidentRepository manages resident persistence in SQLite
type ResidentRepository struct {
	db *DB
}

// NewResidentRepository creates a new ResidentRepository
func NewResidentRepository(db *DB) *ResidentRepository {
	return &ResidentRepository{db: db}
}

// Create creates a new resident
func (r *ResidentRepository) Create(ctx context.Context, centerID string, res *resident.Resident) error {
	query := `
		INSERT INTO residents (
			id, center_id, first_name, last_name, birth_date, gender,
			emergency_contact_name, emergency_contact_relationship, emergency_contact_phone,
			medical_notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var birthDate any
	if res.BirthDate != nil {
		birthDate = *res.BirthDate
	}

	_, err := r.db.ExecContext(ctx, query,
		res.ID,
		centerID,
		res.FirstName,
		res.LastName,
		birthDate,
		res.Gender,
		res.EmergencyContact.Name,
		res.EmergencyContact.Relationship,
		res.EmergencyContact.Phone,
		res.MedicalNotes,
		res.CreatedAt,
		res.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create resident: %w", err)
	}

	return nil
}

// Get retrieves a resident by ID with derived admission status
func (r *ResidentRepository) Get(ctx context.Context, centerID, id string) (*resident.Resident, error) {
	query := residentSelect + ` WHERE r.id = ? AND r.center_id = ?`

	res, err := scanResident(r.db.QueryRowContext(ctx, query, id, centerID))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Update updates a resident's mutable fields
func (r *ResidentRepository) Update(ctx context.Context, centerID string, res *resident.Resident) error {
	query := `
		UPDATE residents
		SET first_name = ?, last_name = ?,
		    emergency_contact_name = ?, emergency_contact_relationship = ?, emergency_contact_phone = ?,
		    medical_notes = ?, updated_at = ?
		WHERE id = ? AND center_id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		res.FirstName,
		res.LastName,
		res.EmergencyContact.Name,
		res.EmergencyContact.Relationship,
		res.EmergencyContact.Phone,
		res.MedicalNotes,
		res.UpdatedAt,
		res.ID,
		centerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update resident: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// List returns all residents of a center, ordered by last name
func (r *ResidentRepository) List(ctx context.Context, centerID string) ([]resident.Resident, error) {
	query := residentSelect + ` WHERE r.center_id = ? ORDER BY r.last_name ASC, r.first_name ASC`

	rows, err := r.db.QueryContext(ctx, query, centerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list residents: %w", err)
	}
	defer rows.Close()

	var residents []resident.Resident
	for rows.Next() {
		res, err := scanResident(rows)
		if err != nil {
			return nil, err
		}
		residents = append(residents, *res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating resident rows: %w", err)
	}

	return residents, nil
}

const residentSelect = `
	SELECT
		r.id, r.center_id, r.first_name, r.last_name, r.birth_date, r.gender,
		r.emergency_contact_name, r.emergency_contact_relationship, r.emergency_contact_phone,
		r.medical_notes, r.created_at, r.updated_at,
		EXISTS (SELECT 1 FROM assignments a WHERE a.resident_id = r.id AND a.end_at IS NULL) AS admitted
	FROM residents r
`

func scanResident(row rowScanner) (*resident.Resident, error) {
	var res resident.Resident
	var birthDate sql.NullTime
	var admitted bool
	err := row.Scan(
		&res.ID, &res.CenterID, &res.FirstName, &res.LastName, &birthDate, &res.Gender,
		&res.EmergencyContact.Name, &res.EmergencyContact.Relationship, &res.EmergencyContact.Phone,
		&res.MedicalNotes, &res.CreatedAt, &res.UpdatedAt, &admitted,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan resident: %w", err)
	}

	if birthDate.Valid {
		bd := birthDate.Time
		res.BirthDate = &bd
	}
	res.Status = resident.StatusDischarged
	if admitted {
		res.Status = resident.StatusAdmitted
	}
	return &res, nil
}
