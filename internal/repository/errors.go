package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a uniqueness constraint fails
	ErrDuplicate = errors.New("duplicate entity")

	// ErrForeignKeyViolation is returned when a foreign key constraint fails
	ErrForeignKeyViolation = errors.New("foreign key violation")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrCapacityExceeded is returned when a room has no free capacity left
	ErrCapacityExceeded = errors.New("room capacity exceeded")

	// ErrBedOccupied is returned when a bed already has an open assignment
	ErrBedOccupied = errors.New("bed already has an open assignment")

	// ErrResidentAssigned is returned when a resident already has an open assignment
	ErrResidentAssigned = errors.New("resident already has an open assignment")

	// ErrBedOutOfService is returned when a bed is flagged out of service
	ErrBedOutOfService = errors.New("bed is out of service")

	// ErrNoOpenAssignment is returned when no open assignment exists to close
	ErrNoOpenAssignment = errors.New("no open assignment")

	// ErrInvalidInterval is returned when an end timestamp precedes the start
	ErrInvalidInterval = errors.New("end precedes start")
)
