package occupancy

import "errors"

var (
	// ErrCapacityExceeded indicates the destination room has no free capacity.
	ErrCapacityExceeded = errors.New("room capacity exceeded")
	// ErrDuplicateAssignment indicates the resident already has an open assignment.
	ErrDuplicateAssignment = errors.New("resident already has an open assignment")
	// ErrNoActiveAssignment indicates the resident has no open assignment.
	ErrNoActiveAssignment = errors.New("resident has no active assignment")
	// ErrAssignmentNotFound indicates the assignment doesn't exist.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrResidentNotFound indicates the resident doesn't exist.
	ErrResidentNotFound = errors.New("resident not found")
	// ErrBedNotFound indicates the bed doesn't exist.
	ErrBedNotFound = errors.New("bed not found")
	// ErrBedOutOfService indicates the bed is not assignable.
	ErrBedOutOfService = errors.New("bed is out of service")
	// ErrInvalidInterval indicates an end timestamp before the start.
	ErrInvalidInterval = errors.New("assignment end precedes start")
	// ErrConflict indicates a concurrent write won the bed; callers may retry.
	ErrConflict = errors.New("bed was assigned concurrently")
	// ErrInvalidInput indicates invalid occupancy input.
	ErrInvalidInput = errors.New("invalid occupancy input")
)
