package resident

import "errors"

var (
	// ErrResidentNotFound indicates the resident doesn't exist.
	ErrResidentNotFound = errors.New("resident not found")
	// ErrCenterNotFound indicates the center doesn't exist.
	ErrCenterNotFound = errors.New("center not found")
	// ErrInvalidInput indicates invalid resident input.
	ErrInvalidInput = errors.New("invalid resident input")
	// ErrBirthDateInFuture indicates a birth date after today.
	ErrBirthDateInFuture = errors.New("birth date cannot be in the future")
)
