package facility

import "errors"

var (
	// ErrCenterNotFound indicates the center doesn't exist.
	ErrCenterNotFound = errors.New("center not found")
	// ErrRoomNotFound indicates the room doesn't exist.
	ErrRoomNotFound = errors.New("room not found")
	// ErrBedNotFound indicates the bed doesn't exist.
	ErrBedNotFound = errors.New("bed not found")
	// ErrBedOccupied indicates the bed has an open assignment.
	ErrBedOccupied = errors.New("bed is occupied")
	// ErrDuplicateRoom indicates a room number is already taken in the center.
	ErrDuplicateRoom = errors.New("room number already exists in center")
	// ErrDuplicateBed indicates a bed label is already taken in the room.
	ErrDuplicateBed = errors.New("bed label already exists in room")
	// ErrInvalidInput indicates invalid facility input.
	ErrInvalidInput = errors.New("invalid facility input")
)
