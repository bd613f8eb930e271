package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aldervale/census/internal/domain/facility"
	"github.com/aldervale/census/internal/domain/occupancy"
	"github.com/aldervale/census/internal/domain/resident"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
}

// statusForError maps the domain error taxonomy to HTTP status codes.
// Conflict-class failures (capacity, exclusivity, lost races) are 409 so
// callers know the whole operation may be retried.
func statusForError(err error) int {
	switch {
	case errors.Is(err, occupancy.ErrCapacityExceeded),
		errors.Is(err, occupancy.ErrDuplicateAssignment),
		errors.Is(err, occupancy.ErrConflict),
		errors.Is(err, occupancy.ErrBedOutOfService),
		errors.Is(err, facility.ErrBedOccupied),
		errors.Is(err, facility.ErrDuplicateRoom),
		errors.Is(err, facility.ErrDuplicateBed):
		return http.StatusConflict
	case errors.Is(err, occupancy.ErrNoActiveAssignment),
		errors.Is(err, occupancy.ErrInvalidInterval),
		errors.Is(err, resident.ErrBirthDateInFuture):
		return http.StatusUnprocessableEntity
	case errors.Is(err, occupancy.ErrAssignmentNotFound),
		errors.Is(err, occupancy.ErrResidentNotFound),
		errors.Is(err, occupancy.ErrBedNotFound),
		errors.Is(err, facility.ErrCenterNotFound),
		errors.Is(err, facility.ErrRoomNotFound),
		errors.Is(err, facility.ErrBedNotFound),
		errors.Is(err, resident.ErrResidentNotFound),
		errors.Is(err, resident.ErrCenterNotFound):
		return http.StatusNotFound
	case errors.Is(err, occupancy.ErrInvalidInput),
		errors.Is(err, facility.ErrInvalidInput),
		errors.Is(err, resident.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}
