package transport

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aldervale/census/internal/domain/audit"
	"github.com/aldervale/census/internal/domain/facility"
	"github.com/aldervale/census/internal/domain/occupancy"
	"github.com/aldervale/census/internal/domain/resident"
)

func (s *Server) center(w http.ResponseWriter, r *http.Request) (string, bool) {
	centerID, ok := CenterFromContext(r.Context())
	if !ok || centerID == "" {
		writeError(w, ErrUnauthorized)
		return "", false
	}
	return centerID, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}

// Residents

type registerResidentRequest struct {
	FirstName        string                    `json:"first_name"`
	LastName         string                    `json:"last_name"`
	BirthDate        *time.Time                `json:"birth_date,omitempty"`
	Gender           string                    `json:"gender,omitempty"`
	EmergencyContact resident.EmergencyContact `json:"emergency_contact"`
	MedicalNotes     string                    `json:"medical_notes,omitempty"`
}

func (s *Server) handleRegisterResident(w http.ResponseWriter, r *http.Request) {
	centerID, ok := s.center(w, r)
	if !ok {
		return
	}
	var req registerResidentRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := s.services.Residents.Register(r.Context(), centerID, resident.RegisterRequest{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		BirthDate:        req.BirthDate,
		Gender:           req.Gender,
		EmergencyContact: req.EmergencyContact,
		MedicalNotes:     req.MedicalNotes,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleListResidents(w http.ResponseWriter, r *http.Request) {
	centerID, ok := s.center(w, r)
	if !ok {
		return
	}
	residents, err := s.services.Residents.List(r.Context(), centerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"residents": residents})
}

func (s *Server) handleGetResident(w http.ResponseWriter, r *http.Request) {
	centerID, ok := s.center(w, r)
	if !ok {
		return
	}
	res, err := s.services.Residents.Get(r.Context(), centerID, chi.URLParam(r, "residentID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type updateResidentRequest struct {
	FirstName        *string                    `json:"first_name,omitempty"`
	LastName         *string                    `json:"last_name,omitempty"`
	EmergencyContact *resident.EmergencyContact `json:"emergency_contact,omitempty"`
	MedicalNotes     *string                    `json:"medical_notes,omitempty"`
}

func (s *Server) handleUpdateResident(w http.ResponseWriter, r *http.Request) {
	centerID, ok := s.center(w, r)
	if !ok {
		return
	}
	var req updateResidentRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := s.services.Residents.Update(r.Context(), centerID, resident.UpdateRequest{
		ID:               chi.URLParam(r, "residentID"),
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		EmergencyContact: req.EmergencyContact,
		MedicalNotes:     req.MedicalNotes,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Rooms and beds

type createRoomRequest struct {
	RoomNumber string `json:"room_number"`
	Floor      int    `json:"floor"`
	Capacity   int    `json:"capacity"`
	Status     string `json:"status,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	centerID, ok := s.center(w, r)
	if !ok {
		return
	}
	var req createRoomRequest
	if !decode(w, r, &req) {
		return
	}

	room, err := s.services.Facilities.CreateRoom(r.Context(), centerID, facility.CreateRoomRequest{
		RoomNumber: req.RoomNumber,
		Floor:      req.Floor,
		Capacity:   req.Capacity,
		Status:     facility.RoomStatus(req.Status),
		Notes:      req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	centerID, ok := s.center(w, r)
	if !ok {
		return
	}
	rooms, err := s.services.Facilities.ListRooms(r.Context(), centerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms})
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	centerID, ok := s.center(w, r)
	if !ok {
		return
	}
	room, err := s.services.Facilities.GetRoom(r.Context(), centerID, chi.URLParam(r, "roomID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (s *Server) handleListBeds(w http.ResponseWriter, r *http.Request) {
	centerID, ok := s.center(w, r)
	if !ok {
		return
	}
	beds, err := s.services.Facilities.ListBeds(r.Context(), centerID, chi.URLParam(r, "roomID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"beds": beds})
}

type createBedRequest struct {
	RoomID string `json:"room_id"`
	Label  string `json:"label"`
}

func (s *Server) handleCreateBed(w http.ResponseWriter, r *http.Request) {
	centerID, ok := s.center(w, r)
	if !ok {
		return
	}
	var req createBedRequest
	if !decode(w, r, &req) {
		return
	}

	bed, err := s.services.Facilities.CreateBed(r.Context(), centerID, facility.CreateBedRequest{
		RoomID: req.RoomID,
		Label:  req.Label,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bed)
}

type setBedServiceRequest struct {
	InService bool `json:"in_service"`
}

func (s *Server) handleSetBedService(w http.ResponseWriter, r *http.Request) {
	centerID, ok := s.center(w, r)
	if !ok {
		return
	}
	var req setBedServiceRequest
	if !decode(w, r, &req) {
		return
	}

	bedID := chi.URLParam(r, "bedID")
	if err := s.services.Facilities.SetBedService(r.Context(), centerID, bedID, req.InService); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bed_id": bedID, "in_service": req.InService})
}

// Occupancy operations

type admitRequest struct {
	ResidentID string     `json:"resident_id"`
	BedID      string     `json:"bed_id"`
	At         *time.Time `json:"at,omitempty"`
}

func (s *Server) handleAdmit(w http.ResponseWriter, r *http.Request) {
	centerID, ok := s.center(w, r)
	if !ok {
		return
	}
	var req admitRequest
	if !decode(w, r, &req) {
		return
	}

	a, err := s.services.Occupancy.Admit(r.Context(), centerID, occupancy.AdmitRequest{
		ResidentID: req.ResidentID,
		BedID:      req.BedID,
		At:         timeOrZero(req.At),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

type transferRequest struct {
	ResidentID string     `json:"resident_id"`
	NewBedID   string     `json:"new_bed_id"`
	At         *time.Time `json:"at,omitempty"`
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	centerID, ok := s.center(w, r)
	if !ok {
		return
	}
	var req transferRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := s.services.Occupancy.Transfer(r.Context(), centerID, occupancy.TransferRequest{
		ResidentID: req.ResidentID,
		NewBedID:   req.NewBedID,
		At:         timeOrZero(req.At),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type dischargeRequest struct {
	ResidentID string     `json:"resident_id"`
	At         *time.Time `json:"at,omitempty"`
}

func (s *Server) handleDischarge(w http.ResponseWriter, r *http.Request) {
	centerID, ok := s.center(w, r)
	if !ok {
		return
	}
	var req dischargeRequest
	if !decode(w, r, &req) {
		return
	}

	closed, err := s.services.Occupancy.Discharge(r.Context(), centerID, occupancy.DischargeRequest{
		ResidentID: req.ResidentID,
		At:         timeOrZero(req.At),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, closed)
}

func (s *Server) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	centerID, ok := s.center(w, r)
	if !ok {
		return
	}

	filter := occupancy.Filter{
		RoomID:     r.URL.Query().Get("room_id"),
		BedID:      r.URL.Query().Get("bed_id"),
		ResidentID: r.URL.Query().Get("resident_id"),
	}
	assignments, err := s.services.Occupancy.OpenAssignments(r.Context(), centerID, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"assignments": assignments})
}

func (s *Server) handleGetAssignment(w http.ResponseWriter, r *http.Request) {
	centerID, ok := s.center(w, r)
	if !ok {
		return
	}
	a, err := s.services.Occupancy.Get(r.Context(), centerID, chi.URLParam(r, "assignmentID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Reports and audit

func (s *Server) handleOccupancyReport(w http.ResponseWriter, r *http.Request) {
	centerID, ok := s.center(w, r)
	if !ok {
		return
	}
	rep, err := s.services.Reports.Occupancy(r.Context(), centerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleVacantBeds(w http.ResponseWriter, r *http.Request) {
	centerID, ok := s.center(w, r)
	if !ok {
		return
	}
	beds, err := s.services.Reports.VacantBeds(r.Context(), centerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vacant_beds": beds})
}

func (s *Server) handleAuditTrail(w http.ResponseWriter, r *http.Request) {
	centerID, ok := s.center(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	opts := audit.ListOptions{}
	if v := q.Get("resident_id"); v != "" {
		opts.ResidentID = &v
	}
	if v := q.Get("bed_id"); v != "" {
		opts.BedID = &v
	}
	if v := q.Get("type"); v != "" {
		et := audit.EventType(v)
		opts.EventType = &et
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Offset = n
		}
	}

	entries, err := s.services.Audits.Recent(r.Context(), centerID, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
