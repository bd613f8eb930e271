package transport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aldervale/census/internal/domain/audit"
	"github.com/aldervale/census/internal/domain/facility"
	"github.com/aldervale/census/internal/domain/occupancy"
	"github.com/aldervale/census/internal/domain/report"
	"github.com/aldervale/census/internal/domain/resident"
)

// ResidentService is the resident registry surface used by the HTTP layer.
type ResidentService interface {
	Register(ctx context.Context, centerID string, req resident.RegisterRequest) (*resident.Resident, error)
	Get(ctx context.Context, centerID, id string) (*resident.Resident, error)
	Update(ctx context.Context, centerID string, req resident.UpdateRequest) (*resident.Resident, error)
	List(ctx context.Context, centerID string) ([]resident.Resident, error)
}

// FacilityService is the room and bed management surface used by the HTTP layer.
type FacilityService interface {
	CreateRoom(ctx context.Context, centerID string, req facility.CreateRoomRequest) (*facility.Room, error)
	GetRoom(ctx context.Context, centerID, roomID string) (*facility.Room, error)
	ListRooms(ctx context.Context, centerID string) ([]facility.RoomSummary, error)
	CreateBed(ctx context.Context, centerID string, req facility.CreateBedRequest) (*facility.Bed, error)
	ListBeds(ctx context.Context, centerID, roomID string) ([]facility.Bed, error)
	SetBedService(ctx context.Context, centerID, bedID string, inService bool) error
}

// OccupancyService is the assignment surface used by the HTTP layer.
type OccupancyService interface {
	Admit(ctx context.Context, centerID string, req occupancy.AdmitRequest) (*occupancy.Assignment, error)
	Transfer(ctx context.Context, centerID string, req occupancy.TransferRequest) (*occupancy.TransferResult, error)
	Discharge(ctx context.Context, centerID string, req occupancy.DischargeRequest) (*occupancy.Assignment, error)
	OpenAssignments(ctx context.Context, centerID string, filter occupancy.Filter) ([]occupancy.Assignment, error)
	Get(ctx context.Context, centerID, id string) (*occupancy.Assignment, error)
}

// ReportService is the reporting surface used by the HTTP layer.
type ReportService interface {
	Occupancy(ctx context.Context, centerID string) (*report.CenterReport, error)
	VacantBeds(ctx context.Context, centerID string) ([]report.VacantBed, error)
}

// AuditService is the audit trail surface used by the HTTP layer.
type AuditService interface {
	Recent(ctx context.Context, centerID string, opts audit.ListOptions) ([]audit.Entry, error)
}

// Services bundles the domain services the HTTP server exposes.
type Services struct {
	Residents  ResidentService
	Facilities FacilityService
	Occupancy  OccupancyService
	Reports    ReportService
	Audits     AuditService
}

// Server is the REST front of the occupancy system.
type Server struct {
	services Services
	logger   *slog.Logger
}

// NewServer creates a new HTTP server.
func NewServer(services Services, logger *slog.Logger) *Server {
	return &Server{services: services, logger: logger}
}

// Router builds the HTTP routes. All /api/v1 routes run behind authMW, which
// must put a center ID into the request context.
func (s *Server) Router(authMW func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authMW)

		r.Post("/residents", s.handleRegisterResident)
		r.Get("/residents", s.handleListResidents)
		r.Get("/residents/{residentID}", s.handleGetResident)
		r.Patch("/residents/{residentID}", s.handleUpdateResident)

		r.Post("/rooms", s.handleCreateRoom)
		r.Get("/rooms", s.handleListRooms)
		r.Get("/rooms/{roomID}", s.handleGetRoom)
		r.Get("/rooms/{roomID}/beds", s.handleListBeds)
		r.Post("/beds", s.handleCreateBed)
		r.Put("/beds/{bedID}/service", s.handleSetBedService)

		r.Post("/admissions", s.handleAdmit)
		r.Post("/transfers", s.handleTransfer)
		r.Post("/discharges", s.handleDischarge)
		r.Get("/assignments", s.handleListAssignments)
		r.Get("/assignments/{assignmentID}", s.handleGetAssignment)

		r.Get("/reports/occupancy", s.handleOccupancyReport)
		r.Get("/reports/vacant-beds", s.handleVacantBeds)
		r.Get("/audit", s.handleAuditTrail)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
