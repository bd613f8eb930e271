package mcp

import (
	"context"
	"log/slog"

	"github.com/aldervale/census/internal/domain/occupancy"
	"github.com/aldervale/census/internal/domain/report"
	"github.com/aldervale/census/internal/domain/resident"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// OccupancyService defines the assignment operations needed by MCP.
type OccupancyService interface {
	Admit(ctx context.Context, centerID string, req occupancy.AdmitRequest) (*occupancy.Assignment, error)
	Transfer(ctx context.Context, centerID string, req occupancy.TransferRequest) (*occupancy.TransferResult, error)
	Discharge(ctx context.Context, centerID string, req occupancy.DischargeRequest) (*occupancy.Assignment, error)
	OpenAssignments(ctx context.Context, centerID string, filter occupancy.Filter) ([]occupancy.Assignment, error)
}

// ResidentService defines the resident registry operations needed by MCP.
type ResidentService interface {
	Register(ctx context.Context, centerID string, req resident.RegisterRequest) (*resident.Resident, error)
	Get(ctx context.Context, centerID, id string) (*resident.Resident, error)
	List(ctx context.Context, centerID string) ([]resident.Resident, error)
}

// ReportService defines the reporting operations needed by MCP.
type ReportService interface {
	Occupancy(ctx context.Context, centerID string) (*report.CenterReport, error)
	VacantBeds(ctx context.Context, centerID string) ([]report.VacantBed, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Occupancy OccupancyService
	Residents ResidentService
	Reports   ReportService
}

// Config contains server configuration.
type Config struct {
	Services      Services
	Resolver      CenterResolver
	AuthEnabled   bool
	DefaultCenter string
	TransportMode string // "stdio" or "http"
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "census",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	defaultCenter := cfg.DefaultCenter
	if defaultCenter == "" {
		defaultCenter = "default"
	}

	// Stdio mode is local dev only: always a fixed center, no auth.
	if cfg.TransportMode == "stdio" || !cfg.AuthEnabled {
		server.AddReceivingMiddleware(noAuthMiddleware(defaultCenter))
	} else {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Services)

	return server
}
