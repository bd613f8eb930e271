package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/aldervale/census/internal/config"
	"github.com/aldervale/census/internal/domain/audit"
	"github.com/aldervale/census/internal/domain/facility"
	"github.com/aldervale/census/internal/domain/occupancy"
	"github.com/aldervale/census/internal/domain/report"
	"github.com/aldervale/census/internal/domain/resident"
	"github.com/aldervale/census/internal/mcp"
	"github.com/aldervale/census/internal/sqlite"
	"github.com/aldervale/census/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	facilityRepo := sqlite.NewFacilityRepository(db)
	residentRepo := sqlite.NewResidentRepository(db)
	ledgerRepo := sqlite.NewLedgerRepository(db)
	reportRepo := sqlite.NewReportRepository(db)
	auditRepo := sqlite.NewAuditRepository(db)

	facilitySvc := facility.NewService(facilityRepo, auditRepo, logger)
	residentSvc := resident.NewService(residentRepo, logger)
	occupancySvc := occupancy.NewService(ledgerRepo, residentRepo, facilityRepo, auditRepo, logger)
	reportSvc := report.NewService(reportRepo, logger)
	auditSvc := audit.NewService(auditRepo, logger)

	if !cfg.Auth.Enabled {
		if err := ensureCenter(db, cfg.Auth.DefaultCenter); err != nil {
			logger.Error("failed to ensure default center", "error", err)
			os.Exit(1)
		}
	}

	resolver := &apiKeyResolver{db: db}
	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Occupancy: occupancySvc,
			Residents: residentSvc,
			Reports:   reportSvc,
		},
		Resolver:      resolver,
		AuthEnabled:   cfg.Auth.Enabled,
		DefaultCenter: cfg.Auth.DefaultCenter,
		TransportMode: cfg.Transport.Mode,
		Logger:        logger,
	})

	if cfg.Transport.Mode == "stdio" {
		runStdioMode(logger, mcpServer)
		return
	}

	restServer := transport.NewServer(transport.Services{
		Residents:  residentSvc,
		Facilities: facilitySvc,
		Occupancy:  occupancySvc,
		Reports:    reportSvc,
		Audits:     auditSvc,
	}, logger)

	var authMW func(http.Handler) http.Handler
	if cfg.Auth.Enabled {
		authMW = transport.AuthMiddleware(resolver)
	} else {
		authMW = transport.StaticCenterMiddleware(cfg.Auth.DefaultCenter)
	}

	runHTTPMode(logger, mcpServer, restServer.Router(authMW), cfg.Server.Host, cfg.Server.Port)
}

func runStdioMode(logger *slog.Logger, mcpServer *sdkmcp.Server) {
	logger.Info("starting stdio transport", "auth", "disabled")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	// Run blocks until stdin closes or context is canceled
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil {
		logger.Error("stdio server error", "error", err)
		os.Exit(1)
	}
}

func runHTTPMode(logger *slog.Logger, mcpServer *sdkmcp.Server, restRouter http.Handler, host string, port int) {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)

	router := http.NewServeMux()
	router.Handle("/mcp", mcpHandler)
	router.Handle("/mcp/", mcpHandler)
	router.Handle("/", restRouter)

	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// ensureCenter creates the fixed center used when auth is disabled, so that
// rooms and residents have a valid parent row.
func ensureCenter(db *sqlite.DB, centerID string) error {
	_, err := db.Exec(
		`INSERT OR IGNORE INTO centers (id, name, created_at) VALUES (?, ?, ?)`,
		centerID, centerID, time.Now().UTC(),
	)
	return err
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type apiKeyResolver struct {
	db *sqlite.DB
}

func (r *apiKeyResolver) ResolveCenter(ctx context.Context, token string) (string, error) {
	hash := hashToken(token)
	var centerID string
	err := r.db.QueryRowContext(ctx, `SELECT center_id FROM api_keys WHERE key_hash = ?`, hash).Scan(&centerID)
	if err != nil || centerID == "" {
		return "", fmt.Errorf("unauthorized: invalid token")
	}
	return centerID, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
