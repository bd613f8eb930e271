package audit

import (
	"context"
	"fmt"
	"log/slog"
)

const defaultLimit = 50

// Service provides read access to the audit trail.
type Service struct {
	audits AuditRepository
	logger *slog.Logger
}

// NewService creates a new audit service.
func NewService(audits AuditRepository, logger *slog.Logger) *Service {
	return &Service{audits: audits, logger: logger}
}

// Recent returns recent audit entries, newest first.
func (s *Service) Recent(ctx context.Context, centerID string, opts ListOptions) ([]Entry, error) {
	if opts.Limit <= 0 {
		opts.Limit = defaultLimit
	}

	entries, err := s.audits.List(ctx, centerID, opts)
	if err != nil {
		return nil, fmt.Errorf("listing audit entries: %w", err)
	}
	return entries, nil
}
