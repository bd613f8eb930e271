package audit

import "context"

// AuditRepository manages audit log persistence
type AuditRepository interface {
	Log(ctx context.Context, centerID string, entry *Entry) error
	List(ctx context.Context, centerID string, opts ListOptions) ([]Entry, error)
}
