package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	"github.com/aussiebroadwan/gatekeeper/pkg/idx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

// DefaultAuditPageSize caps audit listings when no limit is given.
const DefaultAuditPageSize = 50

// writeAudit records e. Failures are logged and swallowed: an audit write
// never changes the outcome of the operation it describes.
func writeAudit(ctx context.Context, logs store.AuditLogs, e domain.AuditLog, now time.Time) {
	if e.ID == "" {
		e.ID = idx.NewAt(now).String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if err := logs.CreateAuditLog(ctx, e); err != nil {
		slogx.FromContext(ctx).Warn("failed to write audit log",
			slog.String("action", string(e.Action)),
			slog.String("subject_id", e.SubjectID),
			slog.Any("error", err),
		)
	}
}

// AuditService exposes the audit trail to administrators.
type AuditService struct {
	Store store.Store
}

// ListBySubject returns the newest audit entries for subjectID.
func (s *AuditService) ListBySubject(ctx context.Context, subjectID string, limit int) ([]domain.AuditLog, error) {
	if limit <= 0 || limit > DefaultAuditPageSize {
		limit = DefaultAuditPageSize
	}
	logs, err := s.Store.AuditLogs().ListBySubject(ctx, subjectID, limit)
	if err != nil {
		return nil, Internal(err)
	}
	return logs, nil
}
