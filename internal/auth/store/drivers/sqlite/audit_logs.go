package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
)

const defaultAuditLimit = 100

type auditLogsRepo struct {
	db dbtx
}

func (r *auditLogsRepo) CreateAuditLog(ctx context.Context, e domain.AuditLog) error {
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, subject_id, action, success, family_id, device_id, ip_address, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, mapStringNull(e.SubjectID), string(e.Action), boolInt(e.Success),
		mapStringNull(e.FamilyID), mapStringNull(e.DeviceID), mapStringNull(e.IPAddress),
		mapStringNull(e.Detail), toMillis(created),
	)
	return mapConstraint(err)
}

func (r *auditLogsRepo) ListBySubject(ctx context.Context, subjectID string, limit int) ([]domain.AuditLog, error) {
	if limit <= 0 {
		limit = defaultAuditLimit
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, subject_id, action, success, family_id, device_id, ip_address, detail, created_at
		FROM audit_logs
		WHERE subject_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		subjectID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AuditLog
	for rows.Next() {
		var (
			e                                           domain.AuditLog
			subject, family, device, ip, detail, action sql.NullString
			createdAt                                   int64
		)
		if err := rows.Scan(&e.ID, &subject, &action, &e.Success, &family, &device, &ip, &detail, &createdAt); err != nil {
			return nil, err
		}
		e.SubjectID = mapNullString(subject)
		e.Action = domain.AuditAction(mapNullString(action))
		e.FamilyID = mapNullString(family)
		e.DeviceID = mapNullString(device)
		e.IPAddress = mapNullString(ip)
		e.Detail = mapNullString(detail)
		e.CreatedAt = fromMillis(createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}
