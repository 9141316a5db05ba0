package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
)

const sessionColumns = `token_id, subject_id, family_id, device_id, generation,
	refresh_token_id, refresh_expires_at, is_active, is_compromised, expires_at,
	last_activity_at, ip_address, user_agent, created_at`

type sessionsRepo struct {
	db dbtx
}

func scanSession(row interface{ Scan(...any) error }) (domain.Session, error) {
	var (
		s                domain.Session
		refreshExpiresAt int64
		expiresAt        int64
		lastActivityAt   int64
		createdAt        int64
	)
	err := row.Scan(
		&s.TokenID, &s.SubjectID, &s.FamilyID, &s.DeviceID, &s.Generation,
		&s.RefreshTokenID, &refreshExpiresAt, &s.IsActive, &s.IsCompromised, &expiresAt,
		&lastActivityAt, &s.IPAddress, &s.UserAgent, &createdAt,
	)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	s.RefreshExpiresAt = fromMillis(refreshExpiresAt)
	s.ExpiresAt = fromMillis(expiresAt)
	s.LastActivityAt = fromMillis(lastActivityAt)
	s.CreatedAt = fromMillis(createdAt)
	return s, nil
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	created := s.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	lastActivity := s.LastActivityAt
	if lastActivity.IsZero() {
		lastActivity = created
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.TokenID, s.SubjectID, s.FamilyID, s.DeviceID, s.Generation,
		s.RefreshTokenID, toMillis(s.RefreshExpiresAt), boolInt(s.IsActive), boolInt(s.IsCompromised),
		toMillis(s.ExpiresAt), toMillis(lastActivity), s.IPAddress, s.UserAgent, toMillis(created),
	)
	return mapConstraint(err)
}

func (r *sessionsRepo) FindByTokenID(ctx context.Context, key domain.SessionKey) (domain.Session, error) {
	return scanSession(r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE token_id = ?`, key.TokenID))
}

func (r *sessionsRepo) FindByRefreshTokenID(ctx context.Context, refreshTokenID string) (domain.Session, error) {
	return scanSession(r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE refresh_token_id = ?`, refreshTokenID))
}

func (r *sessionsRepo) FindFamilyHead(ctx context.Context, family domain.FamilyKey) (domain.Session, error) {
	return scanSession(r.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM sessions
		WHERE family_id = ?
		ORDER BY generation DESC
		LIMIT 1`,
		family.FamilyID,
	))
}

func (r *sessionsRepo) UpdateActivity(ctx context.Context, key domain.SessionKey, ip string, at time.Time) error {
	return requireRow(r.db.ExecContext(ctx, `
		UPDATE sessions
		SET last_activity_at = ?, ip_address = COALESCE(NULLIF(?, ''), ip_address)
		WHERE token_id = ?`,
		toMillis(at), ip, key.TokenID,
	))
}

func (r *sessionsRepo) Deactivate(ctx context.Context, key domain.SessionKey) error {
	return requireRow(r.db.ExecContext(ctx,
		`UPDATE sessions SET is_active = 0 WHERE token_id = ?`, key.TokenID))
}

func (r *sessionsRepo) MarkFamilyCompromised(ctx context.Context, family domain.FamilyKey) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET is_active = 0, is_compromised = 1 WHERE family_id = ?`, family.FamilyID)
	return err
}

func (r *sessionsRepo) DeactivateAllForSubject(ctx context.Context, subjectID string) (int64, error) {
	return rowsAffected(r.db.ExecContext(ctx,
		`UPDATE sessions SET is_active = 0 WHERE subject_id = ? AND is_active = 1`, subjectID))
}

func (r *sessionsRepo) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	return rowsAffected(r.db.ExecContext(ctx,
		`UPDATE sessions SET is_active = 0 WHERE is_active = 1 AND refresh_expires_at < ?`, toMillis(now)))
}
