package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
)

type blacklistRepo struct {
	db dbtx
}

func (r *blacklistRepo) AddToBlacklist(ctx context.Context, e domain.BlacklistEntry) error {
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO token_blacklist (token_id, subject_id, token_type, reason, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (token_id) DO NOTHING`,
		e.TokenID, e.SubjectID, string(e.TokenType), string(e.Reason),
		toMillis(e.ExpiresAt), toMillis(created),
	)
	return err
}

func (r *blacklistRepo) IsTokenBlacklisted(ctx context.Context, key domain.BlacklistKey, now time.Time) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM token_blacklist WHERE token_id = ? AND expires_at > ?
		)`,
		key.TokenID, toMillis(now),
	).Scan(&ok)
	return ok, err
}

// BlacklistedUntil returns the expiry of a live entry for key.
func (r *blacklistRepo) BlacklistedUntil(ctx context.Context, key domain.BlacklistKey, now time.Time) (time.Time, bool, error) {
	var expiresAt int64
	err := r.db.QueryRowContext(ctx, `
		SELECT expires_at FROM token_blacklist WHERE token_id = ? AND expires_at > ?`,
		key.TokenID, toMillis(now),
	).Scan(&expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return fromMillis(expiresAt), true, nil
}

func (r *blacklistRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return rowsAffected(r.db.ExecContext(ctx,
		`DELETE FROM token_blacklist WHERE expires_at <= ?`, toMillis(now)))
}
