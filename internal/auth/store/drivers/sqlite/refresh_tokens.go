package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
)

type refreshTokensRepo struct {
	db dbtx
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	created := t.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (id, subject_id, family_id, session_token_id, expires_at, revoked_at, revoked_reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.SubjectID, t.FamilyID, t.SessionTokenID, toMillis(t.ExpiresAt),
		toNullMillis(t.RevokedAt), mapStringNull(string(t.RevokedReason)), toMillis(created),
	)
	return mapConstraint(err)
}

func (r *refreshTokensRepo) RevokeRefreshToken(ctx context.Context, id string, reason domain.RevocationReason, at time.Time) error {
	n, err := rowsAffected(r.db.ExecContext(ctx, `
		UPDATE refresh_tokens
		SET revoked_at = ?, revoked_reason = ?
		WHERE id = ? AND revoked_at IS NULL`,
		toMillis(at), string(reason), id,
	))
	if err != nil || n > 0 {
		return err
	}

	// Already revoked is fine, a missing row is not.
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM refresh_tokens WHERE id = ?)`, id,
	).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return store.ErrNotFound
	}
	return nil
}

func (r *refreshTokensRepo) RevokeFamily(ctx context.Context, family domain.FamilyKey, reason domain.RevocationReason, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE refresh_tokens
		SET revoked_at = ?, revoked_reason = ?
		WHERE family_id = ? AND revoked_at IS NULL`,
		toMillis(at), string(reason), family.FamilyID,
	)
	return err
}

func (r *refreshTokensRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return rowsAffected(r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at <= ?`, toMillis(now)))
}
