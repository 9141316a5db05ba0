package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
)

const userColumns = `id, external_id, email, password_hash, is_active, is_verified,
	is_suspended, token_version, mfa_secret, created_at, updated_at`

type usersRepo struct {
	db dbtx
}

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u          domain.User
		externalID sql.NullString
		mfaSecret  sql.NullString
		createdAt  int64
		updatedAt  int64
	)
	err := row.Scan(
		&u.ID, &externalID, &u.Email, &u.PasswordHash, &u.IsActive, &u.IsVerified,
		&u.IsSuspended, &u.TokenVersion, &mfaSecret, &createdAt, &updatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.ExternalID = mapNullString(externalID)
	u.MFASecret = mapNullStringPtr(mfaSecret)
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *usersRepo) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? COLLATE NOCASE`, email))
}

func (r *usersRepo) FindByExternalID(ctx context.Context, externalID string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE external_id = ?`, externalID))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	created := u.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	updated := u.UpdatedAt
	if updated.IsZero() {
		updated = created
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, mapStringNull(u.ExternalID), u.Email, u.PasswordHash,
		boolInt(u.IsActive), boolInt(u.IsVerified), boolInt(u.IsSuspended),
		u.TokenVersion, mapOptionalString(u.MFASecret),
		toMillis(created), toMillis(updated),
	)
	return mapConstraint(err)
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

func (r *usersRepo) GetTokenVersion(ctx context.Context, id string) (int64, error) {
	var v int64
	err := r.db.QueryRowContext(ctx, `SELECT token_version FROM users WHERE id = ?`, id).Scan(&v)
	if err != nil {
		return 0, mapNotFound(err)
	}
	return v, nil
}

func (r *usersRepo) IncrementTokenVersion(ctx context.Context, id string) (int64, error) {
	var v int64
	err := r.db.QueryRowContext(ctx, `
		UPDATE users
		SET token_version = token_version + 1, updated_at = ?
		WHERE id = ?
		RETURNING token_version`,
		toMillis(time.Now()), id,
	).Scan(&v)
	if err != nil {
		return 0, mapNotFound(err)
	}
	return v, nil
}

func (r *usersRepo) AssignRole(ctx context.Context, userID, roleID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)
		ON CONFLICT DO NOTHING`,
		userID, roleID,
	)
	return err
}

func (r *usersRepo) ListRoles(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.name
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = ?
		ORDER BY r.name`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *usersRepo) HasRole(ctx context.Context, userID, role string) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_roles ur
			JOIN roles r ON r.id = ur.role_id
			WHERE ur.user_id = ? AND r.name = ?
		)`,
		userID, role,
	).Scan(&ok)
	return ok, err
}

func (r *usersRepo) HasPermissionByName(ctx context.Context, userID, permission string) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_roles ur
			JOIN role_permissions rp ON rp.role_id = ur.role_id
			JOIN permissions p ON p.id = rp.permission_id
			WHERE ur.user_id = ? AND p.name = ?
		)`,
		userID, permission,
	).Scan(&ok)
	return ok, err
}
