package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/pkg/idx"
)

type rolesRepo struct {
	db dbtx
}

func (r *rolesRepo) CreateRole(ctx context.Context, role domain.Role) error {
	created := role.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO roles (id, name, created_at) VALUES (?, ?, ?)`,
		role.ID, role.Name, toMillis(created),
	)
	if err != nil {
		return mapConstraint(err)
	}

	for _, name := range role.Permissions {
		permID, err := r.ensurePermission(ctx, name)
		if err != nil {
			return err
		}
		if _, err := r.db.ExecContext(ctx, `
			INSERT INTO role_permissions (role_id, permission_id) VALUES (?, ?)
			ON CONFLICT DO NOTHING`,
			role.ID, permID,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *rolesRepo) ensurePermission(ctx context.Context, name string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM permissions WHERE name = ?`, name).Scan(&id)
	switch {
	case err == nil:
		return id, nil
	case !errors.Is(err, sql.ErrNoRows):
		return "", err
	}

	id = idx.New().String()
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO permissions (id, name) VALUES (?, ?)`, id, name,
	); err != nil {
		return "", mapConstraint(err)
	}
	return id, nil
}

func (r *rolesRepo) GetRoleByName(ctx context.Context, name string) (domain.Role, error) {
	var (
		role      domain.Role
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM roles WHERE name = ?`, name,
	).Scan(&role.ID, &role.Name, &createdAt)
	if err != nil {
		return domain.Role{}, mapNotFound(err)
	}
	role.CreatedAt = fromMillis(createdAt)

	rows, err := r.db.QueryContext(ctx, `
		SELECT p.name
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = ?
		ORDER BY p.name`,
		role.ID,
	)
	if err != nil {
		return domain.Role{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var perm string
		if err := rows.Scan(&perm); err != nil {
			return domain.Role{}, err
		}
		role.Permissions = append(role.Permissions, perm)
	}
	return role, rows.Err()
}
