package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	"github.com/aussiebroadwan/gatekeeper/pkg/cryptox"
	"github.com/aussiebroadwan/gatekeeper/pkg/idx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

var (
	ErrBootstrapAlready             = errors.New("system already bootstrapped")
	ErrBootstrapInvalid             = errors.New("bootstrap requires an admin email and password")
	ErrBootstrapFailedToCreateAdmin = errors.New("failed to create admin user")
)

// BootstrapService seeds the first administrator into an empty store.
type BootstrapService struct {
	Store  store.Store
	Hasher *cryptox.Hasher
}

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !empty, nil
}

// Bootstrap creates the admin role, granting audit:read, and an active,
// verified admin user holding it. It returns the new subject id.
func (s *BootstrapService) Bootstrap(ctx context.Context, req domain.BootstrapData) (string, error) {
	l := slogx.FromContext(ctx)

	email := strings.TrimSpace(req.AdminEmail)
	if email == "" || req.AdminPassword == "" {
		return "", ErrBootstrapInvalid
	}

	bootstrapped, err := s.IsBootstrapped(ctx)
	if err != nil {
		return "", err
	}
	if bootstrapped {
		return "", ErrBootstrapAlready
	}

	passHash, err := s.Hasher.HashPassword(req.AdminPassword)
	if err != nil {
		l.Error("failed to hash admin password", slog.Any("error", err))
		return "", ErrBootstrapFailedToCreateAdmin
	}

	now := time.Now()
	adminID := idx.NewAt(now).String()
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		role, err := tx.Roles().GetRoleByName(ctx, domain.RoleAdmin)
		if errors.Is(err, store.ErrNotFound) {
			role = domain.Role{
				ID:          idx.NewAt(now).String(),
				Name:        domain.RoleAdmin,
				Permissions: []string{domain.PermissionAuditRead},
				CreatedAt:   now,
			}
			err = tx.Roles().CreateRole(ctx, role)
		}
		if err != nil {
			l.Error("failed to prepare admin role", slog.Any("error", err))
			return err
		}

		if err := tx.Users().CreateUser(ctx, domain.User{
			ID:           adminID,
			Email:        email,
			PasswordHash: passHash,
			IsActive:     true,
			IsVerified:   true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}); err != nil {
			l.Error("failed to create admin user", slog.String("admin_user_id", adminID), slog.Any("error", err))
			return ErrBootstrapFailedToCreateAdmin
		}
		return tx.Users().AssignRole(ctx, adminID, role.ID)
	})
	if err != nil {
		return "", err
	}

	l.Info("successfully bootstrapped system", slog.String("admin_user_id", adminID))
	return adminID, nil
}
