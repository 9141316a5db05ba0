package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	ErrConflict      = errors.New("store: concurrent update conflict")
)

// Store is the root data access interface. Concrete drivers implement this.
// It exposes sub-repositories to keep concerns tidy and testable, and so a
// transaction is always opened from the root rather than from inside a repo.
type Store interface {
	Users() Users
	Roles() Roles
	Sessions() Sessions
	Blacklist() Blacklist
	RefreshTokens() RefreshTokens
	AuditLogs() AuditLogs
	RateWindows() RateWindows

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// FindByEmail is used during sign-in. Matching is case-insensitive.
	FindByEmail(ctx context.Context, email string) (domain.User, error)

	// FindByExternalID resolves a subject by its upstream identifier.
	FindByExternalID(ctx context.Context, externalID string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)

	// GetTokenVersion returns the subject's current token version.
	GetTokenVersion(ctx context.Context, id string) (int64, error)

	// IncrementTokenVersion bumps the version and returns the new value.
	IncrementTokenVersion(ctx context.Context, id string) (int64, error)

	// AssignRole grants a role to a user. Assigning twice is a no-op.
	AssignRole(ctx context.Context, userID, roleID string) error

	// ListRoles returns the names of every role the user holds, sorted.
	ListRoles(ctx context.Context, userID string) ([]string, error)

	HasRole(ctx context.Context, userID, role string) (bool, error)
	HasPermissionByName(ctx context.Context, userID, permission string) (bool, error)
}

type Roles interface {
	// CreateRole inserts the role and any permissions it names, creating
	// permissions that do not exist yet.
	CreateRole(ctx context.Context, r domain.Role) error

	GetRoleByName(ctx context.Context, name string) (domain.Role, error)
}

type Sessions interface {
	CreateSession(ctx context.Context, s domain.Session) error

	// FindByTokenID resolves the session an access token belongs to.
	FindByTokenID(ctx context.Context, key domain.SessionKey) (domain.Session, error)

	// FindByRefreshTokenID resolves the session a refresh token was issued with.
	FindByRefreshTokenID(ctx context.Context, refreshTokenID string) (domain.Session, error)

	// FindFamilyHead returns the highest generation of a family.
	FindFamilyHead(ctx context.Context, family domain.FamilyKey) (domain.Session, error)

	// UpdateActivity stamps last_activity_at and the caller's address.
	UpdateActivity(ctx context.Context, key domain.SessionKey, ip string, at time.Time) error

	// Deactivate sets is_active=0. Returns ErrNotFound when no row matches.
	Deactivate(ctx context.Context, key domain.SessionKey) error

	// MarkFamilyCompromised deactivates and flags every generation of family.
	MarkFamilyCompromised(ctx context.Context, family domain.FamilyKey) error

	// DeactivateAllForSubject ends every active session of a subject.
	DeactivateAllForSubject(ctx context.Context, subjectID string) (int64, error)

	// ExpireStale deactivates sessions whose refresh expiry is before now.
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

type Blacklist interface {
	// AddToBlacklist records an entry. Adding the same token twice keeps
	// the first entry.
	AddToBlacklist(ctx context.Context, e domain.BlacklistEntry) error

	// IsTokenBlacklisted reports whether an entry exists that has not
	// expired at now.
	IsTokenBlacklisted(ctx context.Context, key domain.BlacklistKey, now time.Time) (bool, error)

	// DeleteExpired removes entries that expired before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// RevokeRefreshToken marks the token revoked. Revoking twice keeps the
	// first reason.
	RevokeRefreshToken(ctx context.Context, id string, reason domain.RevocationReason, at time.Time) error

	// RevokeFamily revokes every unrevoked refresh token of a family.
	RevokeFamily(ctx context.Context, family domain.FamilyKey, reason domain.RevocationReason, at time.Time) error

	// DeleteExpired is housekeeping.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type AuditLogs interface {
	CreateAuditLog(ctx context.Context, e domain.AuditLog) error

	// ListBySubject returns the newest entries first.
	ListBySubject(ctx context.Context, subjectID string, limit int) ([]domain.AuditLog, error)
}

// RateWindowFunc inspects and mutates the current window. prev is the
// immediately preceding window for the same identity, endpoint and method,
// or nil if none was recorded.
type RateWindowFunc func(cur *domain.RateWindow, prev *domain.RateWindow) error

type RateWindows interface {
	// Apply loads (or initialises) the window at key and its predecessor,
	// calls fn, and persists cur. The read and the write are atomic with
	// respect to other Apply calls on the same key. If fn returns an error
	// nothing is written.
	Apply(ctx context.Context, key domain.RateWindowKey, window time.Duration, fn RateWindowFunc) (domain.RateWindow, error)

	// GetRateWindow returns the stored window or ErrNotFound.
	GetRateWindow(ctx context.Context, key domain.RateWindowKey) (domain.RateWindow, error)

	// DeleteExpired removes windows that ended and stopped blocking before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
