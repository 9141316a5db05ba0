package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

// AuthRequest is what the guard needs from an inbound request.
type AuthRequest struct {
	// Authorization is the raw Authorization header value.
	Authorization string
	IP            string
}

// Guard authenticates requests carrying an access token. Every check runs in
// a fixed order and the first failure is returned.
type Guard struct {
	Codec *jwtx.Codec
	Store store.Store

	// Revocations is consulted for blacklisted token ids. Defaults to
	// Store.Blacklist().
	Revocations store.Blacklist

	Now func() time.Time
}

func (g *Guard) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

func (g *Guard) revocations() store.Blacklist {
	if g.Revocations != nil {
		return g.Revocations
	}
	return g.Store.Blacklist()
}

// Authenticate validates the bearer token in req against the token codec,
// the blacklist, the session table, the subject's account state and its
// token version. On success the session activity is stamped and a principal
// describing the caller is returned.
func (g *Guard) Authenticate(ctx context.Context, req AuthRequest) (domain.Principal, error) {
	l := slogx.FromContext(ctx)
	now := g.now()

	raw, ok := jwtx.ExtractBearerToken(req.Authorization)
	if !ok {
		return domain.Principal{}, ErrMissingAuthHeader
	}

	claims, err := g.Codec.VerifyAccessToken(raw)
	if err != nil {
		l.Debug("access token rejected", slog.Any("error", err))
		return domain.Principal{}, ErrInvalidToken
	}

	if claims.ID == "" {
		return domain.Principal{}, ErrTokenMissingID
	}

	revoked, err := g.revocations().IsTokenBlacklisted(ctx, domain.BlacklistKey{TokenID: claims.ID}, now)
	if err != nil {
		return domain.Principal{}, g.fault(ctx, "blacklist lookup", err)
	}
	if revoked {
		return domain.Principal{}, ErrTokenRevoked
	}

	key := domain.SessionKey{TokenID: claims.ID}
	sess, err := g.Store.Sessions().FindByTokenID(ctx, key)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.Principal{}, ErrSessionNotFound
	case err != nil:
		return domain.Principal{}, g.fault(ctx, "session lookup", err)
	}
	if err := checkSession(sess, now); err != nil {
		return domain.Principal{}, err
	}

	user, err := g.Store.Users().GetUserByID(ctx, claims.Subject)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.Principal{}, ErrUserNotFound
	case err != nil:
		return domain.Principal{}, g.fault(ctx, "user lookup", err)
	}
	if err := checkAccount(user); err != nil {
		return domain.Principal{}, err
	}

	if claims.TokenVersion < user.TokenVersion {
		return domain.Principal{}, ErrTokenVersionStale
	}

	if err := g.Store.Sessions().UpdateActivity(ctx, key, req.IP, now); err != nil {
		l.Warn("failed to update session activity",
			slog.String("token_id", claims.ID),
			slog.Any("error", err),
		)
	}

	return domain.Principal{
		Identity: domain.Identity{
			ID:         user.ID,
			ExternalID: user.ExternalID,
			Email:      user.Email,
			IsActive:   user.IsActive,
			IsVerified: user.IsVerified,
			Roles:      claims.Roles,
		},
		Session: domain.SessionDescriptor{
			TokenID:          sess.TokenID,
			FamilyID:         sess.FamilyID,
			DeviceID:         sess.DeviceID,
			Generation:       sess.Generation,
			RefreshTokenID:   sess.RefreshTokenID,
			RefreshExpiresAt: sess.RefreshExpiresAt,
		},
		TokenExpiresAt: claims.Expiry(),
	}, nil
}

// RejectAuthenticated is for endpoints that only anonymous callers may use.
// It only looks at the token itself: a valid access token is rejected, while
// a missing or invalid one lets the request through.
func (g *Guard) RejectAuthenticated(authorization string) error {
	raw, ok := jwtx.ExtractBearerToken(authorization)
	if !ok {
		return nil
	}
	if _, err := g.Codec.VerifyAccessToken(raw); err != nil {
		return nil
	}
	return ErrAlreadyAuthenticated
}

func (g *Guard) fault(ctx context.Context, step string, err error) error {
	slogx.FromContext(ctx).Error("authentication failed with internal error",
		slog.String("step", step),
		slog.Any("error", err),
	)
	return Internal(err)
}

// checkSession applies the session checks in order; the first match wins.
func checkSession(sess domain.Session, now time.Time) error {
	switch {
	case !sess.IsActive:
		return ErrSessionInactive
	case sess.ExpiresAt.Before(now):
		return ErrSessionExpired
	case sess.IsCompromised:
		return ErrSessionCompromised
	}
	return nil
}

func checkAccount(u domain.User) error {
	switch {
	case !u.IsActive:
		return ErrAccountInactive
	case u.IsSuspended:
		return ErrAccountSuspended
	}
	return nil
}
