package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	"github.com/aussiebroadwan/gatekeeper/pkg/cryptox"
	"github.com/aussiebroadwan/gatekeeper/pkg/idx"
	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// deviceNamespace scopes name-based device ids to this service.
var deviceNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/aussiebroadwan/gatekeeper/device"))

// DeviceID derives a stable device identifier from a user agent string.
func DeviceID(userAgent string) string {
	return uuid.NewSHA1(deviceNamespace, []byte(strings.TrimSpace(userAgent))).String()
}

type SignInRequest struct {
	Email    string
	Password string
	// OTP is the TOTP code, required only when the account has a second factor.
	OTP       string
	IP        string
	UserAgent string
}

type RefreshRequest struct {
	RefreshToken string
	IP           string
	UserAgent    string
}

// SessionService issues, rotates and ends sessions.
type SessionService struct {
	Codec  *jwtx.Codec
	Hasher *cryptox.Hasher
	Store  store.Store

	// Revocations receives blacklist writes made outside a transaction so a
	// read-through cache learns about them. Defaults to Store.Blacklist().
	Revocations store.Blacklist

	Now func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func (s *SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *SessionService) revocations() store.Blacklist {
	if s.Revocations != nil {
		return s.Revocations
	}
	return s.Store.Blacklist()
}

// equalizeTiming burns one bcrypt comparison so an unknown email costs the
// same as a wrong password.
func (s *SessionService) equalizeTiming(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.Hasher.HashPassword("gatekeeper-timing-equalizer")
	})
	if s.dummyHash != "" {
		_, _ = s.Hasher.VerifyPassword(password, s.dummyHash)
	}
}

// SignIn checks credentials and opens a new session family.
func (s *SessionService) SignIn(ctx context.Context, req SignInRequest) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)
	now := s.now()
	users := s.Store.Users()
	audits := s.Store.AuditLogs()

	failed := func(subjectID, detail string) (domain.TokenPair, error) {
		writeAudit(ctx, audits, domain.AuditLog{
			SubjectID: subjectID,
			Action:    domain.AuditLogin,
			IPAddress: req.IP,
			Detail:    detail,
		}, now)
		return domain.TokenPair{}, ErrSignInFailed
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		s.equalizeTiming(req.Password)
		return failed("", "missing credentials")
	}

	user, err := users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.equalizeTiming(req.Password)
		return failed("", "unknown email")
	case err != nil:
		l.Error("sign-in user lookup failed", slog.Any("error", err))
		return domain.TokenPair{}, Internal(err)
	}

	ok, err := s.Hasher.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		l.Error("stored password hash is unusable", slog.String("subject_id", user.ID), slog.Any("error", err))
		return domain.TokenPair{}, Internal(err)
	}
	if !ok {
		return failed(user.ID, "wrong password")
	}

	if err := checkAccount(user); err != nil {
		return domain.TokenPair{}, err
	}

	if user.HasSecondFactor() {
		if req.OTP == "" {
			return domain.TokenPair{}, ErrSecondFactorRequired
		}
		valid, err := totp.ValidateCustom(req.OTP, *user.MFASecret, now, totp.ValidateOpts{
			Period:    30,
			Skew:      1,
			Digits:    otp.DigitsSix,
			Algorithm: otp.AlgorithmSHA1,
		})
		if err != nil || !valid {
			return failed(user.ID, "invalid second factor")
		}
	}

	roles, err := users.ListRoles(ctx, user.ID)
	if err != nil {
		return domain.TokenPair{}, Internal(err)
	}

	var (
		pair domain.TokenPair
		sess domain.Session
	)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		pair, sess, err = s.issue(ctx, tx, issueParams{
			user:       user,
			roles:      roles,
			familyID:   idx.NewAt(now).String(),
			deviceID:   DeviceID(req.UserAgent),
			generation: 0,
			ip:         req.IP,
			userAgent:  req.UserAgent,
			now:        now,
		})
		return err
	})
	if err != nil {
		l.Error("failed to open session", slog.String("subject_id", user.ID), slog.Any("error", err))
		return domain.TokenPair{}, AsError(err)
	}

	writeAudit(ctx, audits, domain.AuditLog{
		SubjectID: user.ID,
		Action:    domain.AuditLogin,
		Success:   true,
		FamilyID:  sess.FamilyID,
		DeviceID:  sess.DeviceID,
		IPAddress: req.IP,
	}, now)

	l.Info("user signed in",
		slog.String("subject_id", user.ID),
		slog.String("family_id", sess.FamilyID),
	)
	return pair, nil
}

type issueParams struct {
	user       domain.User
	roles      []string
	familyID   string
	deviceID   string
	generation int
	ip         string
	userAgent  string
	now        time.Time
}

// issue signs a token pair and stores the session and refresh token rows
// that back it.
func (s *SessionService) issue(ctx context.Context, tx store.Tx, p issueParams) (domain.TokenPair, domain.Session, error) {
	tokenID := idx.NewAt(p.now).String()
	refreshID := idx.NewAt(p.now).String()

	tc := jwtx.TokenClaims{
		SubjectID:    p.user.ID,
		Email:        p.user.Email,
		Roles:        p.roles,
		TokenID:      tokenID,
		TokenVersion: p.user.TokenVersion,
	}
	access, accessClaims, err := s.Codec.SignAccessToken(tc)
	if err != nil {
		return domain.TokenPair{}, domain.Session{}, Internal(err)
	}
	tc.TokenID = refreshID
	refresh, refreshClaims, err := s.Codec.SignRefreshToken(tc)
	if err != nil {
		return domain.TokenPair{}, domain.Session{}, Internal(err)
	}

	sess := domain.Session{
		TokenID:          tokenID,
		SubjectID:        p.user.ID,
		FamilyID:         p.familyID,
		DeviceID:         p.deviceID,
		Generation:       p.generation,
		RefreshTokenID:   refreshID,
		RefreshExpiresAt: refreshClaims.Expiry(),
		IsActive:         true,
		ExpiresAt:        accessClaims.Expiry(),
		LastActivityAt:   p.now,
		IPAddress:        p.ip,
		UserAgent:        p.userAgent,
		CreatedAt:        p.now,
	}
	if err := tx.Sessions().CreateSession(ctx, sess); err != nil {
		return domain.TokenPair{}, domain.Session{}, Internal(err)
	}
	if err := tx.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		ID:             refreshID,
		SubjectID:      p.user.ID,
		FamilyID:       p.familyID,
		SessionTokenID: tokenID,
		ExpiresAt:      refreshClaims.Expiry(),
		CreatedAt:      p.now,
	}); err != nil {
		return domain.TokenPair{}, domain.Session{}, Internal(err)
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		SubjectID:    p.user.ID,
		ExpiresIn:    s.Codec.AccessTTL(),
	}, sess, nil
}

// SignOut ends the session behind p. Deactivating the session decides the
// outcome; revoking the tokens is best-effort and partial failures are
// recorded in the audit log.
func (s *SessionService) SignOut(ctx context.Context, p domain.Principal) error {
	l := slogx.FromContext(ctx)
	now := s.now()
	subjectID := p.Identity.ID

	err := s.Store.Sessions().Deactivate(ctx, domain.SessionKey{TokenID: p.Session.TokenID})
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrSessionNotFound
	case err != nil:
		l.Error("failed to deactivate session", slog.String("token_id", p.Session.TokenID), slog.Any("error", err))
		return Internal(err)
	}

	var incomplete []string
	blacklist := s.revocations()

	accessExpiry := p.TokenExpiresAt
	if accessExpiry.IsZero() {
		accessExpiry = now.Add(s.Codec.AccessTTL())
	}
	if err := blacklist.AddToBlacklist(ctx, domain.BlacklistEntry{
		TokenID:   p.Session.TokenID,
		SubjectID: subjectID,
		TokenType: domain.TokenTypeAccess,
		Reason:    domain.ReasonLogout,
		ExpiresAt: accessExpiry,
		CreatedAt: now,
	}); err != nil {
		l.Warn("failed to blacklist access token", slog.Any("error", err))
		incomplete = append(incomplete, "blacklist access token")
	}

	if p.Session.RefreshTokenID != "" {
		if err := blacklist.AddToBlacklist(ctx, domain.BlacklistEntry{
			TokenID:   p.Session.RefreshTokenID,
			SubjectID: subjectID,
			TokenType: domain.TokenTypeRefresh,
			Reason:    domain.ReasonLogout,
			ExpiresAt: p.Session.RefreshExpiresAt,
			CreatedAt: now,
		}); err != nil {
			l.Warn("failed to blacklist refresh token", slog.Any("error", err))
			incomplete = append(incomplete, "blacklist refresh token")
		}
		if err := s.Store.RefreshTokens().RevokeRefreshToken(ctx, p.Session.RefreshTokenID, domain.ReasonLogout, now); err != nil {
			l.Warn("failed to revoke refresh token", slog.Any("error", err))
			incomplete = append(incomplete, "revoke refresh token")
		}
	}

	entry := domain.AuditLog{
		SubjectID: subjectID,
		Action:    domain.AuditLogout,
		Success:   true,
		FamilyID:  p.Session.FamilyID,
		DeviceID:  p.Session.DeviceID,
	}
	if len(incomplete) > 0 {
		entry.Action = domain.AuditSignOutIncomplete
		entry.Success = false
		entry.Detail = strings.Join(incomplete, "; ")
	}
	writeAudit(ctx, s.Store.AuditLogs(), entry, now)

	l.Info("user signed out", slog.String("subject_id", subjectID), slog.Bool("complete", len(incomplete) == 0))
	return nil
}

// Refresh rotates the session behind a refresh token. Presenting a refresh
// token that has already been rotated away compromises the whole family.
func (s *SessionService) Refresh(ctx context.Context, req RefreshRequest) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)
	now := s.now()

	claims, err := s.Codec.VerifyRefreshToken(req.RefreshToken)
	if err != nil {
		l.Debug("refresh token rejected", slog.Any("error", err))
		return domain.TokenPair{}, ErrInvalidToken
	}
	if claims.ID == "" {
		return domain.TokenPair{}, ErrTokenMissingID
	}

	var (
		pair   domain.TokenPair
		next   domain.Session
		reused *domain.Session
	)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		sess, err := tx.Sessions().FindByRefreshTokenID(ctx, claims.ID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			return ErrSessionNotFound
		case err != nil:
			return Internal(err)
		}
		if sess.IsCompromised {
			return ErrSessionCompromised
		}

		head, err := tx.Sessions().FindFamilyHead(ctx, sess.Family())
		if err != nil {
			return Internal(err)
		}
		if head.TokenID != sess.TokenID {
			// Returning nil commits the compromise writes.
			reused = &sess
			return compromiseFamily(ctx, tx, head, now)
		}

		if !sess.IsActive {
			return ErrSessionInactive
		}
		revoked, err := tx.Blacklist().IsTokenBlacklisted(ctx, domain.BlacklistKey{TokenID: claims.ID}, now)
		if err != nil {
			return Internal(err)
		}
		if revoked {
			return ErrTokenRevoked
		}
		if !now.Before(sess.RefreshExpiresAt) {
			return ErrSessionExpired
		}

		user, err := tx.Users().GetUserByID(ctx, claims.Subject)
		switch {
		case errors.Is(err, store.ErrNotFound):
			return ErrUserNotFound
		case err != nil:
			return Internal(err)
		}
		if err := checkAccount(user); err != nil {
			return err
		}
		if claims.TokenVersion < user.TokenVersion {
			return ErrTokenVersionStale
		}

		roles, err := tx.Users().ListRoles(ctx, user.ID)
		if err != nil {
			return Internal(err)
		}

		pair, next, err = s.issue(ctx, tx, issueParams{
			user:       user,
			roles:      roles,
			familyID:   sess.FamilyID,
			deviceID:   sess.DeviceID,
			generation: sess.Generation + 1,
			ip:         req.IP,
			userAgent:  req.UserAgent,
			now:        now,
		})
		if err != nil {
			return err
		}
		return retire(ctx, tx, sess, domain.ReasonRotation, now)
	})
	if err != nil {
		serr := AsError(err)
		if serr.Kind == KindInternal {
			l.Error("refresh failed", slog.Any("error", err))
		}
		return domain.TokenPair{}, serr
	}

	if reused != nil {
		l.Warn("refresh token reuse detected, family compromised",
			slog.String("subject_id", reused.SubjectID),
			slog.String("family_id", reused.FamilyID),
			slog.Int("generation", reused.Generation),
		)
		writeAudit(ctx, s.Store.AuditLogs(), domain.AuditLog{
			SubjectID: reused.SubjectID,
			Action:    domain.AuditRefreshReuse,
			FamilyID:  reused.FamilyID,
			DeviceID:  reused.DeviceID,
			IPAddress: req.IP,
		}, now)
		return domain.TokenPair{}, ErrRefreshReuse
	}

	writeAudit(ctx, s.Store.AuditLogs(), domain.AuditLog{
		SubjectID: next.SubjectID,
		Action:    domain.AuditRefresh,
		Success:   true,
		FamilyID:  next.FamilyID,
		DeviceID:  next.DeviceID,
		IPAddress: req.IP,
	}, now)
	return pair, nil
}

// retire deactivates sess and revokes both of its tokens.
func retire(ctx context.Context, tx store.Tx, sess domain.Session, reason domain.RevocationReason, now time.Time) error {
	if err := tx.Sessions().Deactivate(ctx, sess.Key()); err != nil {
		return Internal(err)
	}
	if err := blacklistSession(ctx, tx.Blacklist(), sess, reason, now); err != nil {
		return err
	}
	if err := tx.RefreshTokens().RevokeRefreshToken(ctx, sess.RefreshTokenID, reason, now); err != nil {
		return Internal(err)
	}
	return nil
}

// compromiseFamily shuts down every generation of head's family and makes
// the newest tokens unusable.
func compromiseFamily(ctx context.Context, tx store.Tx, head domain.Session, now time.Time) error {
	if err := tx.Sessions().MarkFamilyCompromised(ctx, head.Family()); err != nil {
		return Internal(err)
	}
	if err := blacklistSession(ctx, tx.Blacklist(), head, domain.ReasonCompromise, now); err != nil {
		return err
	}
	if err := tx.RefreshTokens().RevokeFamily(ctx, head.Family(), domain.ReasonCompromise, now); err != nil {
		return Internal(err)
	}
	return nil
}

func blacklistSession(ctx context.Context, bl store.Blacklist, sess domain.Session, reason domain.RevocationReason, now time.Time) error {
	entries := []domain.BlacklistEntry{
		{
			TokenID:   sess.TokenID,
			SubjectID: sess.SubjectID,
			TokenType: domain.TokenTypeAccess,
			Reason:    reason,
			ExpiresAt: sess.ExpiresAt,
			CreatedAt: now,
		},
		{
			TokenID:   sess.RefreshTokenID,
			SubjectID: sess.SubjectID,
			TokenType: domain.TokenTypeRefresh,
			Reason:    reason,
			ExpiresAt: sess.RefreshExpiresAt,
			CreatedAt: now,
		},
	}
	for _, e := range entries {
		if err := bl.AddToBlacklist(ctx, e); err != nil {
			return Internal(err)
		}
	}
	return nil
}

// SignOutEverywhere invalidates every token the subject holds by bumping its
// token version, and deactivates all of its sessions.
func (s *SessionService) SignOutEverywhere(ctx context.Context, p domain.Principal) error {
	l := slogx.FromContext(ctx)
	now := s.now()

	var ended int64
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Users().IncrementTokenVersion(ctx, p.Identity.ID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			return ErrUserNotFound
		case err != nil:
			return Internal(err)
		}
		ended, err = tx.Sessions().DeactivateAllForSubject(ctx, p.Identity.ID)
		if err != nil {
			return Internal(err)
		}
		return nil
	})
	if err != nil {
		return AsError(err)
	}

	writeAudit(ctx, s.Store.AuditLogs(), domain.AuditLog{
		SubjectID: p.Identity.ID,
		Action:    domain.AuditLogoutAll,
		Success:   true,
		FamilyID:  p.Session.FamilyID,
		DeviceID:  p.Session.DeviceID,
	}, now)

	l.Info("user signed out everywhere", slog.String("subject_id", p.Identity.ID), slog.Int64("sessions", ended))
	return nil
}
