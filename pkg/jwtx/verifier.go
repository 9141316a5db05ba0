package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrExpired is returned only when the token's expiry has passed. Every
	// other verification failure is reported as ErrInvalid.
	ErrExpired = errors.New("jwtx: token expired")
	ErrInvalid = errors.New("jwtx: token invalid")

	ErrIssuer    = errors.New("jwtx: issuer mismatch")
	ErrAudience  = errors.New("jwtx: audience mismatch")
	ErrTokenType = errors.New("jwtx: token type mismatch")
	ErrMissingID = errors.New("jwtx: token missing jti")
)

// VerifyAccessToken verifies an access token against the access secret.
func (c *Codec) VerifyAccessToken(token string) (*Claims, error) {
	return c.verify(token, c.opts.AccessSecret, TokenTypeAccess)
}

// VerifyRefreshToken verifies a refresh token against the refresh secret.
func (c *Codec) VerifyRefreshToken(token string) (*Claims, error) {
	return c.verify(token, c.opts.RefreshSecret, TokenTypeRefresh)
}

func (c *Codec) verify(token string, secret []byte, typ TokenType) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(c.opts.Leeway),
		jwt.WithTimeFunc(c.opts.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if err := claims.ValidateIssuer(c.opts.Issuer); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := claims.ValidateAudience(c.opts.Audience); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if claims.TokenType != typ {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, ErrTokenType)
	}
	return claims, nil
}

// DecodeUnsafe extracts claims without checking the signature. The result
// must only be used for bookkeeping (expiry display, blacklist TTLs), never
// for an authorization decision.
func DecodeUnsafe(token string) (*Claims, bool) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}

// IsExpiringSoon reports whether the token has at most threshold left to
// live, using the Codec's clock.
func (c *Codec) IsExpiringSoon(token string, threshold time.Duration) bool {
	return IsExpiringSoon(token, threshold, c.opts.Now())
}

// IsExpiringSoon reports whether token expires within threshold of now.
// Undecodable tokens, or tokens without an expiry, count as expiring. A
// non-positive threshold selects DefaultExpiringSoonThreshold.
func IsExpiringSoon(token string, threshold time.Duration, now time.Time) bool {
	if threshold <= 0 {
		threshold = DefaultExpiringSoonThreshold
	}
	claims, ok := DecodeUnsafe(token)
	if !ok || claims.ExpiresAt == nil {
		return true
	}
	return claims.Expiry().Sub(now) <= threshold
}
