package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default lifetimes used when the Codec is not given explicit TTLs.
const (
	// DefaultAccessTokenTTL is short so a stolen access token has a small blast radius.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL bounds how long a session family can be kept alive
	// through rotation without a fresh sign-in.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour

	// DefaultExpiringSoonThreshold is the window used by IsExpiringSoon.
	DefaultExpiringSoonThreshold = 5 * time.Minute
)

// TokenType separates access tokens from refresh tokens inside the payload so
// one can never be replayed as the other, even if secrets were misconfigured.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims is the payload embedded in every token issued by the Codec.
type Claims struct {
	jwt.RegisteredClaims

	// Email of the subject at issue time.
	Email string `json:"email,omitempty"`

	// Roles the subject held when the token was minted.
	Roles []string `json:"roles,omitempty"`

	// TokenVersion is compared against the subject's stored counter; a lower
	// value means the token predates a bulk invalidation.
	TokenVersion int64 `json:"token_version"`

	TokenType TokenType `json:"token_type"`
}

// TokenClaims is the caller-controlled portion of a token. Registered claims
// (iss, aud, iat, exp) are filled in by the Codec.
type TokenClaims struct {
	SubjectID    string
	Email        string
	Roles        []string
	TokenID      string
	TokenVersion int64
}

func newClaims(tc TokenClaims, typ TokenType, issuer, audience string, ttl time.Duration, now time.Time) Claims {
	c := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   tc.SubjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        tc.TokenID,
		},
		Email:        tc.Email,
		Roles:        slices.Clone(tc.Roles),
		TokenVersion: tc.TokenVersion,
		TokenType:    typ,
	}
	if audience != "" {
		c.Audience = jwt.ClaimStrings{audience}
	}
	return c
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// Expiry returns the "exp" claim in UTC or the zero time when absent.
func (c *Claims) Expiry() time.Time {
	if c == nil || c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time.UTC()
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateAudience checks that the expected audience is present.
func (c *Claims) ValidateAudience(expected string) error {
	if expected == "" {
		return nil
	}
	if !slices.Contains(c.Audience, expected) {
		return ErrAudience
	}
	return nil
}
