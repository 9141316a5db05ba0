package jwtx

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrSigning       = errors.New("jwtx: signing failed")
	ErrMissingSecret = errors.New("jwtx: access and refresh secrets are required")
	ErrSharedSecret  = errors.New("jwtx: access and refresh secrets must differ")
)

// Options configures a Codec.
type Options struct {
	// AccessSecret and RefreshSecret are HMAC keys. They must be distinct.
	AccessSecret  []byte
	RefreshSecret []byte

	// Issuer and Audience are embedded on sign and enforced on verify.
	// Empty means "don't care".
	Issuer   string
	Audience string

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Leeway allows small clock skew when validating exp/nbf/iat.
	Leeway time.Duration

	// Now overrides the clock, mostly for tests.
	Now func() time.Time
}

// Codec signs and verifies HS256 access and refresh tokens.
type Codec struct {
	opts Options
}

// NewCodec validates opts and fills in defaults.
func NewCodec(opts Options) (*Codec, error) {
	if len(opts.AccessSecret) == 0 || len(opts.RefreshSecret) == 0 {
		return nil, ErrMissingSecret
	}
	if bytes.Equal(opts.AccessSecret, opts.RefreshSecret) {
		return nil, ErrSharedSecret
	}
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = DefaultAccessTokenTTL
	}
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = DefaultRefreshTokenTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Codec{opts: opts}, nil
}

func (c *Codec) AccessTTL() time.Duration  { return c.opts.AccessTTL }
func (c *Codec) RefreshTTL() time.Duration { return c.opts.RefreshTTL }

// SignAccessToken mints an access token and returns it with the exact claims
// that were signed.
func (c *Codec) SignAccessToken(tc TokenClaims) (string, Claims, error) {
	return c.sign(tc, TokenTypeAccess, c.opts.AccessSecret, c.opts.AccessTTL)
}

// SignRefreshToken mints a refresh token.
func (c *Codec) SignRefreshToken(tc TokenClaims) (string, Claims, error) {
	return c.sign(tc, TokenTypeRefresh, c.opts.RefreshSecret, c.opts.RefreshTTL)
}

func (c *Codec) sign(tc TokenClaims, typ TokenType, secret []byte, ttl time.Duration) (string, Claims, error) {
	if tc.TokenID == "" {
		return "", Claims{}, ErrMissingID
	}
	now := c.opts.Now().UTC().Truncate(time.Second)
	claims := newClaims(tc, typ, c.opts.Issuer, c.opts.Audience, ttl, now)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("%w: %w", ErrSigning, err)
	}
	return signed, claims, nil
}
