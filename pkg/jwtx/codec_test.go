package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestCodec(t *testing.T, clock *fakeClock) *jwtx.Codec {
	t.Helper()
	codec, err := jwtx.NewCodec(jwtx.Options{
		AccessSecret:  []byte("access-secret-for-tests"),
		RefreshSecret: []byte("refresh-secret-for-tests"),
		Issuer:        "gatekeeper",
		Audience:      "web",
		Now:           clock.Now,
	})
	require.NoError(t, err)
	return codec
}

func sampleClaims() jwtx.TokenClaims {
	return jwtx.TokenClaims{
		SubjectID:    "user-1",
		Email:        "alice@example.com",
		Roles:        []string{"admin", "member"},
		TokenID:      "tok-1",
		TokenVersion: 3,
	}
}

func TestNewCodec(t *testing.T) {
	t.Run("requires both secrets", func(t *testing.T) {
		_, err := jwtx.NewCodec(jwtx.Options{AccessSecret: []byte("a")})
		require.ErrorIs(t, err, jwtx.ErrMissingSecret)
	})

	t.Run("rejects shared secret", func(t *testing.T) {
		_, err := jwtx.NewCodec(jwtx.Options{AccessSecret: []byte("same"), RefreshSecret: []byte("same")})
		require.ErrorIs(t, err, jwtx.ErrSharedSecret)
	})

	t.Run("applies default ttls", func(t *testing.T) {
		codec, err := jwtx.NewCodec(jwtx.Options{AccessSecret: []byte("a"), RefreshSecret: []byte("b")})
		require.NoError(t, err)
		require.Equal(t, jwtx.DefaultAccessTokenTTL, codec.AccessTTL())
		require.Equal(t, jwtx.DefaultRefreshTokenTTL, codec.RefreshTTL())
	})
}

func TestCodecRoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	codec := newTestCodec(t, clock)

	t.Run("access token returns embedded claims", func(t *testing.T) {
		token, signed, err := codec.SignAccessToken(sampleClaims())
		require.NoError(t, err)

		got, err := codec.VerifyAccessToken(token)
		require.NoError(t, err)
		require.Equal(t, "user-1", got.Subject)
		require.Equal(t, "alice@example.com", got.Email)
		require.Equal(t, []string{"admin", "member"}, got.Roles)
		require.Equal(t, "tok-1", got.ID)
		require.EqualValues(t, 3, got.TokenVersion)
		require.Equal(t, jwtx.TokenTypeAccess, got.TokenType)
		require.True(t, signed.Expiry().Equal(got.Expiry()))
		require.Equal(t, clock.now.Add(jwtx.DefaultAccessTokenTTL), got.Expiry())
	})

	t.Run("refresh token uses its own ttl", func(t *testing.T) {
		token, _, err := codec.SignRefreshToken(sampleClaims())
		require.NoError(t, err)

		got, err := codec.VerifyRefreshToken(token)
		require.NoError(t, err)
		require.Equal(t, clock.now.Add(jwtx.DefaultRefreshTokenTTL), got.Expiry())
	})

	t.Run("missing token id is refused", func(t *testing.T) {
		tc := sampleClaims()
		tc.TokenID = ""
		_, _, err := codec.SignAccessToken(tc)
		require.ErrorIs(t, err, jwtx.ErrMissingID)
	})
}

func TestCodecVerifyFailures(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	codec := newTestCodec(t, clock)

	access, _, err := codec.SignAccessToken(sampleClaims())
	require.NoError(t, err)
	refresh, _, err := codec.SignRefreshToken(sampleClaims())
	require.NoError(t, err)

	t.Run("expired is distinct from invalid", func(t *testing.T) {
		later := &fakeClock{now: clock.now.Add(jwtx.DefaultAccessTokenTTL + time.Second)}
		_, err := newTestCodec(t, later).VerifyAccessToken(access)
		require.ErrorIs(t, err, jwtx.ErrExpired)
		require.NotErrorIs(t, err, jwtx.ErrInvalid)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		_, err := codec.VerifyAccessToken(refresh)
		require.ErrorIs(t, err, jwtx.ErrInvalid)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := codec.VerifyRefreshToken(access)
		require.ErrorIs(t, err, jwtx.ErrInvalid)
	})

	t.Run("tampered signature", func(t *testing.T) {
		parts := strings.Split(access, ".")
		parts[2] = strings.Repeat("A", len(parts[2]))
		_, err := codec.VerifyAccessToken(strings.Join(parts, "."))
		require.ErrorIs(t, err, jwtx.ErrInvalid)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := codec.VerifyAccessToken("not-a-token")
		require.ErrorIs(t, err, jwtx.ErrInvalid)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other, err := jwtx.NewCodec(jwtx.Options{
			AccessSecret:  []byte("access-secret-for-tests"),
			RefreshSecret: []byte("refresh-secret-for-tests"),
			Issuer:        "impostor",
			Audience:      "web",
			Now:           clock.Now,
		})
		require.NoError(t, err)
		token, _, err := other.SignAccessToken(sampleClaims())
		require.NoError(t, err)

		_, err = codec.VerifyAccessToken(token)
		require.ErrorIs(t, err, jwtx.ErrInvalid)
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})

	t.Run("wrong audience", func(t *testing.T) {
		other, err := jwtx.NewCodec(jwtx.Options{
			AccessSecret:  []byte("access-secret-for-tests"),
			RefreshSecret: []byte("refresh-secret-for-tests"),
			Issuer:        "gatekeeper",
			Audience:      "mobile",
			Now:           clock.Now,
		})
		require.NoError(t, err)
		token, _, err := other.SignAccessToken(sampleClaims())
		require.NoError(t, err)

		_, err = codec.VerifyAccessToken(token)
		require.ErrorIs(t, err, jwtx.ErrAudience)
	})

	t.Run("alg none rejected", func(t *testing.T) {
		claims := jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "gatekeeper",
				Audience:  jwt.ClaimStrings{"web"},
				Subject:   "user-1",
				ID:        "tok-1",
				ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
			},
			TokenType: jwtx.TokenTypeAccess,
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = codec.VerifyAccessToken(token)
		require.ErrorIs(t, err, jwtx.ErrInvalid)
	})
}

func TestDecodeUnsafe(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	codec := newTestCodec(t, clock)

	token, _, err := codec.SignAccessToken(sampleClaims())
	require.NoError(t, err)

	claims, ok := jwtx.DecodeUnsafe(token)
	require.True(t, ok)
	require.Equal(t, "tok-1", claims.ID)

	_, ok = jwtx.DecodeUnsafe("garbage")
	require.False(t, ok)
}

func TestIsExpiringSoon(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	codec := newTestCodec(t, clock)

	token, _, err := codec.SignAccessToken(sampleClaims())
	require.NoError(t, err)

	require.False(t, codec.IsExpiringSoon(token, 0))

	clock.Advance(jwtx.DefaultAccessTokenTTL - 5*time.Minute)
	require.True(t, codec.IsExpiringSoon(token, 0))
	require.False(t, codec.IsExpiringSoon(token, time.Minute))

	require.True(t, codec.IsExpiringSoon("garbage", 0))
}
