package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewHasher(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"zero uses default", 0, DefaultCost},
		{"negative uses default", -3, DefaultCost},
		{"below minimum clamps", 2, bcrypt.MinCost},
		{"above maximum clamps", 99, bcrypt.MaxCost},
		{"in range kept", 6, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, NewHasher(tt.in).Cost())
		})
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"empty password", ""},
		{"unicode password", "пароль🔒密码"},
		{"whitespace password", "   spaces   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := h.HashPassword(tt.password)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(hash, "$2a$"))

			ok, err := h.VerifyPassword(tt.password, hash)
			require.NoError(t, err)
			require.True(t, ok)

			ok, err = h.VerifyPassword(tt.password+"x", hash)
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestHashPasswordSalted(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	a, err := h.HashPassword("same")
	require.NoError(t, err)
	b, err := h.HashPassword("same")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestHashPasswordTooLong(t *testing.T) {
	_, err := NewHasher(bcrypt.MinCost).HashPassword(strings.Repeat("a", 73))
	require.ErrorIs(t, err, ErrHashing)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	for _, hash := range []string{"", "plain-text", "$argon2id$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA"} {
		ok, err := h.VerifyPassword("password", hash)
		require.False(t, ok)
		require.ErrorIs(t, err, ErrHashing)
	}
}
