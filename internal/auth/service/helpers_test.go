package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/gatekeeper/pkg/cryptox"
	"github.com/aussiebroadwan/gatekeeper/pkg/idx"
	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const (
	testAccessSecret  = "access-secret-for-service-tests"
	testRefreshSecret = "refresh-secret-for-service-tests"
	testIssuer        = "gatekeeper"
	testAudience      = "web"
	testUserAgent     = "gatekeeper-tests/1.0"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	store    *sqlite.Store
	clock    *fakeClock
	codec    *jwtx.Codec
	hasher   *cryptox.Hasher
	guard    *Guard
	sessions *SessionService
	limiter  *RateLimiter
	policy   *AccessPolicy
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "auth.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	clock := &fakeClock{now: time.Now().UTC().Truncate(time.Second)}
	codec, err := jwtx.NewCodec(jwtx.Options{
		AccessSecret:  []byte(testAccessSecret),
		RefreshSecret: []byte(testRefreshSecret),
		Issuer:        testIssuer,
		Audience:      testAudience,
		Now:           clock.Now,
	})
	require.NoError(t, err)

	hasher := cryptox.NewHasher(4)

	return &testEnv{
		store:    st,
		clock:    clock,
		codec:    codec,
		hasher:   hasher,
		guard:    &Guard{Codec: codec, Store: st, Now: clock.Now},
		sessions: &SessionService{Codec: codec, Hasher: hasher, Store: st, Now: clock.Now},
		limiter:  &RateLimiter{Windows: st.RateWindows(), Codec: codec, Now: clock.Now},
		policy:   &AccessPolicy{Store: st},
	}
}

func (e *testEnv) createUser(t *testing.T, email, password string, mutate ...func(*domain.User)) domain.User {
	t.Helper()

	hash, err := e.hasher.HashPassword(password)
	require.NoError(t, err)

	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		IsVerified:   true,
	}
	for _, fn := range mutate {
		fn(&u)
	}
	require.NoError(t, e.store.Users().CreateUser(context.Background(), u))
	return u
}

func (e *testEnv) signIn(t *testing.T, email, password string) domain.TokenPair {
	t.Helper()

	pair, err := e.sessions.SignIn(context.Background(), SignInRequest{
		Email:     email,
		Password:  password,
		IP:        "10.0.0.1",
		UserAgent: testUserAgent,
	})
	require.NoError(t, err)
	return pair
}

func (e *testEnv) authenticate(token string) (domain.Principal, error) {
	return e.guard.Authenticate(context.Background(), AuthRequest{
		Authorization: bearer(token),
		IP:            "10.0.0.2",
	})
}

func bearer(token string) string { return "Bearer " + token }
