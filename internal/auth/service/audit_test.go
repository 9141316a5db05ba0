package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestAuditServiceListBySubject(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com", "pw")

	env.signIn(t, user.Email, "pw")
	_, err := env.sessions.SignIn(ctx, SignInRequest{Email: user.Email, Password: "wrong"})
	require.ErrorIs(t, err, ErrSignInFailed)

	svc := &AuditService{Store: env.store}
	logs, err := svc.ListBySubject(ctx, user.ID, 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	var failures int
	for _, l := range logs {
		require.Equal(t, domain.AuditLogin, l.Action)
		if !l.Success {
			failures++
			require.Equal(t, "wrong password", l.Detail)
		}
	}
	require.Equal(t, 1, failures)
}
