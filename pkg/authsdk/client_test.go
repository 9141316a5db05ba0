package authsdk_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/gatekeeper/pkg/authsdk"
	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestAPIErrorIs(t *testing.T) {
	err := error(&authsdk.APIError{StatusCode: 401, Code: authsdk.ErrorCodeTokenRevoked, Message: "x"})
	require.ErrorIs(t, err, authsdk.ErrTokenRevoked)
	require.NotErrorIs(t, err, authsdk.ErrSignInFailed)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	authsdk.ErrSignInFailed.WriteError(rec)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
	require.JSONEq(t, `{"error":"sign_in_failed","message":"sign-in failed"}`, rec.Body.String())
}

func TestClientDecodesErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/auth/sign-in":
			authsdk.ErrSignInFailed.WriteError(w)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	client := authsdk.NewSDKClient(srv.URL + "/")

	_, err := client.SignIn(context.Background(), authsdk.SignInRequest{Email: "a@example.com", Password: "x"})
	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.ErrorIs(t, err, authsdk.ErrSignInFailed)

	_, err = client.GetLiveness(context.Background())
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Equal(t, authsdk.ErrorCodeInternal, apiErr.Code)
}

func signTestToken(t *testing.T, ttl time.Duration, id string) string {
	t.Helper()
	codec, err := jwtx.NewCodec(jwtx.Options{
		AccessSecret:  []byte("a"),
		RefreshSecret: []byte("b"),
		AccessTTL:     ttl,
	})
	require.NoError(t, err)
	token, _, err := codec.SignAccessToken(jwtx.TokenClaims{SubjectID: "user-1", TokenID: id})
	require.NoError(t, err)
	return token
}

func TestSessionRotatesExpiringToken(t *testing.T) {
	fresh := signTestToken(t, time.Hour, "fresh")
	var refreshes atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/auth/refresh":
			refreshes.Add(1)
			var req authsdk.RefreshRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "refresh-1", req.RefreshToken)
			_ = json.NewEncoder(w).Encode(authsdk.TokenResponse{
				AccessToken:  fresh,
				RefreshToken: "refresh-2",
				SubjectID:    "user-1",
			})
		case "/v1/auth/me":
			require.Equal(t, "Bearer "+fresh, r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(authsdk.MeResponse{Identity: authsdk.IdentityInfo{ID: "user-1"}})
		case "/v1/auth/sign-out":
			_ = json.NewEncoder(w).Encode(authsdk.SignOutResponse{Success: true})
		}
	}))
	defer srv.Close()

	client := authsdk.NewSDKClient(srv.URL)
	session := client.NewSessionFromTokens(authsdk.TokenResponse{
		AccessToken:  signTestToken(t, time.Minute, "stale"),
		RefreshToken: "refresh-1",
		SubjectID:    "user-1",
	})

	me, err := session.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, "user-1", me.Identity.ID)

	_, err = session.Me(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, refreshes.Load())

	require.NoError(t, session.SignOut(context.Background()))
	_, err = session.AccessToken(context.Background())
	require.ErrorIs(t, err, authsdk.ErrSessionClosed)
}
