package http

import (
	"net/http"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/service"
	"github.com/aussiebroadwan/gatekeeper/pkg/authsdk"
	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

// SessionHandler serves the sign-in, refresh and sign-out endpoints.
type SessionHandler struct {
	Sessions *service.SessionService
	ClientIP httpx.KeyExtractor
}

// HandleSignIn exchanges credentials for a token pair.
//
//	@Summary		Sign in
//	@Description	Exchanges an email and password for an access and refresh token pair.
//	@Description	Unknown emails and wrong passwords produce the same response. Callers already holding a valid access token are rejected.
//	@Tags			Sessions
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.SignInRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.TokenResponse	"Token pair"
//	@Failure		400		{object}	authsdk.APIError		"Malformed request body"
//	@Failure		401		{object}	authsdk.APIError		"Sign-in failed, account inactive or suspended"
//	@Failure		403		{object}	authsdk.APIError		"Already authenticated"
//	@Failure		429		{object}	authsdk.APIError		"Too many requests"
//	@Failure		500		{object}	authsdk.APIError		"Internal server error"
//	@Router			/v1/auth/sign-in [post].
func (h *SessionHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req authsdk.SignInRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		slogx.FromContext(r.Context()).Debug("invalid sign-in body", "err", err)
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.Sessions.SignIn(r.Context(), service.SignInRequest{
		Email:     req.Email,
		Password:  req.Password,
		OTP:       req.OTP,
		IP:        h.ClientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse(pair))
}

// HandleRefresh rotates a refresh token.
//
//	@Summary		Refresh tokens
//	@Description	Retires the presented refresh token and issues the next token pair of the same session family.
//	@Description	Presenting a retired refresh token marks the whole family as compromised.
//	@Tags			Sessions
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	authsdk.TokenResponse	"Token pair"
//	@Failure		400		{object}	authsdk.APIError		"Malformed request body"
//	@Failure		401		{object}	authsdk.APIError		"Invalid, revoked or reused refresh token"
//	@Failure		429		{object}	authsdk.APIError		"Too many requests"
//	@Failure		500		{object}	authsdk.APIError		"Internal server error"
//	@Router			/v1/auth/refresh [post].
func (h *SessionHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RefreshRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil || req.RefreshToken == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.Sessions.Refresh(r.Context(), service.RefreshRequest{
		RefreshToken: req.RefreshToken,
		IP:           h.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse(pair))
}

// HandleSignOut ends the current session.
//
//	@Summary		Sign out
//	@Description	Deactivates the session behind the access token and revokes both of its tokens.
//	@Tags			Sessions
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.SignOutResponse	"Signed out"
//	@Failure		401	{object}	authsdk.APIError		"Invalid or revoked access token"
//	@Failure		429	{object}	authsdk.APIError		"Too many requests"
//	@Failure		500	{object}	authsdk.APIError		"Internal server error"
//	@Router			/v1/auth/sign-out [post].
func (h *SessionHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r.Context())
	if !ok {
		writeError(w, r, service.ErrUnauthenticated)
		return
	}

	if err := h.Sessions.SignOut(r.Context(), p); err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.SignOutResponse{Success: true})
}

// HandleSignOutAll invalidates every token of the subject.
//
//	@Summary		Sign out everywhere
//	@Description	Bumps the subject's token version and deactivates all of its sessions.
//	@Tags			Sessions
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.SignOutResponse	"Signed out"
//	@Failure		401	{object}	authsdk.APIError		"Invalid or revoked access token"
//	@Failure		500	{object}	authsdk.APIError		"Internal server error"
//	@Router			/v1/auth/sign-out-all [post].
func (h *SessionHandler) HandleSignOutAll(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r.Context())
	if !ok {
		writeError(w, r, service.ErrUnauthenticated)
		return
	}

	if err := h.Sessions.SignOutEverywhere(r.Context(), p); err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.SignOutResponse{Success: true})
}

func tokenResponse(pair domain.TokenPair) authsdk.TokenResponse {
	return authsdk.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		SubjectID:    pair.SubjectID,
		TokenType:    "Bearer",
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
	}
}
