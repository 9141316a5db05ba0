package http

import (
	"net/http"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/service"
	"github.com/aussiebroadwan/gatekeeper/pkg/authsdk"
	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
)

// MeHandler godoc
//
//	@Summary		Current identity
//	@Description	Returns the authenticated identity and the session descriptor of the presented access token.
//	@Tags			Sessions
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.MeResponse	"Identity and session"
//	@Failure		401	{object}	authsdk.APIError	"Invalid or revoked access token"
//	@Failure		500	{object}	authsdk.APIError	"Internal server error"
//	@Router			/v1/auth/me [get].
func MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFrom(r.Context())
		if !ok {
			writeError(w, r, service.ErrUnauthenticated)
			return
		}

		roles := p.Identity.Roles
		if roles == nil {
			roles = []string{}
		}

		httpx.NoCache(w)
		httpx.WriteJSON(w, http.StatusOK, authsdk.MeResponse{
			Identity: authsdk.IdentityInfo{
				ID:         p.Identity.ID,
				ExternalID: p.Identity.ExternalID,
				Email:      p.Identity.Email,
				IsActive:   p.Identity.IsActive,
				IsVerified: p.Identity.IsVerified,
				Roles:      roles,
			},
			Session: authsdk.SessionInfo{
				TokenID:    p.Session.TokenID,
				FamilyID:   p.Session.FamilyID,
				DeviceID:   p.Session.DeviceID,
				Generation: p.Session.Generation,
			},
		})
	}
}
