package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/service"
	"github.com/aussiebroadwan/gatekeeper/pkg/authsdk"
	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
)

type AuditLogsHandler struct {
	Audit *service.AuditService
}

// ServeHTTP lists audit entries for one subject.
//
//	@Summary		List audit logs
//	@Description	Returns the newest audit entries of a subject. Requires the admin role and the audit:read permission.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			subject	query		string					true	"Subject id"
//	@Param			limit	query		int						false	"Maximum entries, capped at 50"
//	@Success		200		{object}	authsdk.AuditLogList	"Audit entries, newest first"
//	@Failure		400		{object}	authsdk.APIError		"Missing subject"
//	@Failure		401		{object}	authsdk.APIError		"Invalid or revoked access token"
//	@Failure		403		{object}	authsdk.APIError		"Insufficient role or permission"
//	@Failure		500		{object}	authsdk.APIError		"Internal server error"
//	@Router			/v1/admin/audit-logs [get].
func (h *AuditLogsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	subject := q.Get("subject")
	if subject == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			authsdk.ErrInvalidRequest.WriteError(w)
			return
		}
		limit = n
	}

	logs, err := h.Audit.ListBySubject(r.Context(), subject, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := authsdk.AuditLogList{Entries: make([]authsdk.AuditLogEntry, 0, len(logs))}
	for _, l := range logs {
		out.Entries = append(out.Entries, authsdk.AuditLogEntry{
			ID:        l.ID,
			SubjectID: l.SubjectID,
			Action:    string(l.Action),
			Success:   l.Success,
			FamilyID:  l.FamilyID,
			DeviceID:  l.DeviceID,
			IPAddress: l.IPAddress,
			Detail:    l.Detail,
			CreatedAt: l.CreatedAt,
		})
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, out)
}
