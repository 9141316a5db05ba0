package http

import (
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/service"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

// writeError renders err as an authsdk.APIError. Internal detail is logged
// and never written to the response.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := service.AsError(err)
	if e.Kind == service.KindInternal && e.Err != nil {
		slogx.FromContext(r.Context()).Error("request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", e.Err),
		)
	}
	e.APIError().WriteError(w)
}
