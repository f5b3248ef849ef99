package privacy

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/chronicle/pkg/handlers"
	"github.com/JaimeStill/chronicle/pkg/pagination"
	"github.com/JaimeStill/chronicle/pkg/routes"
)

// Handler provides HTTP endpoints for the audit trail and privacy controls.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "privacy"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for privacy endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/privacy",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/audit", Handler: h.Audit},
			{Method: "GET", Pattern: "/audit/actions", Handler: h.Actions},
			{Method: "GET", Pattern: "/export", Handler: h.Export},
			{Method: "DELETE", Pattern: "/data", Handler: h.Erase},
		},
	}
}

// Audit returns a paginated view of the audit trail, newest first.
func (h *Handler) Audit(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	result, err := h.sys.Audit(r.Context(), page)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Actions returns the valid audit action values.
func (h *Handler) Actions(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, Actions())
}

// Export returns a complete copy of the user's stored data.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	bundle, err := h.sys.Export(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="chronicle-export.json"`)
	handlers.RespondJSON(w, http.StatusOK, bundle)
}

// Erase removes all stored user data after recording the deletion intent.
func (h *Handler) Erase(w http.ResponseWriter, r *http.Request) {
	summary, err := h.sys.Erase(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, summary)
}
