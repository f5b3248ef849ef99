package suggestions

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/JaimeStill/chronicle/pkg/handlers"
	"github.com/JaimeStill/chronicle/pkg/pagination"
	"github.com/JaimeStill/chronicle/pkg/routes"
)

// Handler provides HTTP endpoints for suggestion lifecycle operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "suggestions"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for suggestion endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/suggestions",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/statuses", Handler: h.Statuses},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "POST", Pattern: "/{id}/approve", Handler: h.Approve},
			{Method: "POST", Pattern: "/{id}/reject", Handler: h.Reject},
			{Method: "DELETE", Pattern: "/stale", Handler: h.ClearStale},
		},
	}
}

// List returns a paginated list of suggestions with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Statuses returns the list of valid lifecycle states.
func (h *Handler) Statuses(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, Statuses())
}

// Find returns a single suggestion by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	s, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}

// Search accepts a JSON body with pagination and filter criteria and returns
// matching suggestions.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Approve transitions a pending suggestion to approved and returns the
// emitted work record. Approval failures surface with their taxonomy kind:
// 404 for unknown ids, 409 for non-pending suggestions.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	var cmd ApproveCommand
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil && err.Error() != "EOF" {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
	}

	rec, err := h.sys.Approve(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
}

// Reject transitions a pending suggestion to rejected with an optional reason.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	var cmd RejectCommand
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil && err.Error() != "EOF" {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
	}

	if err := h.sys.Reject(r.Context(), id, cmd); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": string(StatusRejected)})
}

// ClearStale removes non-pending suggestions older than the days query
// parameter (default 30).
func (h *Handler) ClearStale(w http.ResponseWriter, r *http.Request) {
	days := 30
	if d := r.URL.Query().Get("days"); d != "" {
		v, err := strconv.Atoi(d)
		if err != nil || v < 1 {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidStatus)
			return
		}
		days = v
	}

	removed, err := h.sys.ClearStale(r.Context(), days)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]int{"removed": removed})
}
