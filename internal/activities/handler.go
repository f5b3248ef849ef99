package activities

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/JaimeStill/chronicle/pkg/handlers"
	"github.com/JaimeStill/chronicle/pkg/routes"
	"github.com/google/uuid"
)

// Handler provides HTTP endpoints for the activity intake boundary.
type Handler struct {
	queue  *Queue
	logger *slog.Logger
}

// QueueStatus reports the queue's current depth and flush history.
type QueueStatus struct {
	Depth     int        `json:"depth"`
	LastFlush *time.Time `json:"last_flush,omitempty"`
}

// NewHandler creates a Handler for the given queue.
func NewHandler(queue *Queue, logger *slog.Logger) *Handler {
	return &Handler{
		queue:  queue,
		logger: logger.With("handler", "activities"),
	}
}

// Routes returns the route group definition for activity endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/activities",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Submit},
			{Method: "GET", Pattern: "/queue", Handler: h.Queue},
			{Method: "POST", Pattern: "/flush", Handler: h.Flush},
		},
	}
}

// Submit accepts a normalized activity from a source connector and enqueues
// it for analysis. Returns 202 immediately; analysis happens on the next
// flush cycle.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var a Activity
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidActivity)
		return
	}

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	if err := h.queue.Submit(a); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusAccepted, map[string]any{
		"id":    a.ID,
		"depth": h.queue.Depth(),
	})
}

// Queue reports the current queue depth and last flush time.
func (h *Handler) Queue(w http.ResponseWriter, r *http.Request) {
	status := QueueStatus{Depth: h.queue.Depth()}
	if t := h.queue.LastFlush(); !t.IsZero() {
		status.LastFlush = &t
	}
	handlers.RespondJSON(w, http.StatusOK, status)
}

// Flush wakes the flush loop immediately. The flush itself remains
// asynchronous and serialized with any in-flight batch.
func (h *Handler) Flush(w http.ResponseWriter, r *http.Request) {
	h.queue.Kick()
	handlers.RespondJSON(w, http.StatusAccepted, map[string]string{"status": "flush scheduled"})
}
