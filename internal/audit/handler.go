package audit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	dErrors "demogate/pkg/domain-errors"
	"demogate/pkg/httputil"
)

// Handler exposes the trail review endpoint.
type Handler struct {
	recorder *Recorder
	logger   *slog.Logger
}

// NewHandler creates the audit handler.
func NewHandler(recorder *Recorder, logger *slog.Logger) *Handler {
	return &Handler{recorder: recorder, logger: logger}
}

// RegisterAdmin mounts the admin trail routes.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/audit", h.HandleQuery)
}

// HandleQuery implements GET /admin/audit.
//
// Query parameters: action, actor_id, from, to (RFC 3339), limit.
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	filter := Filter{
		Action:  Action(q.Get("action")),
		ActorID: q.Get("actor_id"),
	}
	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeMalformedPayload, "invalid from timestamp"))
			return
		}
		filter.From = t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeMalformedPayload, "invalid to timestamp"))
			return
		}
		filter.To = t
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeMalformedPayload, "invalid limit"))
			return
		}
		limit = n
	}

	entries, err := h.recorder.Query(ctx, filter, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "audit query failed", "error", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodePersistence, "query audit trail"))
		return
	}
	httputil.WriteData(w, http.StatusOK, "", map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}
