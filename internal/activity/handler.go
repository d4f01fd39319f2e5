package activity

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"demogate/internal/access"
	"demogate/internal/activity/models"
	"demogate/internal/platform/middleware"
	dErrors "demogate/pkg/domain-errors"
	"demogate/pkg/httputil"
)

// Handler exposes the tracking and reporting endpoints.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler creates the activity handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the authenticated tracking routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/activity/track", h.HandleTrack)
	r.Post("/activity/track-batch", h.HandleTrackBatch)
	r.Get("/activity/me", h.HandleMySummary)
}

// RegisterAdmin mounts the admin reporting routes.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/activity/{accountID}/summary", h.HandleAccountSummary)
	r.Get("/admin/activity/{accountID}/events", h.HandleAccountEvents)
}

// trackRequest is one submitted event. The account is always taken from the
// verified session, never from the payload.
type trackRequest struct {
	EventType string         `json:"event_type"`
	Timestamp *time.Time     `json:"timestamp,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	DemoID    string         `json:"demo_id,omitempty"`
	PageURL   string         `json:"page_url,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

type trackBatchRequest struct {
	Events []trackRequest `json:"events"`
}

func (req *trackRequest) toEvent(r *http.Request, accountID string) *models.Event {
	ctx := r.Context()
	event := &models.Event{
		AccountID: accountID,
		Type:      models.EventType(req.EventType),
		SessionID: req.SessionID,
		DemoID:    req.DemoID,
		PageURL:   req.PageURL,
		Payload:   req.Data,
		IPAddress: middleware.ClientIP(ctx),
		UserAgent: middleware.UserAgent(ctx),
	}
	if req.Timestamp != nil {
		event.Timestamp = req.Timestamp.UTC()
	}
	return event
}

// HandleTrack implements POST /activity/track.
//
// Input: { "event_type": "page_view", "demo_id": "...", "data": {...} }
// Output: { "success": true, "data": { "event_id": "..." } }
func (h *Handler) HandleTrack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, ok := access.ClaimsFrom(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeTokenMissing, "missing authorization token"))
		return
	}

	req, ok := httputil.DecodeJSON[trackRequest](w, r, h.logger, ctx)
	if !ok {
		return
	}

	id, err := h.service.RecordEvent(ctx, req.toEvent(r, claims.AccountID))
	if err != nil {
		h.logger.WarnContext(ctx, "event rejected",
			"error", err,
			"account_id", claims.AccountID,
			"event_type", req.EventType,
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, "Event tracked", map[string]string{"event_id": id})
}

// HandleTrackBatch implements POST /activity/track-batch.
//
// An oversized batch is rejected wholesale; otherwise individual failures
// are reported per index alongside the tracked count.
func (h *Handler) HandleTrackBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, ok := access.ClaimsFrom(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeTokenMissing, "missing authorization token"))
		return
	}

	req, ok := httputil.DecodeJSON[trackBatchRequest](w, r, h.logger, ctx)
	if !ok {
		return
	}

	events := make([]*models.Event, 0, len(req.Events))
	for i := range req.Events {
		events = append(events, req.Events[i].toEvent(r, claims.AccountID))
	}

	result, err := h.service.RecordBatch(ctx, claims.AccountID, events)
	if err != nil {
		h.logger.WarnContext(ctx, "batch rejected",
			"error", err,
			"account_id", claims.AccountID,
			"batch_size", len(events),
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, "Batch processed", result)
}

// HandleMySummary implements GET /activity/me.
func (h *Handler) HandleMySummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, ok := access.ClaimsFrom(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeTokenMissing, "missing authorization token"))
		return
	}

	sum, err := h.service.Summarize(ctx, claims.AccountID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, "", sum)
}

// HandleAccountSummary implements GET /admin/activity/{accountID}/summary.
func (h *Handler) HandleAccountSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := chi.URLParam(r, "accountID")

	sum, err := h.service.Summarize(ctx, accountID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, "", sum)
}

// HandleAccountEvents implements GET /admin/activity/{accountID}/events.
//
// Query parameters: event_type, demo_id, session_id, from, to (RFC 3339),
// limit. The limit is clamped by the store.
func (h *Handler) HandleAccountEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := chi.URLParam(r, "accountID")

	filter, limit, err := parseEventQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	events, err := h.service.Query(ctx, accountID, filter, limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, "", map[string]any{
		"account_id": accountID,
		"events":     events,
		"count":      len(events),
	})
}

func parseEventQuery(r *http.Request) (models.Filter, int, error) {
	q := r.URL.Query()
	filter := models.Filter{
		Type:      models.EventType(q.Get("event_type")),
		DemoID:    q.Get("demo_id"),
		SessionID: q.Get("session_id"),
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return models.Filter{}, 0, dErrors.New(dErrors.CodeUnknownEventType, "unknown event type filter")
	}

	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return models.Filter{}, 0, dErrors.New(dErrors.CodeMalformedPayload, "invalid from timestamp")
		}
		filter.From = t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return models.Filter{}, 0, dErrors.New(dErrors.CodeMalformedPayload, "invalid to timestamp")
		}
		filter.To = t
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return models.Filter{}, 0, dErrors.New(dErrors.CodeMalformedPayload, "invalid limit")
		}
		limit = n
	}
	return filter, limit, nil
}
