package demo

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"demogate/internal/access"
	"demogate/internal/token"
	"demogate/pkg/httputil"
)

// Handler exposes the browsable catalog and the admin catalog routes.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler creates the catalog handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the authenticated catalog routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/catalog/demos", h.HandleList)
	r.Get("/catalog/demos/{demoID}", h.HandleGet)
}

// RegisterAdmin mounts the admin catalog management routes.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/demos", h.HandleCreate)
	r.Get("/admin/demos", h.HandleAdminList)
	r.Put("/admin/demos/{demoID}", h.HandleUpdate)
	r.Delete("/admin/demos/{demoID}", h.HandleDelete)
	r.Post("/admin/demos/{demoID}/restore", h.HandleRestore)
}

// HandleList implements GET /catalog/demos. Only active entries are shown
// to non-admin callers.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.List(r.Context(), false)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, "", map[string]any{
		"demos": views,
		"count": len(views),
	})
}

// HandleGet implements GET /catalog/demos/{demoID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Get(r.Context(), chi.URLParam(r, "demoID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, "", view)
}

// HandleAdminList implements GET /admin/demos. Soft-deleted entries are
// included when include_inactive=true.
func (h *Handler) HandleAdminList(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	views, err := h.service.List(r.Context(), includeInactive)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, "", map[string]any{
		"demos": views,
		"count": len(views),
	})
}

// HandleCreate implements POST /admin/demos.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, _ := access.ClaimsFrom(ctx)

	req, ok := httputil.DecodeJSON[CreateRequest](w, r, h.logger, ctx)
	if !ok {
		return
	}

	view, err := h.service.Create(ctx, *req, actorID(claims))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusCreated, "Demo created", view)
}

// HandleUpdate implements PUT /admin/demos/{demoID}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, _ := access.ClaimsFrom(ctx)

	req, ok := httputil.DecodeJSON[UpdateRequest](w, r, h.logger, ctx)
	if !ok {
		return
	}

	view, err := h.service.Update(ctx, chi.URLParam(r, "demoID"), *req, actorID(claims))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, "Demo updated", view)
}

// HandleDelete implements DELETE /admin/demos/{demoID}. Entries are only
// ever soft-removed; activity history keeps referring to them.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, _ := access.ClaimsFrom(ctx)

	if err := h.service.Delete(ctx, chi.URLParam(r, "demoID"), actorID(claims)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, "Demo deleted", nil)
}

// HandleRestore implements POST /admin/demos/{demoID}/restore.
func (h *Handler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, _ := access.ClaimsFrom(ctx)

	view, err := h.service.Restore(ctx, chi.URLParam(r, "demoID"), actorID(claims))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, "Demo restored", view)
}

func actorID(claims *token.Claims) string {
	if claims == nil {
		return ""
	}
	return claims.AccountID
}
