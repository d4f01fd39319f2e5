package account

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"demogate/internal/access"
	"demogate/internal/token"
	dErrors "demogate/pkg/domain-errors"
	"demogate/pkg/httputil"
)

// Handler exposes authentication, catalog access, and admin account routes.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler creates the account handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the unauthenticated routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
	r.Post("/auth/validate", h.HandleValidate)
}

// Register mounts the authenticated routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/logout", h.HandleLogout)
	r.Get("/catalog/access", h.HandleAccessList)
	r.Post("/catalog/check-access", h.HandleCheckAccess)
}

// RegisterAdmin mounts the admin account management routes.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/accounts", h.HandleCreate)
	r.Get("/admin/accounts", h.HandleList)
	r.Get("/admin/accounts/{accountID}", h.HandleGet)
	r.Put("/admin/accounts/{accountID}", h.HandleUpdate)
	r.Delete("/admin/accounts/{accountID}", h.HandleDeactivate)
	r.Post("/admin/accounts/{accountID}/reactivate", h.HandleReactivate)
}

// HandleLogin implements POST /auth/login.
//
// Input: { "user_id": "jane-doe", "password": "..." }
// Output: { "success": true, "data": { "token": "...", "user": {...} } }
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeJSON[LoginRequest](w, r, h.logger, ctx)
	if !ok {
		return
	}

	session, err := h.service.Login(ctx, *req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, "Login successful", session)
}

// HandleValidate implements POST /auth/validate. The token comes from the
// Authorization header; a JSON body {"token": "..."} is accepted as a
// fallback for clients that cannot set headers.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw := BearerToken(r)
	if raw == "" {
		if req, ok := httputil.DecodeJSON[struct {
			Token string `json:"token"`
		}](w, r, h.logger, ctx); ok {
			raw = req.Token
		} else {
			return
		}
	}

	info, err := h.service.ValidateSession(ctx, raw)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, "Token is valid", info)
}

// HandleLogout implements POST /auth/logout. Tokens are stateless; this
// endpoint only leaves a trail entry.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, _ := access.ClaimsFrom(ctx)
	h.service.Logout(ctx, claims)
	httputil.WriteData(w, http.StatusOK, "Logged out", nil)
}

// HandleAccessList implements GET /catalog/access.
func (h *Handler) HandleAccessList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, ok := access.ClaimsFrom(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeTokenMissing, "missing authorization token"))
		return
	}

	accessList, quickAccess, err := h.service.AccessibleDemos(ctx, claims)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, "", map[string]any{
		"access":       accessList,
		"quick_access": quickAccess,
	})
}

// HandleCheckAccess implements POST /catalog/check-access.
//
// Input: { "demo_id": "demo-alpha" }
// Output: { "success": true, "data": { "demo_id": "...", "has_access": true } }
func (h *Handler) HandleCheckAccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, ok := access.ClaimsFrom(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeTokenMissing, "missing authorization token"))
		return
	}

	req, ok := httputil.DecodeJSON[struct {
		DemoID string `json:"demo_id"`
	}](w, r, h.logger, ctx)
	if !ok {
		return
	}

	allowed, err := h.service.CheckDemoAccess(ctx, claims, NormalizeID(req.DemoID))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, "", map[string]any{
		"demo_id":    NormalizeID(req.DemoID),
		"has_access": allowed,
	})
}

// HandleCreate implements POST /admin/accounts.
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
	httputil.WriteData(w, http.StatusCreated, "Account created", view)
}

// HandleList implements GET /admin/accounts. Pass include_inactive=true to
// include deactivated accounts.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	views, err := h.service.List(ctx, includeInactive)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, "", map[string]any{
		"users": views,
		"count": len(views),
	})
}

// HandleGet implements GET /admin/accounts/{accountID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Get(r.Context(), chi.URLParam(r, "accountID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, "", view)
}

// HandleUpdate implements PUT /admin/accounts/{accountID}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, _ := access.ClaimsFrom(ctx)

	req, ok := httputil.DecodeJSON[UpdateRequest](w, r, h.logger, ctx)
	if !ok {
		return
	}

	view, err := h.service.Update(ctx, chi.URLParam(r, "accountID"), *req, actorID(claims))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, "Account updated", view)
}

// HandleDeactivate implements DELETE /admin/accounts/{accountID}. Accounts
// are only ever soft-deactivated; history is preserved.
func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, _ := access.ClaimsFrom(ctx)

	if err := h.service.Deactivate(ctx, chi.URLParam(r, "accountID"), actorID(claims)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, "Account deactivated", nil)
}

// HandleReactivate implements POST /admin/accounts/{accountID}/reactivate.
func (h *Handler) HandleReactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, _ := access.ClaimsFrom(ctx)

	if err := h.service.Reactivate(ctx, chi.URLParam(r, "accountID"), actorID(claims)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, "Account reactivated", nil)
}

// BearerToken extracts the compact token from the Authorization header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	scheme, rest, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(rest)
}

func actorID(claims *token.Claims) string {
	if claims == nil {
		return ""
	}
	return claims.AccountID
}
