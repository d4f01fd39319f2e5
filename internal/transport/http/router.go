// Package httptransport is the thin HTTP layer. It wires middleware and
// routes and delegates to domain services without embedding business logic.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"demogate/internal/access"
	"demogate/internal/account"
	"demogate/internal/activity"
	"demogate/internal/audit"
	"demogate/internal/demo"
	"demogate/internal/platform/metrics"
	"demogate/internal/platform/middleware"
	"demogate/pkg/httputil"
)

// Deps carries everything the router mounts.
type Deps struct {
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	Policy      *access.Policy
	CORSOrigins []string

	Accounts *account.Handler
	Activity *activity.Handler
	Demos    *demo.Handler
	Audit    *audit.Handler
}

// NewRouter wires all endpoints with the middleware stack. Routes mount in
// three rings: public, authenticated, and admin.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.CORS(d.CORSOrigins))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)
	if d.Metrics != nil {
		r.Use(observeLatency(d.Metrics))
	}

	r.Get("/healthz", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		d.Accounts.RegisterPublic(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(requireAuth(d.Policy, d.Metrics))
		d.Accounts.Register(r)
		d.Activity.Register(r)
		d.Demos.Register(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(requireAuth(d.Policy, d.Metrics))
		r.Use(requireAdmin(d.Policy))
		d.Accounts.RegisterAdmin(r)
		d.Activity.RegisterAdmin(r)
		d.Demos.RegisterAdmin(r)
		d.Audit.RegisterAdmin(r)
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteData(w, http.StatusOK, "", map[string]string{"status": "ok"})
}

// requireAuth authenticates the bearer token and attaches its claims to
// the request context. Authorization decisions against live account state
// happen later, in the services.
func requireAuth(policy *access.Policy, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := policy.Authenticate(account.BearerToken(r))
			if err != nil {
				if m != nil {
					m.IncrementAuthFailures()
				}
				httputil.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(access.WithClaims(r.Context(), claims)))
		})
	}
}

// requireAdmin rejects non-admin claims. Must run after requireAuth.
func requireAdmin(policy *access.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, _ := access.ClaimsFrom(r.Context())
			if err := policy.RequireAdmin(claims); err != nil {
				httputil.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// observeLatency records per-route latency labeled by the chi route
// pattern, so path parameters do not explode the label space.
func observeLatency(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)

			pattern := chi.RouteContext(r.Context()).RoutePattern()
			if pattern == "" {
				pattern = "unmatched"
			}
			m.ObserveEndpointLatency(pattern, time.Since(start).Seconds())
		})
	}
}
