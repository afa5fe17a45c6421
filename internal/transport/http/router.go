// Package httptransport assembles the public HTTP surface: middleware chain,
// health and metrics endpoints, and the versioned registry API.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	invoiceHandler "tradeinvoice/internal/invoice/handler"
	"tradeinvoice/internal/platform/metrics"
	platformmw "tradeinvoice/internal/platform/middleware"
	"tradeinvoice/pkg/platform/httputil"
	authmw "tradeinvoice/pkg/platform/middleware/auth"
	"tradeinvoice/pkg/platform/middleware/metadata"
	"tradeinvoice/pkg/platform/middleware/request"
	"tradeinvoice/pkg/platform/middleware/requesttime"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthCheckFunc adapts a function to HealthChecker.
type HealthCheckFunc func(ctx context.Context) error

func (f HealthCheckFunc) Health(ctx context.Context) error { return f(ctx) }

// Deps are the collaborators the router mounts.
type Deps struct {
	Invoices       *invoiceHandler.Handler
	TokenValidator authmw.TokenValidator
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	RequestTimeout time.Duration
	HealthChecks   map[string]HealthChecker
}

// NewRouter wires the middleware chain and every endpoint.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(d.Logger))
	r.Use(request.Logger(d.Logger))
	if d.Metrics != nil {
		r.Use(platformmw.Instrument(d.Metrics))
	}
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)

	r.Get("/health", healthHandler(d.HealthChecks))
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(platformmw.Timeout(d.RequestTimeout))
		d.Invoices.Register(r, authmw.RequireAuth(d.TokenValidator, d.Logger))
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthChecker) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(names))}
		status := http.StatusOK
		for _, name := range names {
			if err := checks[name].Health(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
