package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bookline/bookline/internal/booking/payments"
	"github.com/bookline/bookline/internal/booking/periods"
	"github.com/bookline/bookline/internal/observability"
)

// RouterParams aggregates everything the HTTP surface needs.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Metrics *observability.Metrics

	PeriodHandler  *periods.Handler
	PaymentHandler *payments.Handler
	WebhookHandler *payments.WebhookHandler
	JobHandler     interface{ MountRoutes(chi.Router) }
}

// NewRouter assembles the chi router with middleware and all routes.
func NewRouter(p RouterParams) chi.Router {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{Logger: p.Logger, Config: p.Config, Metrics: p.Metrics}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(RequireToken(p.Config, p.Logger))
		if p.PeriodHandler != nil {
			api.Route("/periods", p.PeriodHandler.MountRoutes)
		}
		if p.PaymentHandler != nil {
			api.Route("/payments", p.PaymentHandler.MountRoutes)
		}
	})

	if p.WebhookHandler != nil {
		r.Post("/webhooks/payments", p.WebhookHandler.ServeHTTP)
	}

	if p.JobHandler != nil {
		r.Route("/jobs", p.JobHandler.MountRoutes)
	}

	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", p.Metrics.Handler())
	}

	return r
}
