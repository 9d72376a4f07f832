package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/user/weather-crawler/internal/delivery/http/handler"
	"github.com/user/weather-crawler/internal/delivery/http/middleware"
	"github.com/user/weather-crawler/pkg/metrics"
)

const queryTimeout = 30 * time.Second

// New builds the API router. gatherer serves /metrics.
func New(h *handler.Handler, m *metrics.Metrics, gatherer prometheus.Gatherer, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(m))
	r.Use(chimw.Recoverer)

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealthCheck)

		// Ingestion runs have no deadline.
		r.Post("/ingest/backfill", h.HandleBackfill)
		r.Post("/ingest/update", h.HandleUpdate)

		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(queryTimeout))
			r.Get("/aggregates/monthly", h.HandleMonthlyAggregate)
			r.Get("/series/daily", h.HandleDailySeries)
			r.Get("/status", h.HandleGetStatus)
		})
	})

	return r
}
