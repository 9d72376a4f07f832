package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Month fetch outcome labels.
const (
	OutcomeRows      = "rows"
	OutcomeEmpty     = "empty"
	OutcomeTransport = "transport_error"
)

// Metrics holds all Prometheus collectors for the application.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	MonthFetchesTotal   *prometheus.CounterVec
	MonthFetchDuration  prometheus.Histogram
	RecordsTotal        *prometheus.CounterVec
	IngestRunsTotal     *prometheus.CounterVec
	WorkersBusy         prometheus.Gauge
}

// New registers the collectors with reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		MonthFetchesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_month_fetches_total",
				Help: "Month pages fetched, by outcome.",
			},
			[]string{"outcome"}, // rows, empty, transport_error
		),
		MonthFetchDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "weather_month_fetch_duration_seconds",
				Help:    "Duration of month page fetch and parse.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		RecordsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_records_total",
				Help: "Daily records written to the store, by result.",
			},
			[]string{"result"}, // inserted, ignored
		),
		IngestRunsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_ingest_runs_total",
				Help: "Ingestion runs, by mode and status.",
			},
			[]string{"mode", "status"},
		),
		WorkersBusy: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "weather_crawl_workers_busy",
				Help: "Month fetch workers currently processing a page.",
			},
		),
	}
}

// NewNop returns collectors bound to a private registry, for callers that
// do not expose metrics.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

func (m *Metrics) IncMonthFetch(outcome string) {
	m.MonthFetchesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AddRecords(inserted, ignored int) {
	m.RecordsTotal.WithLabelValues("inserted").Add(float64(inserted))
	m.RecordsTotal.WithLabelValues("ignored").Add(float64(ignored))
}

func (m *Metrics) IncIngestRun(mode, status string) {
	m.IngestRunsTotal.WithLabelValues(mode, status).Inc()
}
