package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Candidate outcomes.
const (
	OutcomeParsed    = "parsed"
	OutcomeDuplicate = "duplicate"
	OutcomeSaved     = "saved"
	OutcomeSkipped   = "skipped"
)

// Page outcomes.
const (
	PageOK     = "ok"
	PageEmpty  = "empty"
	PageFailed = "failed"
)

// Metrics holds all Prometheus metrics for the application. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	PagesFetched        *prometheus.CounterVec
	Candidates          *prometheus.CounterVec
	FetchDuration       prometheus.Histogram
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New registers the scraper metrics on reg. A nil reg gets a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		PagesFetched: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_pages_fetched_total",
			Help: "Search result pages requested, by sector and outcome.",
		}, []string{"sector", "outcome"}),
		Candidates: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_candidates_total",
			Help: "Parsed company candidates, by outcome.",
		}, []string{"outcome"}),
		FetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "scraper_fetch_duration_seconds",
			Help:    "Duration of search page fetches.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) IncPage(sector, outcome string) {
	if m == nil {
		return
	}
	m.PagesFetched.WithLabelValues(sector, outcome).Inc()
}

func (m *Metrics) IncCandidates(outcome string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.Candidates.WithLabelValues(outcome).Add(float64(n))
}

func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveHTTP(method, path, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
}
