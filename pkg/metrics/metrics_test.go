package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncPage("technology", PageOK)
	m.IncPage("technology", PageOK)
	m.IncCandidates(OutcomeSaved, 3)
	m.IncCandidates(OutcomeDuplicate, 0)
	m.ObserveFetch(200 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PagesFetched.WithLabelValues("technology", PageOK)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Candidates.WithLabelValues(OutcomeSaved)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Candidates.WithLabelValues(OutcomeDuplicate)))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.IncPage("technology", PageFailed)
	m.IncCandidates(OutcomeSkipped, 1)
	m.ObserveFetch(time.Second)
	m.ObserveHTTP("GET", "/api/health", "200", time.Millisecond)
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.IncCandidates(OutcomeParsed, 5)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `scraper_candidates_total{outcome="parsed"} 5`))
}
