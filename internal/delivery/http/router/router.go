package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/user/registry-scraper/internal/delivery/http/handler"
	"github.com/user/registry-scraper/internal/delivery/http/middleware"
	"github.com/user/registry-scraper/pkg/metrics"
)

func New(h *handler.Handler, m *metrics.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(m))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	r.Handle("/metrics", m.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealthCheck)
		r.Get("/stats", h.HandleGetStats)
		r.Get("/companies/{number}", h.HandleGetCompany)
	})

	return r
}
