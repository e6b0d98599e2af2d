package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(corsMiddleware(g.config.AllowedOrigins))

	r.Get("/", g.handleLanding())
	r.Get("/health", g.handleHealth())
	r.Get("/status", g.handleStatus())
	r.Handle("/metrics", promhttp.HandlerFor(g.metrics.Registry(), promhttp.HandlerOpts{}))

	r.Get("/username", g.handleCheckGet())
	r.Post("/username", g.handleCheckPost())
	r.Get("/batch", g.handleBatch())

	return r
}
