// Package router wires the admin HTTP routes.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"courier-dispatch/internal/http/handlers"
	obs "courier-dispatch/internal/http/middleware"
	"courier-dispatch/internal/logx"
)

// passTimeout bounds synchronous dispatch requests; a pass may touch every pending order.
const passTimeout = time.Minute

// New constructs a chi-based http.Handler with base middleware and routes.
func New(h *handlers.Handlers, d *handlers.DispatchHandler, logger logx.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(obs.Observability(logger))
	r.Use(middleware.Recoverer)

	r.Get("/ping", h.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(h.HealthcheckHead))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/dispatch", func(r chi.Router) {
		r.Use(middleware.Timeout(passTimeout))
		r.Post("/pass", d.RunPass)
		r.Get("/status", d.Status)
		r.Get("/pool", d.Pool)
		r.Post("/orders/{orderId}/assign", d.Assign)
	})

	r.NotFound(http.HandlerFunc(h.NotFound))

	return r
}
