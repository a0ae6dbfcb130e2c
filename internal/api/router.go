// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/waypoint/internal/auth"
	"github.com/tomtom215/waypoint/internal/middleware"
)

// slowRequestThreshold is where AccessLog switches from debug to warn.
const slowRequestThreshold = 2 * time.Second

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	auth          *auth.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router.
func NewRouter(handler *Handler, authMiddleware *auth.Middleware, chiMiddleware *ChiMiddleware) *Router {
	if chiMiddleware == nil {
		chiMiddleware = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, auth: authMiddleware, chiMiddleware: chiMiddleware}
}

// Setup builds the HTTP handler.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()
	h := router.handler
	mw := router.chiMiddleware

	// Global middleware, outermost first
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog(slowRequestThreshold))
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS())
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(mw.RateLimitCustom(RateLimitHealth))
		r.Use(APISecurityHeaders())
		r.Use(noStore)
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(noStore)
		r.With(mw.RateLimitCustom(RateLimitLogin)).Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(mw.RateLimitCustom(RateLimitAdmin))
		r.Use(APISecurityHeaders())
		r.Use(noStore)
		r.Use(router.auth.Authenticate)
		r.Use(router.auth.RequireAdmin)
		r.Post("/reload", h.AdminReload)
		r.Get("/stats", h.AdminStats)
	})

	// Websocket upgrades bypass compression.
	r.With(mw.RateLimitCustom(RateLimitWebSocket)).Get("/api/v1/ws/viewport", h.ViewportStream)

	r.Group(func(r chi.Router) {
		r.Use(mw.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chimiddleware.Compress(5, "application/json"))

		r.Get("/api/v1/locations", h.Locations)
		r.Get("/api/v1/locations/nearby", h.LocationsNearby)
		r.Get("/api/v1/locations/{id}", h.Location)
		r.Get("/api/v1/clusters", h.Clusters)
		r.Post("/api/v1/clusters", h.ClusterPoints)
		r.Post("/api/v1/popup/placement", h.PopupPlacement)
		r.Post("/api/v1/map/view", h.MapView)
		r.Get("/api/v1/photo-of-the-day", h.PhotoOfTheDay)
	})

	return r
}
