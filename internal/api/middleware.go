// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/waypoint/internal/config"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
)

// ChiMiddlewareConfig holds CORS and rate limit settings.
type ChiMiddlewareConfig struct {
	CORSAllowedOrigins   []string
	CORSAllowedMethods   []string
	CORSAllowedHeaders   []string
	CORSAllowCredentials bool
	CORSMaxAge           int // seconds

	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool
}

// DefaultChiMiddlewareConfig returns defaults with no CORS origins allowed.
func DefaultChiMiddlewareConfig() *ChiMiddlewareConfig {
	return &ChiMiddlewareConfig{
		CORSAllowedOrigins: []string{},
		CORSAllowedMethods: []string{"GET", "POST", "OPTIONS"},
		CORSAllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		CORSMaxAge:         86400,

		RateLimitRequests: RateLimitAPI.Requests,
		RateLimitWindow:   RateLimitAPI.Window,
	}
}

// ChiMiddlewareConfigFromSecurity maps the security section onto middleware settings.
func ChiMiddlewareConfigFromSecurity(sec *config.SecurityConfig) *ChiMiddlewareConfig {
	cfg := DefaultChiMiddlewareConfig()
	cfg.CORSAllowedOrigins = sec.CORSOrigins
	if sec.RateLimitReqs > 0 {
		cfg.RateLimitRequests = sec.RateLimitReqs
	}
	if sec.RateLimitWindow > 0 {
		cfg.RateLimitWindow = sec.RateLimitWindow
	}
	cfg.RateLimitDisabled = sec.RateLimitDisabled
	return cfg
}

// ChiMiddleware builds the CORS and rate limit middleware.
type ChiMiddleware struct {
	config *ChiMiddlewareConfig
	cors   func(http.Handler) http.Handler
}

// NewChiMiddleware creates the middleware factory. A nil config uses defaults.
func NewChiMiddleware(cfg *ChiMiddlewareConfig) *ChiMiddleware {
	if cfg == nil {
		cfg = DefaultChiMiddlewareConfig()
	}
	return &ChiMiddleware{
		config: cfg,
		cors: cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   cfg.CORSAllowedMethods,
			AllowedHeaders:   cfg.CORSAllowedHeaders,
			ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
			AllowCredentials: cfg.CORSAllowCredentials,
			MaxAge:           cfg.CORSMaxAge,
		}),
	}
}

// CORS returns the go-chi/cors handler.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimitConfig is one named rate limit.
type RateLimitConfig struct {
	Name     string
	Requests int
	Window   time.Duration
}

// Endpoint rate limits
var (
	RateLimitAPI       = RateLimitConfig{Name: "api", Requests: 300, Window: time.Minute}
	RateLimitHealth    = RateLimitConfig{Name: "health", Requests: 1000, Window: time.Minute}
	RateLimitLogin     = RateLimitConfig{Name: "login", Requests: 5, Window: 5 * time.Minute}
	RateLimitAdmin     = RateLimitConfig{Name: "admin", Requests: 10, Window: time.Minute}
	RateLimitWebSocket = RateLimitConfig{Name: "websocket", Requests: 30, Window: time.Minute}
)

// RateLimit applies the configured general API limit.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	return m.RateLimitCustom(RateLimitConfig{
		Name:     RateLimitAPI.Name,
		Requests: m.config.RateLimitRequests,
		Window:   m.config.RateLimitWindow,
	})
}

// RateLimitCustom limits by client IP. Rejections are JSON 429s and are
// counted per limit name.
func (m *ChiMiddleware) RateLimitCustom(limit RateLimitConfig) func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled {
		return func(next http.Handler) http.Handler { return next }
	}

	onLimit := func(w http.ResponseWriter, r *http.Request) {
		metrics.APIRateLimitHits.WithLabelValues(limit.Name).Inc()
		logging.Ctx(r.Context()).Warn().
			Str("limit", limit.Name).
			Str("remote_addr", r.RemoteAddr).
			Msg("Rate limit exceeded")
		w.Header().Set("Retry-After", strconv.Itoa(int(limit.Window.Seconds())))
		WriteError(w, r, http.StatusTooManyRequests, ErrCodeTooManyRequests, "Rate limit exceeded")
	}

	return httprate.Limit(
		limit.Requests,
		limit.Window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(onLimit),
	)
}

// APISecurityHeaders adds browser hardening headers to API responses.
func APISecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// noStore marks responses as uncacheable.
func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
