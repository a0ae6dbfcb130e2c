// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/waypoint/internal/auth"
	"github.com/tomtom215/waypoint/internal/config"
	"github.com/tomtom215/waypoint/internal/locations"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/mapview"
	"github.com/tomtom215/waypoint/internal/photoday"
	ws "github.com/tomtom215/waypoint/internal/websocket"
)

// Handler holds the dependencies of the API handlers.
//
// Handler methods are split across files:
//   - handlers_health.go: liveness and readiness
//   - handlers_locations.go: dataset browsing
//   - handlers_map.go: clustering, popup placement, map views, websocket
//   - handlers_photoday.go: photo of the day
//   - handlers_auth.go: login, logout, admin endpoints
type Handler struct {
	store   *locations.Store
	maps    *mapview.Service
	picker  *photoday.Picker
	hub     *ws.Hub
	config  *config.Config
	jwt     *auth.JWTManager
	admin   *auth.AdminAuthenticator
	lockout *auth.Lockout

	startTime time.Time
	now       func() time.Time
}

// Deps groups what NewHandler needs. Admin and JWT may be nil when
// security.auth_mode is "none".
type Deps struct {
	Store   *locations.Store
	Maps    *mapview.Service
	Picker  *photoday.Picker
	Hub     *ws.Hub
	Config  *config.Config
	JWT     *auth.JWTManager
	Admin   *auth.AdminAuthenticator
	Lockout *auth.Lockout
}

// NewHandler creates the API handler.
func NewHandler(d Deps) *Handler {
	lockout := d.Lockout
	if lockout == nil {
		lockout = auth.NewLockout(auth.DefaultLockoutConfig())
	}
	return &Handler{
		store:     d.Store,
		maps:      d.Maps,
		picker:    d.Picker,
		hub:       d.Hub,
		config:    d.Config,
		jwt:       d.JWT,
		admin:     d.Admin,
		lockout:   lockout,
		startTime: time.Now(),
		now:       time.Now,
	}
}

func (h *Handler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  4096,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin accepts only browser origins allowed by the CORS
// configuration. Requests without an Origin header are rejected.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Ctx(r.Context()).Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}
	if h.config == nil {
		return true
	}
	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	logging.Ctx(r.Context()).Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

// sanitizeLogValue escapes control characters to prevent log injection.
func sanitizeLogValue(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			out = append(out, '?')
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
