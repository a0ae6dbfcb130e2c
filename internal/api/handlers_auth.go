// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/waypoint/internal/auth"
	"github.com/tomtom215/waypoint/internal/locations"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/mapview"
)

// tokenCookie is read by auth.Middleware when no Authorization header is sent.
const tokenCookie = "token"

// LoginResponse is returned on successful login.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
}

// Login exchanges admin credentials for a JWT. Repeated failures from one
// client address lock it out with exponential backoff.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.admin == nil || h.jwt == nil {
		rw.Error(http.StatusNotFound, ErrCodeNotFound, "Authentication is disabled")
		return
	}

	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	subject := clientAddr(r)
	if locked, remaining := h.lockout.Locked(subject); locked {
		w.Header().Set("Retry-After", strconv.Itoa(int(remaining.Seconds())+1))
		rw.Error(http.StatusTooManyRequests, ErrCodeTooManyRequests, "Too many failed login attempts")
		return
	}

	if err := h.admin.Authenticate(req.Username, req.Password); err != nil {
		locked, lockFor := h.lockout.Fail(subject)
		event := logging.Ctx(r.Context()).Warn().Str("username", sanitizeLogValue(req.Username)).Str("remote_addr", subject)
		if locked {
			event = event.Dur("locked_for", lockFor)
		}
		event.Msg("Failed login attempt")
		rw.Error(http.StatusUnauthorized, ErrCodeUnauthorized, "Invalid username or password")
		return
	}
	h.lockout.Succeed(subject)

	token, expires, err := h.jwt.GenerateToken(req.Username, auth.RoleAdmin)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to sign token")
		rw.InternalError("Failed to create session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https",
		SameSite: http.SameSiteStrictMode,
	})
	logging.Ctx(r.Context()).Info().Str("username", req.Username).Msg("Admin logged in")
	rw.Success(LoginResponse{Token: token, ExpiresAt: expires, Username: req.Username, Role: auth.RoleAdmin})
}

// Logout clears the token cookie. Tokens stay valid until they expire.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	WriteSuccess(w, r, map[string]bool{"logged_out": true})
}

// ReloadResponse reports the dataset after an admin reload.
type ReloadResponse struct {
	Version   uint64    `json:"version"`
	Changed   bool      `json:"changed"`
	Locations int       `json:"locations"`
	Located   int       `json:"located"`
	Photos    int       `json:"photos"`
	LoadedAt  time.Time `json:"loaded_at"`
}

// AdminReload reloads the dataset immediately.
func (h *Handler) AdminReload(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var before uint64
	if prev := h.store.Snapshot(); prev != nil {
		before = prev.Version
	}

	snap, err := h.store.Reload(r.Context())
	if err != nil {
		if errors.Is(err, locations.ErrInvalidDataset) {
			rw.ErrorWithDetails(http.StatusUnprocessableEntity, ErrCodeInvalidDataset,
				"Dataset rejected; previous snapshot kept", map[string]string{"reason": err.Error()})
			return
		}
		rw.ExternalServiceError("dataset source", err)
		return
	}

	rw.Success(ReloadResponse{
		Version:   snap.Version,
		Changed:   snap.Version != before,
		Locations: len(snap.Locations),
		Located:   snap.Located(),
		Photos:    len(snap.Photos()),
		LoadedAt:  snap.LoadedAt.UTC(),
	})
}

// StatsResponse holds runtime counters for operators.
type StatsResponse struct {
	Caches           mapview.Stats `json:"caches"`
	WebSocketClients int           `json:"websocket_clients"`
	DatasetVersion   uint64        `json:"dataset_version"`
	Locations        int           `json:"locations"`
	UptimeSeconds    float64       `json:"uptime_seconds"`
}

// AdminStats returns cache and connection counters.
func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{
		Caches:        h.maps.Stats(),
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}
	if h.hub != nil {
		resp.WebSocketClients = h.hub.ClientCount()
	}
	if snap := h.store.Snapshot(); snap != nil {
		resp.DatasetVersion = snap.Version
		resp.Locations = len(snap.Locations)
	}
	WriteSuccess(w, r, resp)
}

// clientAddr returns the host part of RemoteAddr, already rewritten by RealIP.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
