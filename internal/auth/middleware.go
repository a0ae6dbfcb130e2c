// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/tomtom215/waypoint/internal/logging"
)

type contextKey string

const ClaimsContextKey contextKey = "claims"

// ErrorWriter renders an authentication failure. The API package supplies
// one that writes its JSON envelope.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, status int, code, message string)

// Middleware provides chi-compatible authentication middleware.
type Middleware struct {
	jwtManager *JWTManager
	authMode   string
	writeError ErrorWriter
}

// NewMiddleware creates the middleware. A nil writeError falls back to
// http.Error.
func NewMiddleware(jwtManager *JWTManager, authMode string, writeError ErrorWriter) *Middleware {
	if writeError == nil {
		writeError = func(w http.ResponseWriter, _ *http.Request, status int, _, message string) {
			http.Error(w, message, status)
		}
	}
	return &Middleware{
		jwtManager: jwtManager,
		authMode:   authMode,
		writeError: writeError,
	}
}

// Authenticate requires a valid token unless auth mode is "none", in which
// case the request runs as an anonymous administrator.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.authMode == "none" {
			claims := &Claims{Username: "anonymous", Role: RoleAdmin}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ClaimsContextKey, claims)))
			return
		}

		token, ok := extractToken(r)
		if !ok {
			m.writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("Token validation failed")
			m.writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ClaimsContextKey, claims)))
	})
}

// RequireAdmin must run after Authenticate.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			m.writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}
		if claims.Role != RoleAdmin {
			logging.Ctx(r.Context()).Warn().
				Str("username", claims.Username).
				Str("role", claims.Role).
				Str("path", r.URL.Path).
				Msg("Access denied: admin role required")
			m.writeError(w, r, http.StatusForbidden, "FORBIDDEN", "Admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClaimsFromContext returns the claims stored by Authenticate.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*Claims)
	return claims, ok && claims != nil
}

// extractToken reads a Bearer token from the Authorization header, falling
// back to the "token" cookie.
func extractToken(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			return "", false
		}
		return token, true
	}

	cookie, err := r.Cookie("token")
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}
