// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package auth guards Waypoint's administrative endpoints.

Waypoint has a single administrator configured through ADMIN_USERNAME and
ADMIN_PASSWORD. The password may be given in plain text, in which case it is
bcrypt-hashed at startup, or as a bcrypt hash.

Key Components:

  - JWTManager: HS256 token generation and validation (golang-jwt/jwt/v5)
  - AdminAuthenticator: constant-time username check plus bcrypt password check
  - Lockout: in-memory failed login tracking with exponential backoff
  - Middleware: chi-compatible Authenticate and RequireAdmin

Authentication Modes:

  - jwt (default): admin routes require a Bearer token or a "token" cookie
  - none: every request is treated as the administrator (development only;
    config validation rejects it in production)

Usage:

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	mw := auth.NewMiddleware(jwtManager, cfg.Security.AuthMode, nil)

	r.Group(func(r chi.Router) {
	    r.Use(mw.Authenticate, mw.RequireAdmin)
	    r.Post("/api/v1/admin/reload", h.AdminReload)
	})
*/
package auth
