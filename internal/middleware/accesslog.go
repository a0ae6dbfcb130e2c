// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package middleware

import (
	"net/http"
	"time"

	"github.com/tomtom215/waypoint/internal/logging"
)

// AccessLog logs every request at debug level and requests slower than
// slowThreshold at warn level. A zero threshold disables slow warnings.
func AccessLog(slowThreshold time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapper := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapper, r)

			duration := time.Since(start)
			logger := logging.Ctx(r.Context())

			if slowThreshold > 0 && duration > slowThreshold {
				logger.Warn().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", wrapper.statusCode).
					Int64("duration_ms", duration.Milliseconds()).
					Int64("threshold_ms", slowThreshold.Milliseconds()).
					Msg("Slow request detected")
				return
			}

			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", wrapper.statusCode).
				Dur("duration", duration).
				Msg("Request completed")
		})
	}
}
