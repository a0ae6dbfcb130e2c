// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package middleware provides HTTP middleware shared by the Waypoint router.

Components:

  - RequestID: accepts or generates X-Request-ID and seeds the logging context
  - PrometheusMetrics: request counts, latency and in-flight gauge labelled by
    chi route pattern
  - AccessLog: structured request log with slow request warnings

Typical order inside the chi router:

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog(time.Second))
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
