// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package metrics defines the Prometheus metrics exported by Waypoint.

All metrics are registered on the default registry with promauto at package
init and exposed by the /metrics endpoint. Packages record through the
Record* and Update* helpers rather than touching collectors directly.

# Metric Families

  - api_*: request counts, latency, in-flight requests and rate limit hits
  - clustering_*: clustering runs and output sizes
  - popup_*: placements by anchor and fallbacks
  - cache_*: memoization cache hit rate and size by cache type
  - dataset_*: locations dataset reloads
  - circuit_breaker_*: HTTP dataset source breaker state
  - websocket_*: viewport stream connections and messages
  - photo_of_day_*: daily picks
  - app_*: build info and uptime
*/
package metrics
