// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package config provides centralized configuration management for Waypoint.

Configuration is layered with Koanf v2:
 1. Defaults: built-in values from defaultConfig()
 2. Config file: optional YAML (CONFIG_PATH, config.yaml, /etc/waypoint/config.yaml)
 3. Environment variables: mapped names such as HTTP_PORT or DATA_SOURCE

# Sections

  - server: HTTP listener, timeouts and environment
  - security: admin login, JWT, rate limiting and CORS
  - data: where the locations dataset is fetched from and how often
  - clustering: zoom bands and distance cache size
  - popup: popup placement tuning constants
  - photo_of_day: pick history storage and repeat window
  - logging: zerolog level and format

# Environment Variables

Server:
  - HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT, SHUTDOWN_TIMEOUT, ENVIRONMENT

Security:
  - AUTH_MODE: none or jwt (default: jwt)
  - JWT_SECRET: at least 32 characters
  - SESSION_TIMEOUT: token lifetime (default: 24h)
  - ADMIN_USERNAME, ADMIN_PASSWORD (plain text or a bcrypt hash)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
  - CORS_ORIGINS: comma-separated

Data:
  - DATA_SOURCE: file path, http(s):// URL or s3://bucket/key
  - DATA_RELOAD_INTERVAL, DATA_FETCH_TIMEOUT
  - DATA_HTTP_RATE_LIMIT, DATA_HTTP_BURST
  - DATA_BREAKER_MAX_FAILURES, DATA_BREAKER_TIMEOUT
  - S3_REGION, S3_ENDPOINT, S3_USE_PATH_STYLE

Clustering:
  - CLUSTER_BANDS: "maxZoom:radiusKm" pairs, e.g. "3:100,5:50,8:20,11:5,14:1"
  - CLUSTER_DISTANCE_CACHE_SIZE

Popup:
  - POPUP_HEADER_HEIGHT, POPUP_HEADER_BUFFER, POPUP_EDGE_THRESHOLD,
    POPUP_BASE_OFFSET, POPUP_EDGE_MARGIN, POPUP_MIN_MAX_HEIGHT,
    POPUP_MAX_MAX_HEIGHT, POPUP_CACHE_SIZE

Photo of the day:
  - PHOTO_OF_DAY_HISTORY_PATH: BadgerDB directory; empty keeps history in memory
  - PHOTO_OF_DAY_NO_REPEAT_DAYS

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

Config is immutable after Load and safe for concurrent reads.
*/
package config
