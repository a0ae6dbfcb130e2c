// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package main is the entry point for the Waypoint server.

Waypoint serves a travel photo map: a locations dataset is loaded from a
file, an HTTP(S) URL or S3, clustered per zoom level and exposed over a
REST API and a viewport websocket stream.

# Application Architecture

	RootSupervisor ("waypoint")
	├── DataSupervisor ("data-layer")
	│   └── DatasetReloadService (DATA_RELOAD_INTERVAL)
	├── MessagingSupervisor ("messaging-layer")
	│   └── websocket.Hub
	└── APISupervisor ("api-layer")
	    ├── HTTPServerService
	    └── UptimeService

Initialization order:

 1. Configuration: Koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog, JSON or console
 3. Dataset source and store, clustering and popup engines
 4. Photo of the day history (BadgerDB when PHOTO_OF_DAY_HISTORY_PATH is set)
 5. Authentication: JWT admin login, or none
 6. Chi router, then the supervisor tree

A failed initial dataset load does not stop startup. The readiness check
reports 503 until a reload succeeds.

# Configuration

	HTTP_PORT=8080
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console

	DATA_SOURCE=data/locations.json     # path, https://... or s3://bucket/key
	DATA_RELOAD_INTERVAL=10m            # 0 disables periodic reload
	CLUSTER_BANDS=3:100,5:50,8:20,11:5,14:1

	AUTH_MODE=jwt                # jwt or none
	JWT_SECRET=<32+ chars>
	ADMIN_USERNAME=admin
	ADMIN_PASSWORD=<password or bcrypt hash>

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains within
SHUTDOWN_TIMEOUT, websocket clients are closed and the history database is
flushed.
*/
package main
