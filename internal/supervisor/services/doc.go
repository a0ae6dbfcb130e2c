// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package services adapts Waypoint components to suture's Serve(ctx) model.

  - HTTPServerService: ListenAndServe with graceful Shutdown on cancel
  - DatasetReloadService: periodic locations.Store reload
  - UptimeService: keeps the uptime gauge current

The websocket hub already implements suture.Service and is added to the
tree directly.
*/
package services
