// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package websocket streams map views to connected clients.

A client sends its viewport whenever the map moves and receives the matching
clusters with popup placements. The Hub tracks connected clients and
broadcasts dataset reload notices so clients can ask for a fresh view.

Each client has two goroutines:
  - readPump: decodes viewport and ping messages, answers with views
  - writePump: serializes outgoing messages and sends keepalive pings

Message types:

	viewport          client -> server   data: mapview.Request
	view              server -> client   data: mapview.Response
	error             server -> client   data: validation.APIError
	dataset_reloaded  server -> clients  data: ReloadNotice
	ping / pong       either direction   no data

The Hub implements suture.Service and runs under the API layer of the
supervisor tree.
*/
package websocket
