// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package api serves the Waypoint HTTP API on a chi router.

Every JSON response uses the same envelope:

	{"success": true,  "data": ..., "meta": {"request_id": ..., "timestamp": ...}}
	{"success": false, "error": {"code": "NOT_FOUND", "message": ...}, "meta": ...}

Routes (all under /api/v1 unless noted):

	GET  /health/live            process is up
	GET  /health/ready           503 until the dataset is loaded
	GET  /locations              paginated list, optional ?country=
	GET  /locations/nearby       ?lat=&lon=&radius_km=
	GET  /locations/{id}         one location with its photos
	GET  /clusters?zoom=         clusters of the whole dataset
	POST /clusters               clusters of a client-supplied point set
	POST /popup/placement        popup anchor for a marker in a viewport
	POST /map/view               clusters plus popup placements
	GET  /photo-of-the-day       optional ?date=YYYY-MM-DD (not in the future)
	GET  /ws/viewport            websocket viewport stream
	POST /auth/login             admin credentials -> JWT (also set as cookie)
	POST /auth/logout            clears the token cookie
	POST /admin/reload           reload the dataset now (admin)
	GET  /admin/stats            cache and connection counters (admin)
	GET  /metrics                Prometheus exposition (root path)

Read endpoints are public. The admin group requires a JWT with the admin
role unless security.auth_mode is "none".
*/
package api
