// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package locations loads and serves the travel locations dataset.

A dataset is a JSON document listing locations, each with optional
coordinates, albums and photos. It is fetched from a Source (local file,
HTTP endpoint or S3 object), decoded with goccy/go-json, validated and
published as an immutable Snapshot. Readers take the current snapshot
without locking; a failed reload keeps the previous one.

Accepted document shapes:

	[{"id": "paris", "name": "Paris", "latitude": 48.85, "longitude": 2.35, ...}]
	{"locations": [ ... ]}

Locations without coordinates are kept (they can still be browsed) but map to
invalid points, which clustering drops.
*/
package locations
