// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package mapview assembles what the map renders for one viewport: the
// clusters of the current dataset at the viewport zoom, each with a popup
// placement computed from its web-mercator screen position.
//
// A Service owns exactly one cluster.Clusterer and one popup.Placer, so
// cache lifetimes follow the Service rather than the process.
package mapview
