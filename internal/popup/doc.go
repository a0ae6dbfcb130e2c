// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package popup chooses where an info popup opens relative to its map marker.

A Placer is bound to one Projector. Given a marker's coordinates and the
viewport it picks one of eight anchors, a pixel offset and a maximum content
height so the popup stays on screen and clear of the fixed header band at
the top of the map.

Anchors follow the MapLibre convention: the anchor names the side of the
popup attached to the marker. AnchorTop therefore opens the popup below the
marker, and AnchorBottom opens it above.

Placement never fails. A missing projector, a projection error or panic, a
non-finite screen position and a degenerate viewport all yield the default
placement (bottom anchor, 25 px offset, 400 px max height).

Results are memoized by rounded coordinates and viewport state in a bounded
cache owned by the Placer. Use one Placer per projection.
*/
package popup
