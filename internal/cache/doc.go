// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package cache provides the in-memory structures behind clustering and
location lookups.

  - Bounded: generic LRU map with hit/miss counters. Used to memoize
    pairwise distances and popup placements.
  - SpatialGrid: fixed-size lat/lon cell index for radius queries over a
    dataset snapshot.

Bounded is safe for concurrent use. A SpatialGrid is filled once and
then only read.
*/
package cache
