// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package cluster groups nearby map points into zoom-dependent clusters.

A Clusterer sorts valid points by latitude and greedily grows one cluster per
unprocessed seed point. Candidates are scanned forward only while their
latitude delta stays inside the merge radius converted to degrees, so sparse
data clusters in near-linear time. Once a point joins a cluster it is never
reconsidered.

The merge radius comes from a discrete zoom band table (see DefaultBands).
Zoom 0 is the explicit "no clustering" signal and yields one cluster per
point, as does any zoom above the last band.

Pairwise distances are memoized in a bounded cache owned by the Clusterer.
The cache never changes results; Reset drops it.

The latitude-only early exit is an approximation: near the poles a small
latitude delta can hide a large longitude spread, which slightly changes how
points are grouped. This is kept as is.
*/
package cluster
