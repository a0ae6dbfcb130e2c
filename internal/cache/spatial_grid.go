// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package cache

import (
	"math"
	"sort"

	"github.com/tomtom215/waypoint/internal/geo"
)

// kmPerDegree is one degree of arc on the haversine sphere.
const kmPerDegree = geo.EarthRadiusKm * math.Pi / 180

// SpatialGrid buckets points into fixed-size lat/lon cells so radius queries
// only inspect cells near the query point. A grid is built once and then
// only read; Insert must not run concurrently with queries.
type SpatialGrid[T any] struct {
	cells    map[CellKey][]gridEntry[T]
	cellSize float64 // degrees
	columns  int
	size     int
}

// CellKey identifies a grid cell. X wraps at the antimeridian.
type CellKey struct {
	X, Y int
}

type gridEntry[T any] struct {
	lat, lon float64
	value    T
}

// GridHit is one query result.
type GridHit[T any] struct {
	Value      T
	DistanceKm float64
}

// NewSpatialGrid creates a grid with roughly cellSizeKm square cells at the
// equator. Values <= 0 default to 100km.
func NewSpatialGrid[T any](cellSizeKm float64) *SpatialGrid[T] {
	if cellSizeKm <= 0 || math.IsNaN(cellSizeKm) {
		cellSizeKm = 100
	}
	cellSize := cellSizeKm / kmPerDegree
	if cellSize > 360 {
		cellSize = 360
	}
	return &SpatialGrid[T]{
		cells:    make(map[CellKey][]gridEntry[T]),
		cellSize: cellSize,
		columns:  int(math.Ceil(360 / cellSize)),
	}
}

func (g *SpatialGrid[T]) cellKey(lat, lon float64) CellKey {
	x := int(math.Floor((lon + 180) / g.cellSize))
	if x >= g.columns {
		x = g.columns - 1
	}
	return CellKey{X: x, Y: int(math.Floor(lat / g.cellSize))}
}

// Insert adds a value at a coordinate. Invalid coordinates are ignored and
// reported as false.
func (g *SpatialGrid[T]) Insert(lat, lon float64, value T) bool {
	if !geo.ValidLatLon(lat, lon) {
		return false
	}
	key := g.cellKey(lat, lon)
	g.cells[key] = append(g.cells[key], gridEntry[T]{lat: lat, lon: lon, value: value})
	g.size++
	return true
}

// Size returns the number of inserted values.
func (g *SpatialGrid[T]) Size() int {
	return g.size
}

// NumCells returns the number of non-empty cells.
func (g *SpatialGrid[T]) NumCells() int {
	return len(g.cells)
}

// Nearby returns values within radiusKm great-circle distance of the query
// point, nearest first. Ties keep insertion order within a cell.
func (g *SpatialGrid[T]) Nearby(lat, lon, radiusKm float64) []GridHit[T] {
	if !geo.ValidLatLon(lat, lon) || radiusKm < 0 || math.IsNaN(radiusKm) {
		return nil
	}

	var hits []GridHit[T]
	collect := func(entries []gridEntry[T]) {
		for _, e := range entries {
			if d := geo.HaversineKm(lat, lon, e.lat, e.lon); d <= radiusKm {
				hits = append(hits, GridHit[T]{Value: e.value, DistanceKm: d})
			}
		}
	}

	radiusDeg := radiusKm / kmPerDegree
	maxAbsLat := math.Abs(lat) + radiusDeg
	lonSpan := 360.0
	if maxAbsLat < 89 {
		lonSpan = radiusDeg / math.Cos(maxAbsLat*math.Pi/180)
	}

	center := g.cellKey(lat, lon)
	rows := int(math.Ceil(radiusDeg/g.cellSize)) + 1
	cols := int(math.Ceil(lonSpan/g.cellSize)) + 1

	if 2*cols+1 >= g.columns {
		// The query wraps the whole globe; scan the rows directly.
		for key, entries := range g.cells {
			if key.Y >= center.Y-rows && key.Y <= center.Y+rows {
				collect(entries)
			}
		}
	} else {
		for dy := -rows; dy <= rows; dy++ {
			for dx := -cols; dx <= cols; dx++ {
				x := ((center.X+dx)%g.columns + g.columns) % g.columns
				collect(g.cells[CellKey{X: x, Y: center.Y + dy}])
			}
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].DistanceKm < hits[j].DistanceKm
	})
	return hits
}
