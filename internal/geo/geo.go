// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package geo holds the shared map data model: points, clusters, viewports,
// and the distance helpers used by clustering and location lookups.
package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

const (
	// EarthRadiusKm is the mean Earth radius used by all distance helpers.
	EarthRadiusKm = 6371.0

	// KmPerDegreeLat is the length of one degree of latitude.
	KmPerDegreeLat = 111.32
)

// LatLon is a bare coordinate pair in degrees.
type LatLon struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// Point is a location marker on the map.
type Point struct {
	ID         string  `json:"id"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	PhotoCount int     `json:"photo_count"`
}

// Valid reports whether both coordinates are finite and in range.
func (p Point) Valid() bool {
	return ValidLatLon(p.Lat, p.Lon)
}

// ValidLatLon reports whether lat/lon are finite and within [-90,90] / [-180,180].
func ValidLatLon(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Cluster is a group of points rendered as one marker.
// A cluster of size 1 is a single location marker.
type Cluster struct {
	ID         string  `json:"id"`
	Members    []Point `json:"members,omitempty"`
	Centroid   LatLon  `json:"centroid"`
	PhotoCount int     `json:"photo_count"`
}

// Size returns the number of member points.
func (c Cluster) Size() int {
	return len(c.Members)
}

// Viewport describes the visible map: center, zoom level, and container size in pixels.
type Viewport struct {
	Center LatLon  `json:"center"`
	Zoom   float64 `json:"zoom" validate:"gte=0,lte=24"`
	Width  float64 `json:"width" validate:"gt=0"`
	Height float64 `json:"height" validate:"gt=0"`
}

// Degenerate reports whether the viewport cannot be used for screen math.
func (v Viewport) Degenerate() bool {
	for _, f := range []float64{v.Width, v.Height, v.Zoom, v.Center.Lat, v.Center.Lon} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return true
		}
	}
	return v.Width <= 0 || v.Height <= 0
}

// EquirectangularKm returns the equirectangular approximation of the distance
// between two coordinates in kilometers. The longitude difference is scaled by
// the cosine of the mean latitude.
func EquirectangularKm(lat1, lon1, lat2, lon2 float64) float64 {
	meanLat := (lat1 + lat2) / 2 * math.Pi / 180
	dx := (lon2 - lon1) * math.Cos(meanLat)
	dy := lat2 - lat1
	return math.Sqrt(dx*dx+dy*dy) * KmPerDegreeLat
}

// HaversineMeters returns the great-circle distance between two coordinates in meters.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusKm * 1000
}

// HaversineKm is HaversineMeters in kilometers.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	return HaversineMeters(lat1, lon1, lat2, lon2) / 1000
}

// Bounds is an axis-aligned lat/lon box.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// Contains reports whether the coordinate lies inside the box (edges inclusive).
// Boxes whose West is greater than East wrap the antimeridian.
func (b Bounds) Contains(lat, lon float64) bool {
	if lat < b.South || lat > b.North {
		return false
	}
	if b.West <= b.East {
		return lon >= b.West && lon <= b.East
	}
	return lon >= b.West || lon <= b.East
}

// BoundsOf returns the bounding box of the valid points and false if there are none.
func BoundsOf(points []Point) (Bounds, bool) {
	var b Bounds
	found := false
	for _, p := range points {
		if !p.Valid() {
			continue
		}
		if !found {
			b = Bounds{South: p.Lat, North: p.Lat, West: p.Lon, East: p.Lon}
			found = true
			continue
		}
		b.South = math.Min(b.South, p.Lat)
		b.North = math.Max(b.North, p.Lat)
		b.West = math.Min(b.West, p.Lon)
		b.East = math.Max(b.East, p.Lon)
	}
	return b, found
}

// Centroid returns the arithmetic mean of the point coordinates.
// Returns the zero coordinate for an empty slice.
func Centroid(points []Point) LatLon {
	if len(points) == 0 {
		return LatLon{}
	}
	var lat, lon float64
	for _, p := range points {
		lat += p.Lat
		lon += p.Lon
	}
	n := float64(len(points))
	return LatLon{Lat: lat / n, Lon: lon / n}
}
