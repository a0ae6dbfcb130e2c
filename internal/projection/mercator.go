// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package projection converts between geographic coordinates and container
// pixels using spherical Web Mercator with 512 px tiles, matching the
// MapLibre GL camera model: the viewport center maps to the container center.
package projection

import (
	"errors"
	"math"

	"github.com/tomtom215/waypoint/internal/geo"
	"github.com/tomtom215/waypoint/internal/popup"
)

const (
	// TileSize is the world size in pixels at zoom 0.
	TileSize = 512

	// MaxLatitude is the Web Mercator latitude limit.
	MaxLatitude = 85.051128779806604
)

// ErrDegenerateViewport is returned for viewports without a usable size or zoom.
var ErrDegenerateViewport = errors.New("projection: degenerate viewport")

// WebMercator projects coordinates for a viewport. The zero value is ready to use.
type WebMercator struct{}

var _ popup.Projector = WebMercator{}

// WorldSize returns the world width in pixels at zoom.
func WorldSize(zoom float64) float64 {
	return TileSize * math.Exp2(zoom)
}

// worldXY returns the world pixel position of lat/lon at zoom.
func worldXY(lat, lon, zoom float64) (x, y float64) {
	size := WorldSize(zoom)
	lat = math.Max(-MaxLatitude, math.Min(MaxLatitude, lat))

	x = (lon + 180) / 360 * size
	sin := math.Sin(lat * math.Pi / 180)
	y = (0.5 - math.Log((1+sin)/(1-sin))/(4*math.Pi)) * size
	return x, y
}

// Project returns the container pixel position of lat/lon.
// Longitudes are wrapped so the marker copy nearest the center is used.
func (WebMercator) Project(lat, lon float64, vp geo.Viewport) (popup.ScreenPoint, error) {
	if vp.Degenerate() {
		return popup.ScreenPoint{}, ErrDegenerateViewport
	}

	size := WorldSize(vp.Zoom)
	px, py := worldXY(lat, lon, vp.Zoom)
	cx, cy := worldXY(vp.Center.Lat, vp.Center.Lon, vp.Zoom)

	dx := px - cx
	if dx > size/2 {
		dx -= size
	} else if dx < -size/2 {
		dx += size
	}

	return popup.ScreenPoint{
		X: vp.Width/2 + dx,
		Y: vp.Height/2 + (py - cy),
	}, nil
}

// Unproject returns the coordinate under a container pixel.
func (WebMercator) Unproject(pt popup.ScreenPoint, vp geo.Viewport) (geo.LatLon, error) {
	if vp.Degenerate() {
		return geo.LatLon{}, ErrDegenerateViewport
	}

	size := WorldSize(vp.Zoom)
	cx, cy := worldXY(vp.Center.Lat, vp.Center.Lon, vp.Zoom)
	wx := cx + (pt.X - vp.Width/2)
	wy := cy + (pt.Y - vp.Height/2)

	lon := wx/size*360 - 180
	n := math.Pi * (1 - 2*wy/size)
	lat := math.Atan(math.Sinh(n)) * 180 / math.Pi

	return geo.LatLon{Lat: lat, Lon: normalizeLon(lon)}, nil
}

// VisibleBounds returns the lat/lon box covered by the viewport. The box
// wraps the antimeridian when West > East and spans all longitudes when the
// container is wider than the world.
func (m WebMercator) VisibleBounds(vp geo.Viewport) (geo.Bounds, error) {
	nw, err := m.Unproject(popup.ScreenPoint{X: 0, Y: 0}, vp)
	if err != nil {
		return geo.Bounds{}, err
	}
	se, err := m.Unproject(popup.ScreenPoint{X: vp.Width, Y: vp.Height}, vp)
	if err != nil {
		return geo.Bounds{}, err
	}

	b := geo.Bounds{South: se.Lat, North: nw.Lat, West: nw.Lon, East: se.Lon}
	if vp.Width >= WorldSize(vp.Zoom) {
		b.West, b.East = -180, 180
	}
	if b.North >= MaxLatitude-1e-9 {
		b.North = 90
	}
	if b.South <= -MaxLatitude+1e-9 {
		b.South = -90
	}
	return b, nil
}

func normalizeLon(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}
