// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package locations

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/waypoint/internal/geo"
	"github.com/tomtom215/waypoint/internal/validation"
)

// ErrInvalidDataset wraps every decode or validation failure.
var ErrInvalidDataset = errors.New("invalid locations dataset")

// Photo is one photo attached to a location.
type Photo struct {
	ID      string     `json:"id" validate:"required,max=256"`
	URL     string     `json:"url" validate:"required"`
	Caption string     `json:"caption,omitempty" validate:"max=2000"`
	TakenAt *time.Time `json:"taken_at,omitempty"`
}

// Location is one place on the map.
type Location struct {
	ID         string   `json:"id" validate:"required,max=256"`
	Name       string   `json:"name" validate:"max=256"`
	Country    string   `json:"country,omitempty" validate:"max=128"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	PhotoCount int      `json:"photo_count" validate:"gte=0"`
	Albums     []string `json:"albums,omitempty"`
	Photos     []Photo  `json:"photos,omitempty" validate:"dive"`
}

// HasCoordinates reports whether both coordinates are present and valid.
func (l *Location) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil && geo.ValidLatLon(*l.Latitude, *l.Longitude)
}

// Point converts the location for clustering. Missing coordinates become NaN
// so the point is invalid. PhotoCount falls back to the number of photos.
func (l *Location) Point() geo.Point {
	lat, lon := math.NaN(), math.NaN()
	if l.Latitude != nil {
		lat = *l.Latitude
	}
	if l.Longitude != nil {
		lon = *l.Longitude
	}
	count := l.PhotoCount
	if count == 0 {
		count = len(l.Photos)
	}
	return geo.Point{ID: l.ID, Lat: lat, Lon: lon, PhotoCount: count}
}

type envelope struct {
	Locations []Location `json:"locations"`
}

// Decode parses and validates a dataset document.
func Decode(data []byte) ([]Location, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidDataset)
	}

	var locs []Location
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &locs); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDataset, err)
		}
	case '{':
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDataset, err)
		}
		locs = env.Locations
	default:
		return nil, fmt.Errorf("%w: expected a JSON array or object", ErrInvalidDataset)
	}

	seen := make(map[string]struct{}, len(locs))
	for i := range locs {
		if verr := validation.ValidateStruct(&locs[i]); verr != nil {
			return nil, fmt.Errorf("%w: location %d (%q): %v", ErrInvalidDataset, i, locs[i].ID, verr)
		}
		if _, dup := seen[locs[i].ID]; dup {
			return nil, fmt.Errorf("%w: duplicate location id %q", ErrInvalidDataset, locs[i].ID)
		}
		seen[locs[i].ID] = struct{}{}
	}

	if locs == nil {
		locs = []Location{}
	}
	return locs, nil
}
