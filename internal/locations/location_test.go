// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package locations

import (
	"errors"
	"math"
	"testing"
)

const sampleDataset = `[
  {"id": "paris", "name": "Paris", "country": "France", "latitude": 48.8566, "longitude": 2.3522,
   "albums": ["europe-2024"],
   "photos": [
     {"id": "p-002", "url": "photos/paris/eiffel.jpg", "caption": "Eiffel Tower"},
     {"id": "p-001", "url": "photos/paris/louvre.jpg"}
   ]},
  {"id": "versailles", "name": "Versailles", "country": "France", "latitude": 48.8049, "longitude": 2.1204, "photo_count": 7},
  {"id": "kyoto", "name": "Kyoto", "country": "Japan", "latitude": 35.0116, "longitude": 135.7681,
   "photos": [{"id": "k-001", "url": "photos/kyoto/fushimi.jpg", "taken_at": "2024-04-02T09:30:00Z"}]},
  {"id": "somewhere", "name": "Unmapped trip"}
]`

func TestDecode_Array(t *testing.T) {
	locs, err := Decode([]byte(sampleDataset))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(locs) != 4 {
		t.Fatalf("len = %d, want 4", len(locs))
	}

	paris := locs[0]
	if paris.Name != "Paris" || len(paris.Photos) != 2 || paris.Albums[0] != "europe-2024" {
		t.Errorf("paris = %+v", paris)
	}
	if locs[2].Photos[0].TakenAt == nil || locs[2].Photos[0].TakenAt.Year() != 2024 {
		t.Errorf("kyoto taken_at = %v", locs[2].Photos[0].TakenAt)
	}
	if locs[3].Latitude != nil || locs[3].HasCoordinates() {
		t.Error("location without coordinates should decode with nil latitude")
	}
}

func TestDecode_Envelope(t *testing.T) {
	locs, err := Decode([]byte(`{"locations": [{"id": "lima", "latitude": -12.05, "longitude": -77.04}]}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(locs) != 1 || locs[0].ID != "lima" {
		t.Errorf("locs = %+v", locs)
	}
}

func TestDecode_EmptyList(t *testing.T) {
	for _, doc := range []string{`[]`, `{}`} {
		locs, err := Decode([]byte(doc))
		if err != nil {
			t.Fatalf("Decode(%s) error = %v", doc, err)
		}
		if locs == nil || len(locs) != 0 {
			t.Errorf("Decode(%s) = %v, want empty non-nil", doc, locs)
		}
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", "   "},
		{"scalar", `42`},
		{"malformed", `[{"id": "x"`},
		{"missing id", `[{"name": "No ID"}]`},
		{"negative photo count", `[{"id": "x", "photo_count": -1}]`},
		{"photo without url", `[{"id": "x", "photos": [{"id": "p"}]}]`},
		{"duplicate id", `[{"id": "x"}, {"id": "x"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			if !errors.Is(err, ErrInvalidDataset) {
				t.Errorf("Decode() error = %v, want ErrInvalidDataset", err)
			}
		})
	}
}

func TestLocation_Point(t *testing.T) {
	lat, lon := 48.8566, 2.3522
	withPhotos := Location{ID: "a", Latitude: &lat, Longitude: &lon, Photos: []Photo{{ID: "1"}, {ID: "2"}}}
	p := withPhotos.Point()
	if !p.Valid() || p.PhotoCount != 2 {
		t.Errorf("Point() = %+v, want valid with 2 photos", p)
	}

	explicit := Location{ID: "b", Latitude: &lat, Longitude: &lon, PhotoCount: 9, Photos: []Photo{{ID: "1"}}}
	if got := explicit.Point().PhotoCount; got != 9 {
		t.Errorf("explicit PhotoCount = %d, want 9", got)
	}

	missing := Location{ID: "c", Latitude: &lat}
	mp := missing.Point()
	if mp.Valid() || !math.IsNaN(mp.Lon) {
		t.Errorf("Point() without longitude = %+v, want invalid", mp)
	}

	bad := 120.0
	outOfRange := Location{ID: "d", Latitude: &bad, Longitude: &lon}
	if outOfRange.HasCoordinates() || outOfRange.Point().Valid() {
		t.Error("latitude 120 should be invalid")
	}
}
