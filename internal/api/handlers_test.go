// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"net/http"
	"testing"

	"github.com/tomtom215/waypoint/internal/geo"
	"github.com/tomtom215/waypoint/internal/mapview"
	"github.com/tomtom215/waypoint/internal/photoday"
	"github.com/tomtom215/waypoint/internal/popup"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec, body := env.do(t, http.MethodGet, "/api/v1/health/live", nil)
	expectStatus(t, rec, http.StatusOK)
	if !body.Success {
		t.Error("live: success = false")
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", rec.Header().Get("Cache-Control"))
	}

	rec, body = env.do(t, http.MethodGet, "/api/v1/health/ready", nil)
	expectStatus(t, rec, http.StatusOK)
	var ready struct {
		Ready     bool   `json:"ready"`
		Version   uint64 `json:"dataset_version"`
		Locations int    `json:"locations"`
	}
	decodeData(t, body, &ready)
	if !ready.Ready || ready.Version != 1 || ready.Locations != 3 {
		t.Errorf("ready = %+v", ready)
	}
}

func TestHealthReady_NotLoaded(t *testing.T) {
	env := newTestEnv(t, envOptions{skipLoad: true})

	rec, body := env.do(t, http.MethodGet, "/api/v1/health/ready", nil)
	expectStatus(t, rec, http.StatusServiceUnavailable)
	expectErrorCode(t, body, ErrCodeServiceUnavailable)
}

func TestLocations_Pagination(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec, body := env.do(t, http.MethodGet, "/api/v1/locations?limit=2&offset=1", nil)
	expectStatus(t, rec, http.StatusOK)

	var page []LocationSummary
	decodeData(t, body, &page)
	if len(page) != 2 || page[0].ID != "versailles" || page[1].ID != "kyoto" {
		t.Errorf("page = %+v, want versailles, kyoto", page)
	}
	p := body.Meta.Pagination
	if p == nil || p.Total != 3 || p.Count != 2 || p.HasMore {
		t.Errorf("pagination = %+v", p)
	}
	if page[0].PhotoCount != 4 {
		t.Errorf("versailles photo count = %d, want 4", page[0].PhotoCount)
	}
}

func TestLocations_CountryFilter(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	_, body := env.do(t, http.MethodGet, "/api/v1/locations?country=france&limit=1", nil)
	var page []LocationSummary
	decodeData(t, body, &page)
	if len(page) != 1 || page[0].ID != "paris" {
		t.Errorf("page = %+v, want paris", page)
	}
	if p := body.Meta.Pagination; p.Total != 2 || !p.HasMore {
		t.Errorf("pagination = %+v, want total 2 with more", p)
	}
}

func TestLocations_InvalidParams(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	tests := []struct {
		target string
		code   string
	}{
		{"/api/v1/locations?limit=abc", ErrCodeBadRequest},
		{"/api/v1/locations?limit=5000", ErrCodeValidationFailed},
		{"/api/v1/locations?offset=-1", ErrCodeValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec, body := env.do(t, http.MethodGet, tt.target, nil)
			expectStatus(t, rec, http.StatusBadRequest)
			expectErrorCode(t, body, tt.code)
		})
	}
}

func TestLocation(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec, body := env.do(t, http.MethodGet, "/api/v1/locations/paris", nil)
	expectStatus(t, rec, http.StatusOK)
	var loc struct {
		ID     string `json:"id"`
		Photos []struct {
			ID string `json:"id"`
		} `json:"photos"`
	}
	decodeData(t, body, &loc)
	if loc.ID != "paris" || len(loc.Photos) != 2 {
		t.Errorf("location = %+v", loc)
	}

	rec, body = env.do(t, http.MethodGet, "/api/v1/locations/atlantis", nil)
	expectStatus(t, rec, http.StatusNotFound)
	expectErrorCode(t, body, ErrCodeNotFound)
}

func TestLocationsNearby(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec, body := env.do(t, http.MethodGet, "/api/v1/locations/nearby?lat=48.85&lon=2.35&radius_km=30", nil)
	expectStatus(t, rec, http.StatusOK)
	var results []NearbyResult
	decodeData(t, body, &results)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2: %+v", len(results), results)
	}
	if results[0].ID != "paris" || results[1].ID != "versailles" {
		t.Errorf("order = %s, %s; want paris, versailles", results[0].ID, results[1].ID)
	}
	if results[0].DistanceKm > results[1].DistanceKm {
		t.Error("results not sorted by distance")
	}

	for _, target := range []string{
		"/api/v1/locations/nearby?lon=2.35",
		"/api/v1/locations/nearby?lat=x&lon=2.35",
		"/api/v1/locations/nearby?lat=91&lon=2.35",
		"/api/v1/locations/nearby?lat=1&lon=2&radius_km=-5",
		"/api/v1/locations/nearby?lat=NaN&lon=2",
	} {
		rec, _ := env.do(t, http.MethodGet, target, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestClusters_Dataset(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec, body := env.do(t, http.MethodGet, "/api/v1/clusters?zoom=2", nil)
	expectStatus(t, rec, http.StatusOK)
	var resp ClustersResponse
	decodeData(t, body, &resp)
	if resp.RadiusKm != 100 || resp.Version != 1 {
		t.Errorf("radius = %v version = %d", resp.RadiusKm, resp.Version)
	}
	if len(resp.Clusters) != 2 {
		t.Fatalf("got %d clusters, want 2", len(resp.Clusters))
	}
	for _, c := range resp.Clusters {
		if len(c.Members) != 0 {
			t.Errorf("cluster %s has members without include_members", c.ID)
		}
	}

	_, body = env.do(t, http.MethodGet, "/api/v1/clusters?zoom=2&include_members=true", nil)
	decodeData(t, body, &resp)
	members := 0
	for _, c := range resp.Clusters {
		members += len(c.Members)
	}
	if members != 3 {
		t.Errorf("members = %d, want 3", members)
	}

	// High zoom: no merging.
	_, body = env.do(t, http.MethodGet, "/api/v1/clusters?zoom=16", nil)
	decodeData(t, body, &resp)
	if len(resp.Clusters) != 3 {
		t.Errorf("zoom 16: got %d clusters, want 3", len(resp.Clusters))
	}
}

func TestClusters_InvalidZoom(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	for _, target := range []string{
		"/api/v1/clusters",
		"/api/v1/clusters?zoom=far",
		"/api/v1/clusters?zoom=30",
		"/api/v1/clusters?zoom=-1",
	} {
		rec, _ := env.do(t, http.MethodGet, target, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestClusterPoints(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	req := ClustersRequest{
		Zoom: 2,
		Points: []geo.Point{
			{ID: "a", Lat: 40.0, Lon: -74.0, PhotoCount: 1},
			{ID: "b", Lat: 40.1, Lon: -74.1, PhotoCount: 2},
			{ID: "c", Lat: 40.2, Lon: -74.0, PhotoCount: 3},
			{ID: "d", Lat: 51.5, Lon: -0.1, PhotoCount: 4},
			{ID: "bad", Lat: 95, Lon: 0},
		},
	}
	rec, body := env.do(t, http.MethodPost, "/api/v1/clusters", req)
	expectStatus(t, rec, http.StatusOK)

	var resp ClustersResponse
	decodeData(t, body, &resp)
	if len(resp.Clusters) != 2 {
		t.Fatalf("got %d clusters, want 2: %+v", len(resp.Clusters), resp.Clusters)
	}
	total, photos := 0, 0
	for _, c := range resp.Clusters {
		total += len(c.Members)
		photos += c.PhotoCount
	}
	if total != 4 || photos != 10 {
		t.Errorf("members = %d photos = %d, want 4 and 10", total, photos)
	}
}

func TestClusterPoints_BadBodies(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	tests := []struct {
		name string
		body interface{}
		code string
	}{
		{"empty", "", ErrCodeBadRequest},
		{"malformed", `{"zoom":`, ErrCodeBadRequest},
		{"zoom out of range", `{"zoom": 99, "points": []}`, ErrCodeValidationFailed},
		{
			"duplicate point ids",
			`{"zoom": 2, "points": [{"id": "a", "lat": 40, "lon": -74}, {"id": "a", "lat": 51.5, "lon": -0.1}]}`,
			ErrCodeValidationFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := env.do(t, http.MethodPost, "/api/v1/clusters", tt.body)
			expectStatus(t, rec, http.StatusBadRequest)
			expectErrorCode(t, body, tt.code)
		})
	}
}

func TestPopupPlacement(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	vp := geo.Viewport{Center: geo.LatLon{Lat: 48.8566, Lon: 2.3522}, Zoom: 10, Width: 1024, Height: 768}

	rec, body := env.do(t, http.MethodPost, "/api/v1/popup/placement", PopupRequest{Lat: 48.8566, Lon: 2.3522, Viewport: vp})
	expectStatus(t, rec, http.StatusOK)
	var resp PopupResponse
	decodeData(t, body, &resp)
	if resp.Default || resp.Placement.Anchor != popup.AnchorBottom {
		t.Errorf("centered marker placement = %+v", resp)
	}

	// A coordinate that cannot be projected falls back instead of failing.
	rec, body = env.do(t, http.MethodPost, "/api/v1/popup/placement", PopupRequest{Lat: 120, Lon: 0, Viewport: vp})
	expectStatus(t, rec, http.StatusOK)
	decodeData(t, body, &resp)
	if !resp.Default || resp.Placement != popup.DefaultPlacement() {
		t.Errorf("invalid marker placement = %+v, want default", resp)
	}
}

func TestPopupPlacement_InvalidViewport(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	vp := geo.Viewport{Center: geo.LatLon{Lat: 0, Lon: 0}, Zoom: 3, Width: 0, Height: 600}

	rec, body := env.do(t, http.MethodPost, "/api/v1/popup/placement", PopupRequest{Lat: 1, Lon: 1, Viewport: vp})
	expectStatus(t, rec, http.StatusBadRequest)
	expectErrorCode(t, body, ErrCodeValidationFailed)
}

func TestMapView(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	req := mapview.Request{
		Viewport:   geo.Viewport{Center: geo.LatLon{Lat: 48.8566, Lon: 2.3522}, Zoom: 10, Width: 1024, Height: 768},
		BoundsOnly: true,
	}

	rec, body := env.do(t, http.MethodPost, "/api/v1/map/view", req)
	expectStatus(t, rec, http.StatusOK)
	var resp mapview.Response
	decodeData(t, body, &resp)
	if len(resp.Clusters) != 2 || resp.Bounds == nil {
		t.Errorf("view = %+v", resp)
	}
}

func TestMapView_NotLoaded(t *testing.T) {
	env := newTestEnv(t, envOptions{skipLoad: true})
	req := mapview.Request{Viewport: geo.Viewport{Zoom: 3, Width: 800, Height: 600}}

	rec, body := env.do(t, http.MethodPost, "/api/v1/map/view", req)
	expectStatus(t, rec, http.StatusServiceUnavailable)
	expectErrorCode(t, body, ErrCodeServiceUnavailable)
}

func TestPhotoOfTheDay(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec, body := env.do(t, http.MethodGet, "/api/v1/photo-of-the-day", nil)
	expectStatus(t, rec, http.StatusOK)
	var today photoday.Result
	decodeData(t, body, &today)
	if today.Date != "2026-03-14" || today.Photo.Photo.ID == "" {
		t.Errorf("today = %+v", today)
	}

	// Same day again: same photo.
	_, body = env.do(t, http.MethodGet, "/api/v1/photo-of-the-day?date=2026-03-14", nil)
	var again photoday.Result
	decodeData(t, body, &again)
	if again.Photo.Photo.ID != today.Photo.Photo.ID {
		t.Errorf("second pick = %s, want %s", again.Photo.Photo.ID, today.Photo.Photo.ID)
	}
}

func TestPhotoOfTheDay_BadDates(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	tests := []struct {
		target string
		code   string
	}{
		{"/api/v1/photo-of-the-day?date=14-03-2026", ErrCodeValidationFailed},
		{"/api/v1/photo-of-the-day?date=2026-03-15", ErrCodeBadRequest},
	}
	for _, tt := range tests {
		rec, body := env.do(t, http.MethodGet, tt.target, nil)
		expectStatus(t, rec, http.StatusBadRequest)
		expectErrorCode(t, body, tt.code)
	}
}

func TestRouter_NotFoundAndMethod(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec, body := env.do(t, http.MethodGet, "/api/v1/nowhere", nil)
	expectStatus(t, rec, http.StatusNotFound)
	expectErrorCode(t, body, ErrCodeNotFound)

	rec, body = env.do(t, http.MethodDelete, "/api/v1/clusters", nil)
	expectStatus(t, rec, http.StatusMethodNotAllowed)
	expectErrorCode(t, body, ErrCodeMethodNotAllowed)
}

func TestRouter_SecurityHeadersAndRequestID(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec, body := env.do(t, http.MethodGet, "/api/v1/locations", nil, "X-Request-ID", "req-123")
	expectStatus(t, rec, http.StatusOK)
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing X-Content-Type-Options")
	}
	if rec.Header().Get("X-Request-ID") != "req-123" {
		t.Errorf("X-Request-ID = %q", rec.Header().Get("X-Request-ID"))
	}
	if body.Meta == nil || body.Meta.RequestID != "req-123" {
		t.Errorf("meta = %+v, want request_id req-123", body.Meta)
	}
}
