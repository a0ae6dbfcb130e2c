// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/waypoint/internal/locations"
)

// LocationSummary is a list entry without the photo list.
type LocationSummary struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Country    string   `json:"country,omitempty"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	PhotoCount int      `json:"photo_count"`
	Albums     []string `json:"albums,omitempty"`
}

func summarize(loc locations.Location) LocationSummary {
	return LocationSummary{
		ID:         loc.ID,
		Name:       loc.Name,
		Country:    loc.Country,
		Latitude:   loc.Latitude,
		Longitude:  loc.Longitude,
		PhotoCount: loc.Point().PhotoCount,
		Albums:     loc.Albums,
	}
}

// Locations lists locations in dataset order.
func (h *Handler) Locations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit, err := queryInt(r, "limit", 100)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	req := LocationsRequest{Limit: limit, Offset: offset, Country: r.URL.Query().Get("country")}
	if !validate(w, r, &req) {
		return
	}

	snap := h.store.Snapshot()
	if snap == nil {
		rw.ServiceUnavailable("Dataset not loaded")
		return
	}

	matched := make([]LocationSummary, 0, len(snap.Locations))
	for _, loc := range snap.Locations {
		if req.Country != "" && !strings.EqualFold(loc.Country, req.Country) {
			continue
		}
		matched = append(matched, summarize(loc))
	}

	total := len(matched)
	start := min(req.Offset, total)
	end := min(start+req.Limit, total)
	page := matched[start:end]

	rw.SuccessWithPagination(page, &PaginationMeta{
		Total:   total,
		Count:   len(page),
		Offset:  req.Offset,
		Limit:   req.Limit,
		HasMore: end < total,
	})
}

// Location returns one location with its photos.
func (h *Handler) Location(w http.ResponseWriter, r *http.Request) {
	loc, err := h.store.Get(chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, locations.ErrNotLoaded):
		NewResponseWriter(w, r).ServiceUnavailable("Dataset not loaded")
	case errors.Is(err, locations.ErrNotFound):
		NewResponseWriter(w, r).NotFound("Location not found")
	case err != nil:
		NewResponseWriter(w, r).InternalError("Failed to load location")
	default:
		WriteSuccess(w, r, loc)
	}
}

// NearbyResult is one entry of a nearby query.
type NearbyResult struct {
	LocationSummary
	DistanceKm float64 `json:"distance_km"`
}

// LocationsNearby returns located locations within radius_km, nearest first.
func (h *Handler) LocationsNearby(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	q := r.URL.Query()
	if q.Get("lat") == "" || q.Get("lon") == "" {
		rw.BadRequest("lat and lon are required")
		return
	}
	var req NearbyRequest
	var err error
	if req.Lat, err = queryFloat(r, "lat", 0); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if req.Lon, err = queryFloat(r, "lon", 0); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if req.RadiusKm, err = queryFloat(r, "radius_km", 50); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if !validate(w, r, &req) {
		return
	}

	nearby, err := h.store.Nearby(req.Lat, req.Lon, req.RadiusKm)
	if err != nil {
		rw.ServiceUnavailable("Dataset not loaded")
		return
	}
	results := make([]NearbyResult, len(nearby))
	for i, n := range nearby {
		results[i] = NearbyResult{LocationSummary: summarize(n.Location), DistanceKm: n.DistanceKm}
	}
	rw.Success(results)
}
