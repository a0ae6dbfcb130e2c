// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/waypoint/internal/geo"
	"github.com/tomtom215/waypoint/internal/locations"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/mapview"
	"github.com/tomtom215/waypoint/internal/popup"
	ws "github.com/tomtom215/waypoint/internal/websocket"
)

// ClustersResponse is the body of both clustering endpoints.
type ClustersResponse struct {
	Zoom     float64       `json:"zoom"`
	RadiusKm float64       `json:"radius_km"`
	Version  uint64        `json:"version,omitempty"`
	Clusters []geo.Cluster `json:"clusters"`
}

// Clusters clusters the whole dataset at ?zoom=.
func (h *Handler) Clusters(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if r.URL.Query().Get("zoom") == "" {
		rw.BadRequest("zoom is required")
		return
	}
	zoom, err := queryFloat(r, "zoom", 0)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	q := ClustersQuery{Zoom: zoom, IncludeMembers: queryBool(r, "include_members")}
	if !validate(w, r, &q) {
		return
	}

	snap := h.store.Snapshot()
	if snap == nil {
		rw.ServiceUnavailable("Dataset not loaded")
		return
	}

	clusters := h.maps.Cluster(snap.Points, q.Zoom)
	if !q.IncludeMembers {
		clusters = withoutMembers(clusters)
	}
	rw.Success(ClustersResponse{
		Zoom:     q.Zoom,
		RadiusKm: h.maps.Clusterer().RadiusForZoom(q.Zoom),
		Version:  snap.Version,
		Clusters: clusters,
	})
}

// ClusterPoints clusters a client-supplied point set.
func (h *Handler) ClusterPoints(w http.ResponseWriter, r *http.Request) {
	var req ClustersRequest
	if !decodeBody(w, r, &req) {
		return
	}
	WriteSuccess(w, r, ClustersResponse{
		Zoom:     req.Zoom,
		RadiusKm: h.maps.Clusterer().RadiusForZoom(req.Zoom),
		Clusters: h.maps.Cluster(req.Points, req.Zoom),
	})
}

// withoutMembers keeps IDs and aggregates but drops member lists.
func withoutMembers(clusters []geo.Cluster) []geo.Cluster {
	out := make([]geo.Cluster, len(clusters))
	for i, c := range clusters {
		out[i] = geo.Cluster{ID: c.ID, Centroid: c.Centroid, PhotoCount: c.PhotoCount}
	}
	return out
}

// PopupResponse carries a placement for one marker.
type PopupResponse struct {
	Placement popup.Placement `json:"placement"`
	// Default is true when the fallback placement was returned.
	Default bool `json:"default"`
}

// PopupPlacement computes the popup placement for a marker. Markers that
// cannot be projected get the default placement, never an error.
func (h *Handler) PopupPlacement(w http.ResponseWriter, r *http.Request) {
	var req PopupRequest
	if !decodeBody(w, r, &req) {
		return
	}
	placement := h.maps.Place(req.Lat, req.Lon, req.Viewport)
	WriteSuccess(w, r, PopupResponse{
		Placement: placement,
		Default:   !geo.ValidLatLon(req.Lat, req.Lon) || req.Viewport.Degenerate(),
	})
}

// MapView returns clusters with popup placements for a viewport.
func (h *Handler) MapView(w http.ResponseWriter, r *http.Request) {
	var req mapview.Request
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.maps.View(r.Context(), req)
	switch {
	case errors.Is(err, locations.ErrNotLoaded):
		NewResponseWriter(w, r).ServiceUnavailable("Dataset not loaded")
	case err != nil:
		NewResponseWriter(w, r).BadRequest("Viewport cannot be projected")
	default:
		WriteSuccess(w, r, resp)
	}
}

// ViewportStream upgrades to a websocket that answers viewport messages
// with map views.
func (h *Handler) ViewportStream(w http.ResponseWriter, r *http.Request) {
	upgrader := h.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader already wrote the HTTP error.
		logging.Ctx(r.Context()).Debug().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	ws.NewClient(context.WithoutCancel(r.Context()), h.hub, conn, h.maps).Start()
}
