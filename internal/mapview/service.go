// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package mapview

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/waypoint/internal/cluster"
	"github.com/tomtom215/waypoint/internal/geo"
	"github.com/tomtom215/waypoint/internal/locations"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
	"github.com/tomtom215/waypoint/internal/popup"
	"github.com/tomtom215/waypoint/internal/projection"
)

// SnapshotProvider is satisfied by *locations.Store.
type SnapshotProvider interface {
	Snapshot() *locations.Snapshot
}

// Request describes one map view.
type Request struct {
	Viewport geo.Viewport `json:"viewport"`
	// IncludeMembers adds the member points to every cluster.
	IncludeMembers bool `json:"include_members"`
	// BoundsOnly drops points outside the visible area before clustering.
	BoundsOnly bool `json:"bounds_only"`
}

// ClusterView is one marker with its popup placement.
type ClusterView struct {
	ID         string          `json:"id"`
	Centroid   geo.LatLon      `json:"centroid"`
	Count      int             `json:"count"`
	PhotoCount int             `json:"photo_count"`
	Members    []geo.Point     `json:"members,omitempty"`
	Popup      popup.Placement `json:"popup"`
}

// Response is the rendered view.
type Response struct {
	Version  uint64        `json:"version"`
	Zoom     float64       `json:"zoom"`
	RadiusKm float64       `json:"radius_km"`
	Bounds   *geo.Bounds   `json:"bounds,omitempty"`
	Clusters []ClusterView `json:"clusters"`
}

// Stats groups the cache counters of both engines.
type Stats struct {
	Distance cluster.Stats `json:"distance"`
	Popup    popup.Stats   `json:"popup"`
}

// Service builds map views. Safe for concurrent use.
type Service struct {
	data      SnapshotProvider
	clusterer *cluster.Clusterer
	placer    *popup.Placer
	proj      projection.WebMercator
}

// New creates a Service. Nil engines are replaced with default-configured
// ones. placer should be bound to projection.WebMercator, which View also
// uses for its bounds filter.
func New(data SnapshotProvider, clusterer *cluster.Clusterer, placer *popup.Placer) *Service {
	if clusterer == nil {
		clusterer = cluster.New(cluster.Options{})
	}
	if placer == nil {
		placer = popup.NewPlacer(popup.DefaultConfig(), projection.WebMercator{})
	}
	return &Service{data: data, clusterer: clusterer, placer: placer}
}

// Clusterer returns the owned clustering engine.
func (s *Service) Clusterer() *cluster.Clusterer {
	return s.clusterer
}

// Placer returns the owned popup placer.
func (s *Service) Placer() *popup.Placer {
	return s.placer
}

// View clusters the current dataset for req.Viewport.
func (s *Service) View(ctx context.Context, req Request) (Response, error) {
	snap := s.data.Snapshot()
	if snap == nil {
		return Response{}, locations.ErrNotLoaded
	}
	vp := req.Viewport

	points := snap.Points
	var bounds *geo.Bounds
	if req.BoundsOnly {
		b, err := s.proj.VisibleBounds(vp)
		if err != nil {
			return Response{}, fmt.Errorf("visible bounds: %w", err)
		}
		bounds = &b
		points = filter(points, b)
	}

	clusters := s.Cluster(points, vp.Zoom)

	views := make([]ClusterView, len(clusters))
	for i, c := range clusters {
		placement := s.placer.Place(c.Centroid.Lat, c.Centroid.Lon, vp)
		metrics.RecordPopupPlacement(string(placement.Anchor))

		views[i] = ClusterView{
			ID:         c.ID,
			Centroid:   c.Centroid,
			Count:      c.Size(),
			PhotoCount: c.PhotoCount,
			Popup:      placement,
		}
		if req.IncludeMembers {
			views[i].Members = c.Members
		}
	}
	s.publishCacheStats()

	logging.Ctx(ctx).Debug().
		Uint64("version", snap.Version).
		Float64("zoom", vp.Zoom).
		Int("points", len(points)).
		Int("clusters", len(views)).
		Msg("Map view built")

	return Response{
		Version:  snap.Version,
		Zoom:     vp.Zoom,
		RadiusKm: s.clusterer.RadiusForZoom(vp.Zoom),
		Bounds:   bounds,
		Clusters: views,
	}, nil
}

// Cluster runs the owned clusterer and records timing metrics.
func (s *Service) Cluster(points []geo.Point, zoom float64) []geo.Cluster {
	start := time.Now()
	clusters := s.clusterer.Cluster(points, zoom)
	metrics.RecordClustering(time.Since(start), len(points), len(clusters))
	return clusters
}

// Place runs the owned placer.
func (s *Service) Place(lat, lon float64, vp geo.Viewport) popup.Placement {
	placement := s.placer.Place(lat, lon, vp)
	metrics.RecordPopupPlacement(string(placement.Anchor))
	s.publishCacheStats()
	return placement
}

// Stats returns both cache counters.
func (s *Service) Stats() Stats {
	return Stats{Distance: s.clusterer.Stats(), Popup: s.placer.Stats()}
}

// Reset clears both caches. Called after a dataset reload.
func (s *Service) Reset() {
	s.clusterer.Reset()
	s.placer.Reset()
	s.publishCacheStats()
}

func (s *Service) publishCacheStats() {
	st := s.Stats()
	metrics.UpdateCacheStats("distance", st.Distance.HitRate, st.Distance.Size)
	metrics.UpdateCacheStats("popup", st.Popup.HitRate, st.Popup.Size)
}

func filter(points []geo.Point, b geo.Bounds) []geo.Point {
	out := make([]geo.Point, 0, len(points))
	for _, p := range points {
		if p.Valid() && b.Contains(p.Lat, p.Lon) {
			out = append(out, p)
		}
	}
	return out
}
