// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package cluster

import (
	"math"
	"sort"
	"strconv"

	"github.com/tomtom215/waypoint/internal/cache"
	"github.com/tomtom215/waypoint/internal/geo"
)

// Band maps zoom levels up to and including MaxZoom to a merge radius.
type Band struct {
	MaxZoom  float64 `koanf:"max_zoom" json:"max_zoom"`
	RadiusKm float64 `koanf:"radius_km" json:"radius_km"`
}

// DefaultBands returns the standard zoom to radius table.
// Zooms above the last band do not merge.
func DefaultBands() []Band {
	return []Band{
		{MaxZoom: 3, RadiusKm: 100},
		{MaxZoom: 5, RadiusKm: 50},
		{MaxZoom: 8, RadiusKm: 20},
		{MaxZoom: 11, RadiusKm: 5},
		{MaxZoom: 14, RadiusKm: 1},
	}
}

// Options configures a Clusterer.
type Options struct {
	// Bands must be sorted by MaxZoom with non-increasing radii.
	// Empty means DefaultBands.
	Bands []Band

	// DistanceCacheSize bounds the pairwise distance cache. Default 10000.
	DistanceCacheSize int
}

// pairKey is an unordered coordinate pair; a is always the lexicographically smaller end.
type pairKey struct {
	aLat, aLon float64
	bLat, bLon float64
}

func newPairKey(p, q geo.Point) pairKey {
	if p.Lat < q.Lat || (p.Lat == q.Lat && p.Lon <= q.Lon) {
		return pairKey{p.Lat, p.Lon, q.Lat, q.Lon}
	}
	return pairKey{q.Lat, q.Lon, p.Lat, p.Lon}
}

// Clusterer partitions points into clusters. Safe for concurrent use.
type Clusterer struct {
	bands     []Band
	distances *cache.Bounded[pairKey, float64]
}

// Stats reports distance cache usage.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Size    int     `json:"size"`
	HitRate float64 `json:"hit_rate"`
}

// New creates a Clusterer.
func New(opts Options) *Clusterer {
	bands := opts.Bands
	if len(bands) == 0 {
		bands = DefaultBands()
	}
	bands = append([]Band(nil), bands...)
	sort.SliceStable(bands, func(i, j int) bool { return bands[i].MaxZoom < bands[j].MaxZoom })

	size := opts.DistanceCacheSize
	if size <= 0 {
		size = 10000
	}

	return &Clusterer{
		bands:     bands,
		distances: cache.NewBounded[pairKey, float64](size),
	}
}

// RadiusForZoom returns the merge radius in km for zoom, or 0 when no merging applies.
func (c *Clusterer) RadiusForZoom(zoom float64) float64 {
	if math.IsNaN(zoom) || zoom <= 0 {
		return 0
	}
	for _, b := range c.bands {
		if zoom <= b.MaxZoom {
			return b.RadiusKm
		}
	}
	return 0
}

// Cluster partitions the valid points at the given zoom.
// Invalid points are dropped. The result is never nil.
func (c *Clusterer) Cluster(points []geo.Point, zoom float64) []geo.Cluster {
	valid := make([]geo.Point, 0, len(points))
	for _, p := range points {
		if p.Valid() {
			valid = append(valid, p)
		}
	}
	if len(valid) == 0 {
		return []geo.Cluster{}
	}

	radius := c.RadiusForZoom(zoom)
	if radius <= 0 {
		out := make([]geo.Cluster, len(valid))
		for i, p := range valid {
			out[i] = singleton(p)
		}
		return out
	}

	sort.SliceStable(valid, func(i, j int) bool { return valid[i].Lat < valid[j].Lat })

	latWindow := radius / geo.KmPerDegreeLat
	processed := make([]bool, len(valid))
	out := make([]geo.Cluster, 0, len(valid))

	for i, seed := range valid {
		if processed[i] {
			continue
		}
		processed[i] = true
		members := []geo.Point{seed}

		for j := i + 1; j < len(valid); j++ {
			if valid[j].Lat-seed.Lat > latWindow {
				break
			}
			if processed[j] {
				continue
			}
			if c.distance(seed, valid[j]) <= radius {
				members = append(members, valid[j])
				processed[j] = true
			}
		}

		if len(members) == 1 {
			out = append(out, singleton(seed))
			continue
		}
		out = append(out, newCluster("c:"+seed.ID+":"+strconv.Itoa(len(members)), members))
	}

	return out
}

// Stats returns distance cache counters.
func (c *Clusterer) Stats() Stats {
	s := c.distances.Stats()
	return Stats{Hits: s.Hits, Misses: s.Misses, Size: s.Size, HitRate: s.HitRate()}
}

// Reset drops all memoized distances.
func (c *Clusterer) Reset() {
	c.distances.Clear()
}

func (c *Clusterer) distance(p, q geo.Point) float64 {
	return c.distances.GetOrCompute(newPairKey(p, q), func() float64 {
		return geo.EquirectangularKm(p.Lat, p.Lon, q.Lat, q.Lon)
	})
}

func singleton(p geo.Point) geo.Cluster {
	return newCluster("p:"+p.ID, []geo.Point{p})
}

func newCluster(id string, members []geo.Point) geo.Cluster {
	total := 0
	for _, m := range members {
		total += m.PhotoCount
	}
	return geo.Cluster{
		ID:         id,
		Members:    members,
		Centroid:   geo.Centroid(members),
		PhotoCount: total,
	}
}
