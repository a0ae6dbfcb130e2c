// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package popup

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/tomtom215/waypoint/internal/cache"
	"github.com/tomtom215/waypoint/internal/geo"
	"github.com/tomtom215/waypoint/internal/logging"
)

// Anchor is the side of the popup attached to the marker.
type Anchor string

const (
	AnchorTop         Anchor = "top"
	AnchorBottom      Anchor = "bottom"
	AnchorLeft        Anchor = "left"
	AnchorRight       Anchor = "right"
	AnchorTopLeft     Anchor = "top-left"
	AnchorTopRight    Anchor = "top-right"
	AnchorBottomLeft  Anchor = "bottom-left"
	AnchorBottomRight Anchor = "bottom-right"
)

// OpensDown reports whether the popup hangs below the marker.
func (a Anchor) OpensDown() bool {
	return a == AnchorTop || a == AnchorTopLeft || a == AnchorTopRight
}

// OpensUp reports whether the popup sits above the marker.
func (a Anchor) OpensUp() bool {
	return a == AnchorBottom || a == AnchorBottomLeft || a == AnchorBottomRight
}

// Zone is the region of the map container a marker falls into.
type Zone int

const (
	ZoneCenter Zone = iota
	ZoneTop
	ZoneBottom
	ZoneLeft
	ZoneRight
	ZoneTopLeft
	ZoneTopRight
	ZoneBottomLeft
	ZoneBottomRight
)

var zoneNames = [...]string{"center", "top", "bottom", "left", "right", "top-left", "top-right", "bottom-left", "bottom-right"}

func (z Zone) String() string {
	if int(z) < len(zoneNames) {
		return zoneNames[z]
	}
	return fmt.Sprintf("zone(%d)", int(z))
}

// ScreenPoint is a position in container pixels, origin top-left.
type ScreenPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Offset is the pixel gap between marker and popup along each axis.
// Both components are non-negative and point away from the marker.
type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Placement is where a popup opens.
type Placement struct {
	Anchor    Anchor  `json:"anchor"`
	Offset    Offset  `json:"offset"`
	MaxHeight float64 `json:"max_height"`
}

// DefaultPlacement is returned whenever a placement cannot be computed.
func DefaultPlacement() Placement {
	return Placement{Anchor: AnchorBottom, Offset: Offset{X: 0, Y: 25}, MaxHeight: 400}
}

// Projector maps geographic coordinates to container pixels for a viewport.
type Projector interface {
	Project(lat, lon float64, vp geo.Viewport) (ScreenPoint, error)
}

// ProjectorFunc adapts a function to Projector.
type ProjectorFunc func(lat, lon float64, vp geo.Viewport) (ScreenPoint, error)

// Project calls f.
func (f ProjectorFunc) Project(lat, lon float64, vp geo.Viewport) (ScreenPoint, error) {
	return f(lat, lon, vp)
}

// Config holds the placement tuning constants.
type Config struct {
	HeaderHeight   float64 `koanf:"header_height" validate:"gte=0"`
	HeaderBuffer   float64 `koanf:"header_buffer" validate:"gte=0"`
	EdgeThreshold  float64 `koanf:"edge_threshold" validate:"gt=0,lt=0.5"`
	BaseOffset     float64 `koanf:"base_offset" validate:"gte=0"`
	EdgeMargin     float64 `koanf:"edge_margin" validate:"gte=0"`
	MinMaxHeight   float64 `koanf:"min_max_height" validate:"gt=0"`
	MaxMaxHeight   float64 `koanf:"max_max_height" validate:"gtefield=MinMaxHeight"`
	CoordPrecision int     `koanf:"coord_precision" validate:"gte=0,lte=10"`
	ZoomPrecision  int     `koanf:"zoom_precision" validate:"gte=0,lte=6"`
	CacheSize      int     `koanf:"cache_size" validate:"gt=0"`
}

// DefaultConfig returns the standard tuning constants.
func DefaultConfig() Config {
	return Config{
		HeaderHeight:   64,
		HeaderBuffer:   20,
		EdgeThreshold:  0.25,
		BaseOffset:     25,
		EdgeMargin:     16,
		MinMaxHeight:   250,
		MaxMaxHeight:   400,
		CoordPrecision: 4,
		ZoomPrecision:  1,
		CacheSize:      500,
	}
}

// HeaderBand returns the reserved height at the top of the container.
func (c Config) HeaderBand() float64 {
	return c.HeaderHeight + c.HeaderBuffer
}

var errNonFinite = errors.New("projected position is not finite")

// placementKey identifies a placement request after rounding.
type placementKey struct {
	lat, lon      int64
	zoom          int64
	centerLat     int64
	centerLon     int64
	width, height float64
}

// Placer computes popup placements for one projector. The projector is
// fixed at construction so cached placements always come from it.
// Safe for concurrent use.
type Placer struct {
	cfg       Config
	proj      Projector
	positions *cache.Bounded[placementKey, Placement]
	fallbacks atomic.Int64
}

// Stats reports cache usage and how often the default placement was used.
type Stats struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Size      int     `json:"size"`
	HitRate   float64 `json:"hit_rate"`
	Fallbacks int64   `json:"fallbacks"`
}

// NewPlacer creates a Placer bound to proj. A nil proj makes every
// placement the default one. Values of cfg outside their valid range are
// replaced with the defaults; valid zeros are kept.
func NewPlacer(cfg Config, proj Projector) *Placer {
	cfg = sanitize(cfg)
	return &Placer{
		cfg:       cfg,
		proj:      proj,
		positions: cache.NewBounded[placementKey, Placement](cfg.CacheSize),
	}
}

func sanitize(cfg Config) Config {
	d := DefaultConfig()
	if cfg.HeaderHeight < 0 || !finite(cfg.HeaderHeight) {
		cfg.HeaderHeight = d.HeaderHeight
	}
	if cfg.HeaderBuffer < 0 || !finite(cfg.HeaderBuffer) {
		cfg.HeaderBuffer = d.HeaderBuffer
	}
	if !(cfg.EdgeThreshold > 0 && cfg.EdgeThreshold < 0.5) {
		cfg.EdgeThreshold = d.EdgeThreshold
	}
	if cfg.BaseOffset < 0 || !finite(cfg.BaseOffset) {
		cfg.BaseOffset = d.BaseOffset
	}
	if cfg.EdgeMargin < 0 || !finite(cfg.EdgeMargin) {
		cfg.EdgeMargin = d.EdgeMargin
	}
	if !(cfg.MinMaxHeight > 0) || !finite(cfg.MinMaxHeight) {
		cfg.MinMaxHeight = d.MinMaxHeight
	}
	if !(cfg.MaxMaxHeight >= cfg.MinMaxHeight) || !finite(cfg.MaxMaxHeight) {
		cfg.MaxMaxHeight = math.Max(d.MaxMaxHeight, cfg.MinMaxHeight)
	}
	if cfg.CoordPrecision < 0 || cfg.CoordPrecision > 10 {
		cfg.CoordPrecision = d.CoordPrecision
	}
	if cfg.ZoomPrecision < 0 || cfg.ZoomPrecision > 6 {
		cfg.ZoomPrecision = d.ZoomPrecision
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = d.CacheSize
	}
	return cfg
}

// Config returns the effective configuration.
func (p *Placer) Config() Config {
	return p.cfg
}

// Projector returns the bound projector, possibly nil.
func (p *Placer) Projector() Projector {
	return p.proj
}

// Default returns the fallback placement for this Placer's configuration.
func (p *Placer) Default() Placement {
	return Placement{Anchor: AnchorBottom, Offset: Offset{Y: p.cfg.BaseOffset}, MaxHeight: p.cfg.MaxMaxHeight}
}

// Place returns the popup placement for a marker at lat/lon. It never fails.
func (p *Placer) Place(lat, lon float64, vp geo.Viewport) Placement {
	if p.proj == nil || !geo.ValidLatLon(lat, lon) || vp.Degenerate() || vp.Height <= p.cfg.HeaderBand() {
		return p.fallback()
	}

	key := p.key(lat, lon, vp)
	if cached, ok := p.positions.Get(key); ok {
		return cached
	}

	placement, err := p.compute(lat, lon, vp)
	if err != nil {
		logging.Debug().Err(err).Float64("lat", lat).Float64("lon", lon).Msg("popup placement fell back to default")
		return p.fallback()
	}

	p.positions.Add(key, placement)
	return placement
}

// Stats returns cache counters.
func (p *Placer) Stats() Stats {
	s := p.positions.Stats()
	return Stats{
		Hits:      s.Hits,
		Misses:    s.Misses,
		Size:      s.Size,
		HitRate:   s.HitRate(),
		Fallbacks: p.fallbacks.Load(),
	}
}

// Reset drops all cached placements.
func (p *Placer) Reset() {
	p.positions.Clear()
}

func (p *Placer) fallback() Placement {
	p.fallbacks.Add(1)
	return p.Default()
}

func (p *Placer) key(lat, lon float64, vp geo.Viewport) placementKey {
	return placementKey{
		lat:       roundTo(lat, p.cfg.CoordPrecision),
		lon:       roundTo(lon, p.cfg.CoordPrecision),
		zoom:      roundTo(vp.Zoom, p.cfg.ZoomPrecision),
		centerLat: roundTo(vp.Center.Lat, p.cfg.CoordPrecision),
		centerLon: roundTo(vp.Center.Lon, p.cfg.CoordPrecision),
		width:     vp.Width,
		height:    vp.Height,
	}
}

// compute projects the marker and derives the placement. Panics from the
// projector are converted to errors.
func (p *Placer) compute(lat, lon float64, vp geo.Viewport) (placement Placement, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("projector panic: %v", r)
		}
	}()

	pt, err := p.proj.Project(lat, lon, vp)
	if err != nil {
		return Placement{}, fmt.Errorf("project: %w", err)
	}
	if !finite(pt.X) || !finite(pt.Y) {
		return Placement{}, errNonFinite
	}

	return p.placeAt(pt, vp), nil
}

// placeAt derives a placement from a screen position.
func (p *Placer) placeAt(pt ScreenPoint, vp geo.Viewport) Placement {
	band := p.cfg.HeaderBand()
	zone := p.Classify(pt, vp)
	anchor := anchorForZone(zone)
	offset := p.offsetFor(anchor)

	if pt.Y < band {
		switch zone {
		case ZoneLeft, ZoneTopLeft, ZoneBottomLeft:
			anchor = AnchorTopLeft
		case ZoneRight, ZoneTopRight, ZoneBottomRight:
			anchor = AnchorTopRight
		default:
			anchor = AnchorTop
		}
		offset = p.offsetFor(anchor)
		offset.Y = math.Max(p.cfg.BaseOffset, band-pt.Y+p.cfg.BaseOffset)
	}

	return Placement{
		Anchor:    anchor,
		Offset:    offset,
		MaxHeight: p.maxHeight(anchor, offset, pt, vp),
	}
}

// Classify returns the zone of a screen position. The vertical axis excludes
// the header band; corners take precedence over edges.
func (p *Placer) Classify(pt ScreenPoint, vp geo.Viewport) Zone {
	band := p.cfg.HeaderBand()
	t := p.cfg.EdgeThreshold

	fx := pt.X / vp.Width
	fy := (pt.Y - band) / (vp.Height - band)

	left, right := fx < t, fx > 1-t
	top, bottom := fy < t, fy > 1-t

	switch {
	case top && left:
		return ZoneTopLeft
	case top && right:
		return ZoneTopRight
	case bottom && left:
		return ZoneBottomLeft
	case bottom && right:
		return ZoneBottomRight
	case top:
		return ZoneTop
	case bottom:
		return ZoneBottom
	case left:
		return ZoneLeft
	case right:
		return ZoneRight
	default:
		return ZoneCenter
	}
}

// anchorForZone opens the popup away from the nearest edge.
func anchorForZone(z Zone) Anchor {
	switch z {
	case ZoneTop:
		return AnchorTop
	case ZoneTopLeft:
		return AnchorTopLeft
	case ZoneTopRight:
		return AnchorTopRight
	case ZoneBottomLeft:
		return AnchorBottomLeft
	case ZoneBottomRight:
		return AnchorBottomRight
	case ZoneLeft:
		return AnchorLeft
	case ZoneRight:
		return AnchorRight
	default:
		return AnchorBottom
	}
}

func (p *Placer) offsetFor(a Anchor) Offset {
	base := p.cfg.BaseOffset
	switch a {
	case AnchorLeft, AnchorRight:
		return Offset{X: base}
	case AnchorTop, AnchorBottom:
		return Offset{Y: base}
	default:
		return Offset{X: base, Y: base}
	}
}

// maxHeight is the room left in the opening direction, clamped to the configured range.
func (p *Placer) maxHeight(a Anchor, off Offset, pt ScreenPoint, vp geo.Viewport) float64 {
	band := p.cfg.HeaderBand()
	margin := p.cfg.EdgeMargin

	var space float64
	switch {
	case a.OpensDown():
		space = vp.Height - pt.Y - off.Y - margin
	case a.OpensUp():
		space = pt.Y - off.Y - band - margin
	default:
		space = vp.Height - band - 2*margin
	}

	return math.Min(math.Max(space, p.cfg.MinMaxHeight), p.cfg.MaxMaxHeight)
}

func roundTo(v float64, precision int) int64 {
	return int64(math.Round(v * math.Pow10(precision)))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
