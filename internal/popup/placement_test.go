// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package popup

import (
	"errors"
	"math"
	"testing"

	"github.com/tomtom215/waypoint/internal/geo"
)

var testViewport = geo.Viewport{
	Center: geo.LatLon{Lat: 48.85, Lon: 2.35},
	Zoom:   10,
	Width:  800,
	Height: 600,
}

// fixedAt returns a projector that always lands on (x, y) and counts calls.
func fixedAt(x, y float64, calls *int) Projector {
	return ProjectorFunc(func(_, _ float64, _ geo.Viewport) (ScreenPoint, error) {
		if calls != nil {
			*calls++
		}
		return ScreenPoint{X: x, Y: y}, nil
	})
}

func TestDefaultPlacement(t *testing.T) {
	want := Placement{Anchor: AnchorBottom, Offset: Offset{X: 0, Y: 25}, MaxHeight: 400}
	if got := DefaultPlacement(); got != want {
		t.Errorf("DefaultPlacement() = %+v, want %+v", got, want)
	}
	if got := NewPlacer(DefaultConfig(), nil).Default(); got != want {
		t.Errorf("Placer.Default() = %+v, want %+v", got, want)
	}
}

func TestPlace_NilProjectorAlwaysDefault(t *testing.T) {
	p := NewPlacer(DefaultConfig(), nil)

	for i := 0; i < 3; i++ {
		if got := p.Place(48.85, 2.35, testViewport); got != DefaultPlacement() {
			t.Errorf("call %d: got %+v, want default", i, got)
		}
	}
	if s := p.Stats(); s.Fallbacks != 3 {
		t.Errorf("fallbacks = %d, want 3", s.Fallbacks)
	}
}

func TestPlace_FailuresFallBackToDefault(t *testing.T) {
	tests := []struct {
		name string
		proj Projector
		vp   geo.Viewport
		lat  float64
	}{
		{
			name: "projector error",
			proj: ProjectorFunc(func(_, _ float64, _ geo.Viewport) (ScreenPoint, error) {
				return ScreenPoint{}, errors.New("map not ready")
			}),
			vp: testViewport,
		},
		{
			name: "projector panic",
			proj: ProjectorFunc(func(_, _ float64, _ geo.Viewport) (ScreenPoint, error) {
				panic("boom")
			}),
			vp: testViewport,
		},
		{
			name: "NaN position",
			proj: fixedAt(math.NaN(), 100, nil),
			vp:   testViewport,
		},
		{
			name: "infinite position",
			proj: fixedAt(100, math.Inf(1), nil),
			vp:   testViewport,
		},
		{
			name: "zero-size viewport",
			proj: fixedAt(100, 100, nil),
			vp:   geo.Viewport{Zoom: 3},
		},
		{
			name: "viewport no taller than header",
			proj: fixedAt(100, 50, nil),
			vp:   geo.Viewport{Zoom: 3, Width: 800, Height: 80},
		},
		{
			name: "invalid coordinates",
			proj: fixedAt(100, 100, nil),
			vp:   testViewport,
			lat:  math.NaN(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlacer(DefaultConfig(), tt.proj)
			if got := p.Place(tt.lat, 2.35, tt.vp); got != DefaultPlacement() {
				t.Errorf("got %+v, want default", got)
			}
			if p.Stats().Size != 0 {
				t.Error("fallback placements must not be cached")
			}
		})
	}
}

func TestPlace_Zones(t *testing.T) {
	// 800x600 container, header band 84 px, usable height 516 px.
	tests := []struct {
		name string
		x, y float64
		want Placement
	}{
		{"center", 400, 300, Placement{AnchorBottom, Offset{0, 25}, 250}},
		{"bottom edge", 400, 500, Placement{AnchorBottom, Offset{0, 25}, 375}},
		{"bottom edge clamped", 400, 580, Placement{AnchorBottom, Offset{0, 25}, 400}},
		{"top edge", 400, 200, Placement{AnchorTop, Offset{0, 25}, 359}},
		{"top edge clamped", 400, 150, Placement{AnchorTop, Offset{0, 25}, 400}},
		{"left edge", 50, 300, Placement{AnchorLeft, Offset{25, 0}, 400}},
		{"right edge", 780, 300, Placement{AnchorRight, Offset{25, 0}, 400}},
		{"top-right corner", 780, 120, Placement{AnchorTopRight, Offset{25, 25}, 400}},
		{"top-left corner", 20, 120, Placement{AnchorTopLeft, Offset{25, 25}, 400}},
		{"bottom-left corner", 20, 580, Placement{AnchorBottomLeft, Offset{25, 25}, 400}},
		{"bottom-right corner", 780, 580, Placement{AnchorBottomRight, Offset{25, 25}, 400}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlacer(DefaultConfig(), fixedAt(tt.x, tt.y, nil))
			got := p.Place(48.85, 2.35, testViewport)
			if got != tt.want {
				t.Errorf("Place at (%v,%v) = %+v, want %+v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestPlace_HeaderGuard(t *testing.T) {
	tests := []struct {
		name       string
		x, y       float64
		wantAnchor Anchor
		wantOffset Offset
	}{
		{"under header center", 400, 30, AnchorTop, Offset{0, 79}},
		{"under header left", 100, 10, AnchorTopLeft, Offset{25, 99}},
		{"under header right", 750, 60, AnchorTopRight, Offset{25, 49}},
		{"just inside buffer", 400, 83, AnchorTop, Offset{0, 26}},
		{"above container", 400, -40, AnchorTop, Offset{0, 149}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlacer(DefaultConfig(), fixedAt(tt.x, tt.y, nil))
			got := p.Place(48.85, 2.35, testViewport)
			if got.Anchor != tt.wantAnchor {
				t.Errorf("anchor = %s, want %s", got.Anchor, tt.wantAnchor)
			}
			if !got.Anchor.OpensDown() {
				t.Errorf("anchor %s does not open downward", got.Anchor)
			}
			if got.Offset != tt.wantOffset {
				t.Errorf("offset = %+v, want %+v", got.Offset, tt.wantOffset)
			}
			// Popup top edge clears the header band.
			if top := tt.y + got.Offset.Y; top < p.Config().HeaderBand() {
				t.Errorf("popup top %v overlaps header band", top)
			}
			if got.MaxHeight < 250 || got.MaxHeight > 400 {
				t.Errorf("max height %v outside [250,400]", got.MaxHeight)
			}
		})
	}
}

func TestPlace_HeaderGuardAcrossContainer(t *testing.T) {
	band := DefaultConfig().HeaderBand()

	for x := 0.0; x <= 800; x += 40 {
		for y := -20.0; y < band; y += 7 {
			got := NewPlacer(DefaultConfig(), fixedAt(x, y, nil)).Place(48.85, 2.35, testViewport)
			if !got.Anchor.OpensDown() {
				t.Fatalf("(%v,%v): anchor %s is not top-opening", x, y, got.Anchor)
			}
		}
	}
}

func TestPlace_MaxHeightAlwaysClamped(t *testing.T) {
	for x := 0.0; x <= 800; x += 50 {
		for y := 0.0; y <= 600; y += 25 {
			got := NewPlacer(DefaultConfig(), fixedAt(x, y, nil)).Place(48.85, 2.35, testViewport)
			if got.MaxHeight < 250 || got.MaxHeight > 400 {
				t.Fatalf("(%v,%v): max height %v outside [250,400]", x, y, got.MaxHeight)
			}
			if got.Offset.X < 0 || got.Offset.Y < 0 {
				t.Fatalf("(%v,%v): negative offset %+v", x, y, got.Offset)
			}
		}
	}
}

func TestPlace_Idempotent(t *testing.T) {
	calls := 0
	p := NewPlacer(DefaultConfig(), fixedAt(400, 200, &calls))

	first := p.Place(48.85661, 2.35222, testViewport)
	second := p.Place(48.85661, 2.35222, testViewport)
	if first != second {
		t.Errorf("placements differ: %+v vs %+v", first, second)
	}
	if calls != 1 {
		t.Errorf("projector called %d times, want 1", calls)
	}

	// Sub-precision jitter in coordinates and zoom hits the same entry.
	jittered := testViewport
	jittered.Zoom += 0.01
	if got := p.Place(48.856612, 2.352221, jittered); got != first {
		t.Errorf("jittered placement = %+v, want %+v", got, first)
	}
	if calls != 1 {
		t.Errorf("projector called %d times after jitter, want 1", calls)
	}

	s := p.Stats()
	if s.Hits != 2 || s.Misses != 1 {
		t.Errorf("hits/misses = %d/%d, want 2/1", s.Hits, s.Misses)
	}
}

func TestPlace_ResizeMissesCache(t *testing.T) {
	calls := 0
	p := NewPlacer(DefaultConfig(), fixedAt(400, 200, &calls))

	p.Place(48.85, 2.35, testViewport)
	resized := testViewport
	resized.Height = 900
	p.Place(48.85, 2.35, resized)

	if calls != 2 {
		t.Errorf("projector called %d times, want 2", calls)
	}
}

func TestPlacer_CacheBounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheSize = 3
	p := NewPlacer(cfg, fixedAt(400, 300, nil))

	for i := 0; i < 10; i++ {
		p.Place(10+float64(i), 20, testViewport)
	}
	if s := p.Stats(); s.Size != 3 {
		t.Errorf("cache size = %d, want 3", s.Size)
	}

	p.Reset()
	if s := p.Stats(); s.Size != 0 {
		t.Errorf("cache size after Reset = %d, want 0", s.Size)
	}
}

func TestClassify_CornersWin(t *testing.T) {
	p := NewPlacer(DefaultConfig(), nil)

	tests := []struct {
		x, y float64
		want Zone
	}{
		{10, 90, ZoneTopLeft},
		{790, 590, ZoneBottomRight},
		{400, 300, ZoneCenter},
		{10, 300, ZoneLeft},
		{400, 590, ZoneBottom},
	}
	for _, tt := range tests {
		if got := p.Classify(ScreenPoint{tt.x, tt.y}, testViewport); got != tt.want {
			t.Errorf("Classify(%v,%v) = %s, want %s", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestNewPlacer_KeepsValidZeroValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HeaderHeight = 0
	cfg.HeaderBuffer = 0
	cfg.BaseOffset = 0
	cfg.EdgeMargin = 0
	cfg.CoordPrecision = 0
	cfg.ZoomPrecision = 0

	p := NewPlacer(cfg, nil)
	if p.Config() != cfg {
		t.Errorf("Config() = %+v, want %+v", p.Config(), cfg)
	}
	if got := p.Default().Offset.Y; got != 0 {
		t.Errorf("default offset = %v, want 0", got)
	}
}

func TestNewPlacer_ReplacesInvalidValues(t *testing.T) {
	cfg := Config{
		HeaderHeight:   -5,
		EdgeThreshold:  0.7,
		BaseOffset:     -1,
		MinMaxHeight:   0,
		MaxMaxHeight:   10,
		CoordPrecision: 20,
		ZoomPrecision:  -1,
	}
	got := NewPlacer(cfg, nil).Config()
	d := DefaultConfig()

	if got.HeaderHeight != d.HeaderHeight || got.BaseOffset != d.BaseOffset {
		t.Errorf("negative lengths kept: %+v", got)
	}
	if got.EdgeThreshold != d.EdgeThreshold {
		t.Errorf("EdgeThreshold = %v, want %v", got.EdgeThreshold, d.EdgeThreshold)
	}
	if got.MinMaxHeight != d.MinMaxHeight || got.MaxMaxHeight != d.MaxMaxHeight {
		t.Errorf("height range = [%v,%v], want [%v,%v]", got.MinMaxHeight, got.MaxMaxHeight, d.MinMaxHeight, d.MaxMaxHeight)
	}
	if got.CoordPrecision != d.CoordPrecision || got.ZoomPrecision != d.ZoomPrecision {
		t.Errorf("precisions = %d/%d, want %d/%d", got.CoordPrecision, got.ZoomPrecision, d.CoordPrecision, d.ZoomPrecision)
	}
	if got.CacheSize != d.CacheSize {
		t.Errorf("CacheSize = %d, want %d", got.CacheSize, d.CacheSize)
	}
}

func TestPlace_CacheIsPerProjector(t *testing.T) {
	// Same marker and viewport, projected under and far below the header.
	nearHeader := NewPlacer(DefaultConfig(), fixedAt(100, 10, nil))
	nearBottom := NewPlacer(DefaultConfig(), fixedAt(100, 590, nil))

	warm := nearHeader.Place(48.85, 2.35, testViewport)
	if !warm.Anchor.OpensDown() {
		t.Fatalf("near-header anchor = %s, want top-opening", warm.Anchor)
	}

	got := nearBottom.Place(48.85, 2.35, testViewport)
	fresh := NewPlacer(DefaultConfig(), fixedAt(100, 590, nil)).Place(48.85, 2.35, testViewport)
	if got != fresh {
		t.Errorf("placement = %+v, want %+v", got, fresh)
	}
	if got.Anchor.OpensDown() {
		t.Errorf("near-bottom anchor = %s, want bottom-opening", got.Anchor)
	}
	if nearHeader.Projector() == nil || nearBottom.Projector() == nil {
		t.Error("Projector() should return the bound projector")
	}
}
