// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package locations

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/tomtom215/waypoint/internal/cache"
	"github.com/tomtom215/waypoint/internal/geo"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
)

var (
	// ErrNotLoaded means no dataset has been loaded yet.
	ErrNotLoaded = errors.New("locations dataset not loaded")

	// ErrNotFound means the requested location does not exist.
	ErrNotFound = errors.New("location not found")
)

// gridCellKm sizes the Nearby index cells.
const gridCellKm = 50

// PhotoRef ties a photo to its location.
type PhotoRef struct {
	LocationID   string `json:"location_id"`
	LocationName string `json:"location_name"`
	Photo        Photo  `json:"photo"`
}

// NearbyLocation is a Nearby result.
type NearbyLocation struct {
	Location   Location `json:"location"`
	DistanceKm float64  `json:"distance_km"`
}

// Snapshot is an immutable view of one loaded dataset. Callers must not
// modify the returned slices.
type Snapshot struct {
	Version   uint64
	LoadedAt  time.Time
	Source    string
	Checksum  uint64
	Locations []Location
	Points    []geo.Point

	byID   map[string]int
	grid   *cache.SpatialGrid[int]
	photos []PhotoRef
}

func newSnapshot(locs []Location, version uint64, source string, checksum uint64, now time.Time) *Snapshot {
	snap := &Snapshot{
		Version:   version,
		LoadedAt:  now,
		Source:    source,
		Checksum:  checksum,
		Locations: locs,
		Points:    make([]geo.Point, len(locs)),
		byID:      make(map[string]int, len(locs)),
		grid:      cache.NewSpatialGrid[int](gridCellKm),
	}

	for i := range locs {
		loc := &locs[i]
		snap.Points[i] = loc.Point()
		snap.byID[loc.ID] = i
		if loc.HasCoordinates() {
			snap.grid.Insert(*loc.Latitude, *loc.Longitude, i)
		}
		for _, p := range loc.Photos {
			snap.photos = append(snap.photos, PhotoRef{LocationID: loc.ID, LocationName: loc.Name, Photo: p})
		}
	}

	sort.SliceStable(snap.photos, func(i, j int) bool {
		return snap.photos[i].Photo.ID < snap.photos[j].Photo.ID
	})
	return snap
}

// Get returns the location with id.
func (s *Snapshot) Get(id string) (Location, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Location{}, false
	}
	return s.Locations[i], true
}

// Nearby returns located entries within radiusKm, nearest first.
func (s *Snapshot) Nearby(lat, lon, radiusKm float64) []NearbyLocation {
	hits := s.grid.Nearby(lat, lon, radiusKm)
	out := make([]NearbyLocation, len(hits))
	for i, h := range hits {
		out[i] = NearbyLocation{Location: s.Locations[h.Value], DistanceKm: h.DistanceKm}
	}
	return out
}

// Photos returns every photo in the dataset sorted by photo ID.
func (s *Snapshot) Photos() []PhotoRef {
	return s.photos
}

// Located returns the number of locations with valid coordinates.
func (s *Snapshot) Located() int {
	return s.grid.Size()
}

// Store publishes the current Snapshot and reloads it from a Source.
type Store struct {
	source  Source
	current atomic.Pointer[Snapshot]
	reload  sync.Mutex
	now     func() time.Time

	onChange []func(*Snapshot)
}

// NewStore creates an empty store. Call Reload before serving.
func NewStore(source Source) *Store {
	return &Store{source: source, now: time.Now}
}

// OnChange registers fn to run after every reload that publishes a new
// snapshot. Register callbacks before the first Reload.
func (s *Store) OnChange(fn func(*Snapshot)) {
	s.reload.Lock()
	defer s.reload.Unlock()
	s.onChange = append(s.onChange, fn)
}

// Snapshot returns the current snapshot, or nil before the first load.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Ready reports whether a dataset is loaded.
func (s *Store) Ready() bool {
	return s.current.Load() != nil
}

// Reload fetches, decodes and publishes the dataset. Unchanged content keeps
// the current snapshot and version. On error the current snapshot stays.
func (s *Store) Reload(ctx context.Context) (*Snapshot, error) {
	s.reload.Lock()
	defer s.reload.Unlock()

	start := time.Now()
	snap, changed, err := s.reloadLocked(ctx)
	duration := time.Since(start)

	kind := s.source.Kind()
	if err != nil {
		metrics.RecordDatasetReload(kind, duration, 0, err)
		logging.Ctx(ctx).Error().Err(err).Str("source", kind).Msg("Dataset reload failed")
		return s.current.Load(), err
	}

	metrics.RecordDatasetReload(kind, duration, len(snap.Locations), nil)
	if changed {
		logging.Ctx(ctx).Info().
			Str("source", kind).
			Uint64("version", snap.Version).
			Int("locations", len(snap.Locations)).
			Int("located", snap.Located()).
			Int("photos", len(snap.Photos())).
			Dur("duration", duration).
			Msg("Dataset loaded")
		for _, fn := range s.onChange {
			fn(snap)
		}
	} else {
		logging.Ctx(ctx).Debug().Str("source", kind).Uint64("version", snap.Version).Msg("Dataset unchanged")
	}
	return snap, nil
}

func (s *Store) reloadLocked(ctx context.Context) (*Snapshot, bool, error) {
	prev := s.current.Load()

	data, err := s.source.Fetch(ctx)
	if errors.Is(err, ErrNotModified) {
		if prev != nil {
			return prev, false, nil
		}
		s.forgetValidator()
	}
	if err != nil {
		return nil, false, err
	}

	checksum := xxhash.Sum64(data)
	if prev != nil && prev.Checksum == checksum {
		return prev, false, nil
	}

	locs, err := Decode(data)
	if err != nil {
		// A rejected document must be downloaded again next time.
		s.forgetValidator()
		return nil, false, err
	}

	var version uint64 = 1
	if prev != nil {
		version = prev.Version + 1
	}
	snap := newSnapshot(locs, version, s.source.Kind(), checksum, s.now())
	s.current.Store(snap)
	return snap, true, nil
}

// etagResetter is implemented by sources that send conditional requests.
type etagResetter interface {
	ResetETag()
}

func (s *Store) forgetValidator() {
	if r, ok := s.source.(etagResetter); ok {
		r.ResetETag()
	}
}

// Get returns one location from the current snapshot.
func (s *Store) Get(id string) (Location, error) {
	snap := s.current.Load()
	if snap == nil {
		return Location{}, ErrNotLoaded
	}
	loc, ok := snap.Get(id)
	if !ok {
		return Location{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return loc, nil
}

// Nearby queries the current snapshot.
func (s *Store) Nearby(lat, lon, radiusKm float64) ([]NearbyLocation, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap.Nearby(lat, lon, radiusKm), nil
}
