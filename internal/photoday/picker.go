// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package photoday

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/tomtom215/waypoint/internal/locations"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
)

// ErrNoPhotos means the dataset has no photos to pick from.
var ErrNoPhotos = errors.New("no photos available")

// SnapshotProvider is satisfied by *locations.Store.
type SnapshotProvider interface {
	Snapshot() *locations.Snapshot
}

// Result is the photo of the day.
type Result struct {
	Date  string             `json:"date"`
	Photo locations.PhotoRef `json:"photo"`
	// Repeat is true when every photo was shown recently and the window
	// could not be honoured.
	Repeat bool `json:"repeat"`
}

// Picker selects and records daily photos.
type Picker struct {
	data         SnapshotProvider
	history      History
	noRepeatDays int

	mu sync.Mutex
}

// NewPicker creates a picker. A nil history keeps picks in memory.
func NewPicker(data SnapshotProvider, history History, noRepeatDays int) *Picker {
	if history == nil {
		history = NewMemoryHistory()
	}
	if noRepeatDays < 0 {
		noRepeatDays = 0
	}
	return &Picker{data: data, history: history, noRepeatDays: noRepeatDays}
}

// Today returns the pick for now's UTC calendar day.
func (p *Picker) Today(ctx context.Context, now time.Time) (Result, error) {
	return p.ForDate(ctx, now)
}

// ForDate returns the pick for day's UTC calendar date, choosing and recording
// one if none exists or the recorded photo was removed from the dataset.
func (p *Picker) ForDate(ctx context.Context, day time.Time) (Result, error) {
	day = day.UTC()
	date := day.Format(DateLayout)

	snap := p.data.Snapshot()
	if snap == nil {
		metrics.RecordPhotoOfDay("error")
		return Result{}, locations.ErrNotLoaded
	}
	photos := snap.Photos()
	if len(photos) == 0 {
		metrics.RecordPhotoOfDay("error")
		return Result{}, ErrNoPhotos
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	existing, err := p.history.Get(ctx, date)
	switch {
	case err == nil:
		if ref, ok := findPhoto(photos, existing.PhotoID); ok {
			metrics.RecordPhotoOfDay("existing")
			return Result{Date: date, Photo: ref}, nil
		}
		logging.Ctx(ctx).Info().Str("date", date).Str("photo_id", existing.PhotoID).
			Msg("Recorded photo of the day no longer exists, picking again")
	case !errors.Is(err, ErrNoPick):
		metrics.RecordPhotoOfDay("error")
		return Result{}, fmt.Errorf("read pick history: %w", err)
	}

	recent, err := p.recentPhotoIDs(ctx, day)
	if err != nil {
		metrics.RecordPhotoOfDay("error")
		return Result{}, err
	}

	idx, repeat := choose(photos, date, recent)
	ref := photos[idx]

	pick := &Pick{Date: date, PhotoID: ref.Photo.ID, LocationID: ref.LocationID, PickedAt: time.Now().UTC()}
	if err := p.history.Save(ctx, pick); err != nil {
		// The pick is deterministic, so serving it unrecorded is safe.
		logging.Ctx(ctx).Warn().Err(err).Str("date", date).Msg("Failed to record photo of the day")
	}

	metrics.RecordPhotoOfDay("new")
	return Result{Date: date, Photo: ref, Repeat: repeat}, nil
}

func (p *Picker) recentPhotoIDs(ctx context.Context, day time.Time) (map[string]struct{}, error) {
	recent := make(map[string]struct{})
	if p.noRepeatDays == 0 {
		return recent, nil
	}
	from := day.AddDate(0, 0, -p.noRepeatDays).Format(DateLayout)
	picks, err := p.history.Range(ctx, from, day.Format(DateLayout))
	if err != nil {
		return nil, fmt.Errorf("read pick history: %w", err)
	}
	for _, pk := range picks {
		recent[pk.PhotoID] = struct{}{}
	}
	return recent, nil
}

// choose walks forward from the date's hash slot to the first photo not in
// recent. When all are recent it returns the hash slot itself.
func choose(photos []locations.PhotoRef, date string, recent map[string]struct{}) (int, bool) {
	n := uint64(len(photos))
	start := xxhash.Sum64String("photo-of-the-day:"+date) % n
	for i := uint64(0); i < n; i++ {
		idx := (start + i) % n
		if _, seen := recent[photos[idx].Photo.ID]; !seen {
			return int(idx), false
		}
	}
	return int(start), true
}

func findPhoto(photos []locations.PhotoRef, id string) (locations.PhotoRef, bool) {
	for _, ref := range photos {
		if ref.Photo.ID == id {
			return ref, true
		}
	}
	return locations.PhotoRef{}, false
}
