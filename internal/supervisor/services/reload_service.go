// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package services

import (
	"context"
	"time"

	"github.com/tomtom215/waypoint/internal/locations"
	"github.com/tomtom215/waypoint/internal/logging"
)

// Reloader is satisfied by *locations.Store.
type Reloader interface {
	Reload(ctx context.Context) (*locations.Snapshot, error)
}

// DatasetReloadService refreshes the locations dataset on a fixed interval.
//
// A failed reload is logged and retried on the next tick; the store keeps
// serving the previous snapshot. With a zero interval the service idles
// until shutdown so the tree layout does not depend on configuration.
type DatasetReloadService struct {
	store        Reloader
	interval     time.Duration
	fetchTimeout time.Duration
}

// NewDatasetReloadService creates the reload loop. fetchTimeout bounds each
// reload; zero means no bound beyond the service context.
func NewDatasetReloadService(store Reloader, interval, fetchTimeout time.Duration) *DatasetReloadService {
	return &DatasetReloadService{
		store:        store,
		interval:     interval,
		fetchTimeout: fetchTimeout,
	}
}

// Serve implements suture.Service.
func (s *DatasetReloadService) Serve(ctx context.Context) error {
	if s.interval <= 0 {
		logging.Debug().Msg("Periodic dataset reload disabled")
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.reloadOnce(ctx)
		}
	}
}

func (s *DatasetReloadService) reloadOnce(ctx context.Context) {
	rctx := logging.ContextWithNewCorrelationID(ctx)
	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(rctx, s.fetchTimeout)
		defer cancel()
	}
	// Store.Reload logs and records the failure itself.
	_, _ = s.store.Reload(rctx)
}

// String implements fmt.Stringer for suture's event log.
func (s *DatasetReloadService) String() string {
	return "dataset-reload"
}
