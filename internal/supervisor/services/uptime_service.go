// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package services

import (
	"context"
	"time"

	"github.com/tomtom215/waypoint/internal/metrics"
)

// UptimeService keeps the app_uptime_seconds gauge current.
type UptimeService struct {
	start    time.Time
	interval time.Duration
}

// NewUptimeService measures uptime from start, refreshing every interval
// (15s when non-positive).
func NewUptimeService(start time.Time, interval time.Duration) *UptimeService {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &UptimeService{start: start, interval: interval}
}

// Serve implements suture.Service.
func (u *UptimeService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()

	u.update()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			u.update()
		}
	}
}

func (u *UptimeService) update() {
	metrics.AppUptime.Set(time.Since(u.start).Seconds())
}

// String implements fmt.Stringer for suture's event log.
func (u *UptimeService) String() string {
	return "uptime"
}
