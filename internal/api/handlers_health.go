// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"net/http"
	"time"
)

// HealthLive reports that the process is running.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady returns 200 once a dataset snapshot is loaded and 503 before.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	if snap == nil {
		NewResponseWriter(w, r).ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable,
			"Dataset not loaded", map[string]interface{}{"ready": false})
		return
	}
	WriteSuccess(w, r, map[string]interface{}{
		"ready":           true,
		"dataset_version": snap.Version,
		"dataset_source":  snap.Source,
		"locations":       len(snap.Locations),
		"loaded_at":       snap.LoadedAt.UTC(),
		"uptime":          time.Since(h.startTime).Seconds(),
	})
}
