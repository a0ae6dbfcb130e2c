// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/waypoint/internal/locations"
	"github.com/tomtom215/waypoint/internal/photoday"
)

// PhotoOfTheDay returns today's photo, or the photo for ?date= when it is
// not in the future.
func (h *Handler) PhotoOfTheDay(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := PhotoOfDayRequest{Date: r.URL.Query().Get("date")}
	if !validate(w, r, &req) {
		return
	}

	day := h.now().UTC()
	if req.Date != "" {
		d, err := time.Parse(photoday.DateLayout, req.Date)
		if err != nil {
			rw.BadRequest("date must be YYYY-MM-DD")
			return
		}
		if d.After(day) {
			rw.BadRequest("date must not be in the future")
			return
		}
		day = d
	}

	result, err := h.picker.ForDate(r.Context(), day)
	switch {
	case errors.Is(err, locations.ErrNotLoaded):
		rw.ServiceUnavailable("Dataset not loaded")
	case errors.Is(err, photoday.ErrNoPhotos):
		rw.NotFound("No photos available")
	case err != nil:
		rw.InternalError("Failed to pick photo of the day")
	default:
		rw.Success(result)
	}
}
