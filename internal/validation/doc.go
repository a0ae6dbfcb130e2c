// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package validation wraps go-playground/validator v10 with a shared
// instance, Waypoint-specific tags, and translation of field errors into the
// VALIDATION_ERROR shape returned by the HTTP API.
//
// Custom tags:
//   - finite: float is neither NaN nor infinite
//   - zoom: float in [0, 24]
//
// Example:
//
//	type viewRequest struct {
//	    Lat  float64 `json:"lat" validate:"finite,latitude"`
//	    Zoom float64 `json:"zoom" validate:"zoom"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
//	}
package validation
