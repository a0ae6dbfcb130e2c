// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/waypoint/internal/geo"
	"github.com/tomtom215/waypoint/internal/validation"
)

// maxBodyBytes bounds request bodies. A clustering request with the largest
// allowed point set stays well below it.
const maxBodyBytes = 8 << 20

// MaxClusterPoints bounds POST /clusters.
const MaxClusterPoints = 50000

// LocationsRequest holds the list query parameters.
type LocationsRequest struct {
	Limit   int    `json:"limit" validate:"min=1,max=1000"`
	Offset  int    `json:"offset" validate:"min=0"`
	Country string `json:"country" validate:"max=128"`
}

// NearbyRequest holds the nearby query parameters.
type NearbyRequest struct {
	Lat      float64 `json:"lat" validate:"finite,latitude"`
	Lon      float64 `json:"lon" validate:"finite,longitude"`
	RadiusKm float64 `json:"radius_km" validate:"finite,gt=0,max=20000"`
}

// ClustersQuery holds GET /clusters parameters.
type ClustersQuery struct {
	Zoom           float64 `json:"zoom" validate:"finite,zoom"`
	IncludeMembers bool    `json:"include_members"`
}

// ClustersRequest is the POST /clusters body. Invalid points are dropped by
// the clusterer, not rejected.
type ClustersRequest struct {
	Points []geo.Point `json:"points" validate:"max=50000,unique=ID"`
	Zoom   float64     `json:"zoom" validate:"finite,zoom"`
}

// PopupRequest is the POST /popup/placement body.
type PopupRequest struct {
	Lat      float64      `json:"lat"`
	Lon      float64      `json:"lon"`
	Viewport geo.Viewport `json:"viewport"`
}

// PhotoOfDayRequest holds the optional date parameter.
type PhotoOfDayRequest struct {
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// LoginRequest is the POST /auth/login body.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=128"`
	Password string `json:"password" validate:"required,max=256"`
}

// decodeBody reads a JSON body into dst and validates it. It writes the
// error response and returns false on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, r, http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "Request body too large")
			return false
		}
		NewResponseWriter(w, r).BadRequest("Failed to read request body")
		return false
	}
	if len(body) == 0 {
		NewResponseWriter(w, r).BadRequest("Request body is required")
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		NewResponseWriter(w, r).BadRequest("Invalid JSON body")
		return false
	}
	return validate(w, r, dst)
}

// validate runs struct validation and writes a 400 on failure.
func validate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if verr := validation.ValidateStruct(v); verr != nil {
		NewResponseWriter(w, r).ValidationError(verr)
		return false
	}
	return true
}

// queryFloat parses a float query parameter. Missing values return def.
func queryFloat(r *http.Request, key string, def float64) (float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", key)
	}
	return v, nil
}

// queryInt parses an integer query parameter. Missing values return def.
func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return v, nil
}

// queryBool accepts strconv.ParseBool forms and treats anything else as false.
func queryBool(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && v
}
