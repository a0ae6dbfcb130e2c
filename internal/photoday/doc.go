// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package photoday picks one photo per calendar day (UTC).
//
// The starting candidate is a hash of the date over the photos sorted by ID,
// so every replica picks the same photo for the same dataset. Photos shown
// within the last NoRepeatDays are skipped while any unseen photo remains.
// Picks are recorded in a History so a day's photo stays stable across
// restarts and dataset reloads, provided the photo still exists.
package photoday
