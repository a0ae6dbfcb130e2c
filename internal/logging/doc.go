// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package logging provides the zerolog-backed structured logger used across Waypoint.
//
// A global logger is configured once from main via Init and then used through
// package-level helpers:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("source", uri).Msg("Dataset loaded")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Reload failed")
//
// Request handlers should prefer Ctx so request_id and correlation_id are
// attached automatically. Libraries that want a *slog.Logger (sutureslog)
// are served by NewSlogLogger, which writes through the same zerolog sink.
//
// Always terminate an event chain with Msg or Send; an unterminated event is
// never written.
package logging
