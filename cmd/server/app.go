// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package main

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/tomtom215/waypoint/internal/api"
	"github.com/tomtom215/waypoint/internal/auth"
	"github.com/tomtom215/waypoint/internal/cluster"
	"github.com/tomtom215/waypoint/internal/config"
	"github.com/tomtom215/waypoint/internal/locations"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/mapview"
	"github.com/tomtom215/waypoint/internal/metrics"
	"github.com/tomtom215/waypoint/internal/photoday"
	"github.com/tomtom215/waypoint/internal/popup"
	"github.com/tomtom215/waypoint/internal/projection"
	"github.com/tomtom215/waypoint/internal/supervisor"
	"github.com/tomtom215/waypoint/internal/supervisor/services"
	ws "github.com/tomtom215/waypoint/internal/websocket"
)

// app holds the wired components of a running server.
type app struct {
	cfg     *config.Config
	started time.Time

	store   *locations.Store
	maps    *mapview.Service
	hub     *ws.Hub
	handler http.Handler

	closers []func() error
}

// newApp wires every component from cfg and performs the initial dataset
// load. A failed initial load is logged; the server starts unready and the
// reload loop keeps trying.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, started: time.Now()}
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	source, err := locations.NewSource(ctx, &cfg.Data)
	if err != nil {
		return nil, fmt.Errorf("dataset source: %w", err)
	}
	a.store = locations.NewStore(source)

	bands, err := cfg.Clustering.ParseBands()
	if err != nil {
		return nil, fmt.Errorf("clustering bands: %w", err)
	}
	a.maps = mapview.New(a.store,
		cluster.New(cluster.Options{Bands: bands, DistanceCacheSize: cfg.Clustering.DistanceCacheSize}),
		popup.NewPlacer(cfg.Popup, projection.WebMercator{}),
	)
	a.hub = ws.NewHub()

	a.store.OnChange(func(snap *locations.Snapshot) {
		a.maps.Reset()
		a.hub.BroadcastReload(ws.ReloadNotice{
			Version:   snap.Version,
			Locations: len(snap.Locations),
			LoadedAt:  snap.LoadedAt,
		})
	})

	history, err := a.openHistory()
	if err != nil {
		return nil, err
	}
	picker := photoday.NewPicker(a.store, history, cfg.PhotoOfDay.NoRepeatDays)

	jwtManager, admin, err := newAuth(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	handler := api.NewHandler(api.Deps{
		Store:  a.store,
		Maps:   a.maps,
		Picker: picker,
		Hub:    a.hub,
		Config: cfg,
		JWT:    jwtManager,
		Admin:  admin,
	})
	authMiddleware := auth.NewMiddleware(jwtManager, cfg.Security.AuthMode, api.WriteError)
	chiMiddleware := api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(&cfg.Security))
	a.handler = api.NewRouter(handler, authMiddleware, chiMiddleware).Setup()

	loadCtx, cancel := context.WithTimeout(logging.ContextWithNewCorrelationID(ctx), cfg.Data.FetchTimeout)
	defer cancel()
	if _, err := a.store.Reload(loadCtx); err != nil {
		logging.Warn().Err(err).Msg("Initial dataset load failed; serving unready until the next reload")
	}

	return a, nil
}

func (a *app) openHistory() (photoday.History, error) {
	path := a.cfg.PhotoOfDay.HistoryPath
	if path == "" {
		logging.Info().Msg("Photo of the day history kept in memory")
		return photoday.NewMemoryHistory(), nil
	}
	h, err := photoday.OpenBadgerHistory(path)
	if err != nil {
		return nil, fmt.Errorf("photo of the day history: %w", err)
	}
	a.closers = append(a.closers, h.Close)
	logging.Info().Str("path", path).Msg("Photo of the day history opened")
	return h, nil
}

func newAuth(cfg *config.Config) (*auth.JWTManager, *auth.AdminAuthenticator, error) {
	if cfg.Security.AuthMode == "none" {
		logging.Warn().Msg("Authentication is DISABLED (AUTH_MODE=none); admin endpoints are open")
		return nil, nil, nil
	}
	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		return nil, nil, fmt.Errorf("jwt manager: %w", err)
	}
	admin, err := auth.NewAdminAuthenticator(cfg.Security.AdminUsername, cfg.Security.AdminPassword)
	if err != nil {
		return nil, nil, fmt.Errorf("admin credentials: %w", err)
	}
	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("CORS allows any origin while authentication is enabled; set CORS_ORIGINS in production")
	}
	return jwtManager, admin, nil
}

// register adds the long-running services to the supervisor tree.
func (a *app) register(tree *supervisor.SupervisorTree) {
	tree.AddDataService(services.NewDatasetReloadService(a.store, a.cfg.Data.ReloadInterval, a.cfg.Data.FetchTimeout))
	tree.AddMessagingService(a.hub)

	server := &http.Server{
		Addr:              a.cfg.Server.Addr(),
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       a.cfg.Server.Timeout,
		IdleTimeout:       2 * time.Minute,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, a.cfg.Server.ShutdownTimeout))
	tree.AddAPIService(services.NewUptimeService(a.started, 0))
}

// Close releases resources opened by newApp.
func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			logging.Error().Err(err).Msg("Error closing resource")
		}
	}
	a.closers = nil
}
