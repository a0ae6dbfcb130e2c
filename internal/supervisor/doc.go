// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package supervisor provides process supervision for Waypoint using suture v4.

Long-running services are grouped into layers so a crash in one restarts
without disturbing the others:

	RootSupervisor ("waypoint")
	├── DataSupervisor ("data-layer")
	│   └── DatasetReloadService
	├── MessagingSupervisor ("messaging-layer")
	│   └── websocket.Hub
	└── APISupervisor ("api-layer")
	    ├── HTTPServerService
	    └── UptimeService

Supervisor events (start, failure, backoff, restart) are logged through
sutureslog into the slog adapter, which forwards to zerolog.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewDatasetReloadService(store, cfg.Data.ReloadInterval, cfg.Data.FetchTimeout))
	tree.AddMessagingService(hub)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

Failure parameters default to suture's own values (threshold 5, decay 30s,
backoff 15s) with a 10s shutdown timeout.
*/
package supervisor
