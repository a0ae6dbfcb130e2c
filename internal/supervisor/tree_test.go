// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestNewSupervisorTree_Defaults(t *testing.T) {
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{})
	if err != nil {
		t.Fatalf("NewSupervisorTree: %v", err)
	}
	if tree.Root() == nil {
		t.Fatal("root supervisor should not be nil")
	}
	if got, want := tree.Config(), DefaultTreeConfig(); got != want {
		t.Errorf("Config() = %+v, want %+v", got, want)
	}
}

func TestNewSupervisorTree_KeepsExplicitValues(t *testing.T) {
	cfg := TreeConfig{
		FailureThreshold: 2,
		FailureDecay:     1,
		FailureBackoff:   time.Second,
		ShutdownTimeout:  3 * time.Second,
	}
	tree, err := NewSupervisorTree(nil, cfg)
	if err != nil {
		t.Fatalf("NewSupervisorTree: %v", err)
	}
	if tree.Config() != cfg {
		t.Errorf("Config() = %+v, want %+v", tree.Config(), cfg)
	}
}

func TestSupervisorTree_StartsEveryLayer(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})

	layers := []struct {
		name string
		add  func(suture.Service) suture.ServiceToken
		svc  *fakeService
	}{
		{"data", tree.AddDataService, &fakeService{name: "reload"}},
		{"messaging", tree.AddMessagingService, &fakeService{name: "hub"}},
		{"api", tree.AddAPIService, &fakeService{name: "http"}},
	}
	for _, l := range layers {
		l.add(l.svc)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	for _, l := range layers {
		svc := l.svc
		waitFor(t, func() bool { return svc.starts.Load() >= 1 })
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not shut down in time")
	}

	report, err := tree.UnstoppedServiceReport()
	if err != nil {
		t.Fatalf("UnstoppedServiceReport: %v", err)
	}
	if len(report) != 0 {
		t.Errorf("unstopped services: %v", report)
	}
}

func TestSupervisorTree_RestartsFailingService(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	failing := &fakeService{name: "flaky-reload", failures: 2}
	stable := &fakeService{name: "http"}
	tree.AddDataService(failing)
	tree.AddAPIService(stable)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	waitFor(t, func() bool { return failing.starts.Load() >= 3 })
	waitFor(t, func() bool { return stable.starts.Load() >= 1 })
	if stable.starts.Load() != 1 {
		t.Errorf("stable service started %d times, want 1", stable.starts.Load())
	}

	cancel()
	<-errCh
}
