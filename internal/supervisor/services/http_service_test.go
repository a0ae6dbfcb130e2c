// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// fakeHTTPServer blocks in ListenAndServe until Shutdown unless listenErr is set.
type fakeHTTPServer struct {
	listenErr   error
	shutdownErr error

	listens   atomic.Int32
	shutdowns atomic.Int32
	started   chan struct{}
	stop      chan struct{}
	stopOnce  sync.Once
}

func newFakeHTTPServer() *fakeHTTPServer {
	return &fakeHTTPServer{
		started: make(chan struct{}, 1),
		stop:    make(chan struct{}),
	}
}

func (f *fakeHTTPServer) ListenAndServe() error {
	f.listens.Add(1)
	select {
	case f.started <- struct{}{}:
	default:
	}
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.stop
	return http.ErrServerClosed
}

func (f *fakeHTTPServer) Shutdown(context.Context) error {
	f.shutdowns.Add(1)
	f.stopOnce.Do(func() { close(f.stop) })
	return f.shutdownErr
}

func (f *fakeHTTPServer) waitStarted(t *testing.T) {
	t.Helper()
	select {
	case <-f.started:
	case <-time.After(time.Second):
		t.Fatal("server did not start")
	}
}

var _ suture.Service = (*HTTPServerService)(nil)

func TestNewHTTPServerService_DefaultTimeout(t *testing.T) {
	for _, timeout := range []time.Duration{0, -5 * time.Second} {
		svc := NewHTTPServerService(newFakeHTTPServer(), timeout)
		if svc.shutdownTimeout != 10*time.Second {
			t.Errorf("timeout %v: got %v, want 10s", timeout, svc.shutdownTimeout)
		}
	}
	if got := NewHTTPServerService(newFakeHTTPServer(), time.Second).String(); got != "http-server" {
		t.Errorf("String() = %q", got)
	}
}

func TestHTTPServerService_GracefulShutdown(t *testing.T) {
	server := newFakeHTTPServer()
	svc := NewHTTPServerService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	server.waitStarted(t)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if server.listens.Load() != 1 || server.shutdowns.Load() != 1 {
		t.Errorf("listens=%d shutdowns=%d, want 1/1", server.listens.Load(), server.shutdowns.Load())
	}
}

func TestHTTPServerService_Errors(t *testing.T) {
	t.Run("listen failure", func(t *testing.T) {
		bindErr := errors.New("bind: address already in use")
		server := newFakeHTTPServer()
		server.listenErr = bindErr

		err := NewHTTPServerService(server, time.Second).Serve(context.Background())
		if !errors.Is(err, bindErr) {
			t.Errorf("Serve() = %v, want wrapped bind error", err)
		}
	})

	t.Run("shutdown failure", func(t *testing.T) {
		shutdownErr := errors.New("shutdown timeout")
		server := newFakeHTTPServer()
		server.shutdownErr = shutdownErr
		svc := NewHTTPServerService(server, time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()
		server.waitStarted(t)
		cancel()

		if err := <-errCh; !errors.Is(err, shutdownErr) {
			t.Errorf("Serve() = %v, want wrapped shutdown error", err)
		}
	})
}

func TestHTTPServerService_RealServer(t *testing.T) {
	server := &http.Server{
		Addr:              "127.0.0.1:0",
		Handler:           http.NotFoundHandler(),
		ReadHeaderTimeout: time.Second,
	}
	svc := NewHTTPServerService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
}

func TestHTTPServerService_UnderSupervisor(t *testing.T) {
	server := newFakeHTTPServer()
	sup := suture.New("test-sup", suture.Spec{
		FailureThreshold: 3,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          2 * time.Second,
	})
	sup.Add(NewHTTPServerService(server, time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)

	server.waitStarted(t)
	cancel()
	<-errCh

	if server.shutdowns.Load() < 1 {
		t.Error("Shutdown was not called")
	}
}
