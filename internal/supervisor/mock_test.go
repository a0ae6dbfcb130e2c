// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// fakeService runs until canceled, failing the first failures starts.
type fakeService struct {
	name     string
	failures int32
	starts   atomic.Int32
}

func (f *fakeService) Serve(ctx context.Context) error {
	n := f.starts.Add(1)
	if n <= f.failures {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeService) String() string { return f.name }
