// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package auth

import (
	"sync"
	"time"

	"github.com/tomtom215/waypoint/internal/logging"
)

// LockoutConfig holds configuration for the login lockout.
type LockoutConfig struct {
	// MaxAttempts is the number of failed attempts before lockout.
	MaxAttempts int
	// LockoutDuration is the base lockout period, doubled on each repeat.
	LockoutDuration time.Duration
	// MaxLockoutDuration caps the backoff.
	MaxLockoutDuration time.Duration
}

// DefaultLockoutConfig returns sensible defaults.
func DefaultLockoutConfig() LockoutConfig {
	return LockoutConfig{
		MaxAttempts:        5,
		LockoutDuration:    15 * time.Minute,
		MaxLockoutDuration: 24 * time.Hour,
	}
}

type lockoutEntry struct {
	failedAttempts int
	lockoutCount   int
	lockedUntil    time.Time
}

// Lockout tracks failed logins per subject (a client IP in practice).
type Lockout struct {
	config  LockoutConfig
	mu      sync.Mutex
	entries map[string]*lockoutEntry
	now     func() time.Time
}

// NewLockout creates an in-memory lockout tracker.
func NewLockout(cfg LockoutConfig) *Lockout {
	def := DefaultLockoutConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = def.LockoutDuration
	}
	if cfg.MaxLockoutDuration < cfg.LockoutDuration {
		cfg.MaxLockoutDuration = cfg.LockoutDuration
	}
	return &Lockout{
		config:  cfg,
		entries: make(map[string]*lockoutEntry),
		now:     time.Now,
	}
}

// Locked reports whether subject is locked out and for how long.
func (l *Lockout) Locked(subject string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[subject]
	if !ok {
		return false, 0
	}
	remaining := entry.lockedUntil.Sub(l.now())
	if remaining <= 0 {
		return false, 0
	}
	return true, remaining
}

// Fail records a failed attempt and reports whether it triggered a lockout.
func (l *Lockout) Fail(subject string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.entries[subject]
	if !ok {
		entry = &lockoutEntry{}
		l.entries[subject] = entry
	}
	if now.Before(entry.lockedUntil) {
		return true, entry.lockedUntil.Sub(now)
	}

	entry.failedAttempts++
	if entry.failedAttempts < l.config.MaxAttempts {
		return false, 0
	}

	duration := l.lockoutDuration(entry.lockoutCount)
	entry.lockedUntil = now.Add(duration)
	entry.lockoutCount++
	entry.failedAttempts = 0

	logging.Warn().
		Str("subject", subject).
		Dur("duration", duration).
		Int("lockout_count", entry.lockoutCount).
		Msg("Login locked out")

	return true, duration
}

// Succeed clears the subject's history.
func (l *Lockout) Succeed(subject string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, subject)
}

func (l *Lockout) lockoutDuration(lockoutCount int) time.Duration {
	duration := l.config.LockoutDuration
	for i := 0; i < lockoutCount; i++ {
		duration *= 2
		if duration >= l.config.MaxLockoutDuration {
			return l.config.MaxLockoutDuration
		}
	}
	return duration
}
