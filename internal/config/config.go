// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/waypoint/internal/cluster"
	"github.com/tomtom215/waypoint/internal/popup"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Security   SecurityConfig   `koanf:"security"`
	Data       DataConfig       `koanf:"data"`
	Clustering ClusteringConfig `koanf:"clustering"`
	Popup      popup.Config     `koanf:"popup"`
	PhotoOfDay PhotoOfDayConfig `koanf:"photo_of_day"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
}

// Addr returns host:port for the listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig holds admin authentication and request limiting settings
type SecurityConfig struct {
	AuthMode          string        `koanf:"auth_mode"`
	JWTSecret         string        `koanf:"jwt_secret"`
	SessionTimeout    time.Duration `koanf:"session_timeout"`
	AdminUsername     string        `koanf:"admin_username"`
	AdminPassword     string        `koanf:"admin_password"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// AdminPasswordIsHash reports whether AdminPassword is already a bcrypt hash.
func (s SecurityConfig) AdminPasswordIsHash() bool {
	return strings.HasPrefix(s.AdminPassword, "$2a$") ||
		strings.HasPrefix(s.AdminPassword, "$2b$") ||
		strings.HasPrefix(s.AdminPassword, "$2y$")
}

// DataConfig describes where the locations dataset comes from.
//
// Source is a local path, an http(s):// URL or an s3://bucket/key URI.
// HTTP sources are rate limited and wrapped in a circuit breaker.
type DataConfig struct {
	Source         string        `koanf:"source"`
	ReloadInterval time.Duration `koanf:"reload_interval"` // 0 disables periodic reload
	FetchTimeout   time.Duration `koanf:"fetch_timeout"`

	HTTPRateLimit      float64       `koanf:"http_rate_limit"` // requests per second
	HTTPBurst          int           `koanf:"http_burst"`
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`

	S3Region       string `koanf:"s3_region"`
	S3Endpoint     string `koanf:"s3_endpoint"`
	S3UsePathStyle bool   `koanf:"s3_use_path_style"`
}

// ClusteringConfig holds the zoom band table and cache size.
type ClusteringConfig struct {
	// Bands is a comma-separated list of maxZoom:radiusKm pairs.
	Bands             string `koanf:"bands"`
	DistanceCacheSize int    `koanf:"distance_cache_size"`
}

// ParseBands parses the band table. Bands are returned sorted by zoom.
func (c ClusteringConfig) ParseBands() ([]cluster.Band, error) {
	if strings.TrimSpace(c.Bands) == "" {
		return cluster.DefaultBands(), nil
	}

	var bands []cluster.Band
	for _, part := range strings.Split(c.Bands, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		zoomStr, radiusStr, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("band %q: expected maxZoom:radiusKm", part)
		}
		zoom, err := strconv.ParseFloat(strings.TrimSpace(zoomStr), 64)
		if err != nil {
			return nil, fmt.Errorf("band %q: invalid zoom: %w", part, err)
		}
		radius, err := strconv.ParseFloat(strings.TrimSpace(radiusStr), 64)
		if err != nil {
			return nil, fmt.Errorf("band %q: invalid radius: %w", part, err)
		}
		if zoom <= 0 || radius < 0 {
			return nil, fmt.Errorf("band %q: zoom must be positive and radius non-negative", part)
		}
		bands = append(bands, cluster.Band{MaxZoom: zoom, RadiusKm: radius})
	}
	if len(bands) == 0 {
		return nil, fmt.Errorf("no bands in %q", c.Bands)
	}

	sort.Slice(bands, func(i, j int) bool { return bands[i].MaxZoom < bands[j].MaxZoom })
	for i := 1; i < len(bands); i++ {
		if bands[i].MaxZoom == bands[i-1].MaxZoom {
			return nil, fmt.Errorf("duplicate band for zoom %v", bands[i].MaxZoom)
		}
		if bands[i].RadiusKm > bands[i-1].RadiusKm {
			return nil, fmt.Errorf("radius must not grow with zoom (zoom %v)", bands[i].MaxZoom)
		}
	}
	return bands, nil
}

// PhotoOfDayConfig holds photo of the day settings.
type PhotoOfDayConfig struct {
	HistoryPath  string `koanf:"history_path"` // empty = in-memory history
	NoRepeatDays int    `koanf:"no_repeat_days"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load loads configuration from defaults, config file and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
