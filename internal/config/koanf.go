// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/waypoint/internal/popup"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/waypoint/config.yaml",
	"/etc/waypoint/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Security: SecurityConfig{
			AuthMode:          "jwt",
			JWTSecret:         "",
			SessionTimeout:    24 * time.Hour,
			AdminUsername:     "",
			AdminPassword:     "",
			RateLimitReqs:     100,
			RateLimitWindow:   1 * time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Data: DataConfig{
			Source:             "data/locations.json",
			ReloadInterval:     10 * time.Minute,
			FetchTimeout:       15 * time.Second,
			HTTPRateLimit:      1,
			HTTPBurst:          2,
			BreakerMaxFailures: 5,
			BreakerTimeout:     30 * time.Second,
			S3Region:           "us-east-1",
			S3Endpoint:         "",
			S3UsePathStyle:     false,
		},
		Clustering: ClusteringConfig{
			Bands:             "3:100,5:50,8:20,11:5,14:1",
			DistanceCacheSize: 10000,
		},
		Popup: popup.DefaultConfig(),
		PhotoOfDay: PhotoOfDayConfig{
			HistoryPath:  "",
			NoRepeatDays: 30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any mapped setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings; YAML lists are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_host":        "server.host",
	"http_port":        "server.port",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	// Security
	"auth_mode":           "security.auth_mode",
	"jwt_secret":          "security.jwt_secret",
	"session_timeout":     "security.session_timeout",
	"admin_username":      "security.admin_username",
	"admin_password":      "security.admin_password",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	// Data source
	"data_source":               "data.source",
	"data_reload_interval":      "data.reload_interval",
	"data_fetch_timeout":        "data.fetch_timeout",
	"data_http_rate_limit":      "data.http_rate_limit",
	"data_http_burst":           "data.http_burst",
	"data_breaker_max_failures": "data.breaker_max_failures",
	"data_breaker_timeout":      "data.breaker_timeout",
	"s3_region":                 "data.s3_region",
	"s3_endpoint":               "data.s3_endpoint",
	"s3_use_path_style":         "data.s3_use_path_style",

	// Clustering
	"cluster_bands":               "clustering.bands",
	"cluster_distance_cache_size": "clustering.distance_cache_size",

	// Popup placement
	"popup_header_height":  "popup.header_height",
	"popup_header_buffer":  "popup.header_buffer",
	"popup_edge_threshold": "popup.edge_threshold",
	"popup_base_offset":    "popup.base_offset",
	"popup_edge_margin":    "popup.edge_margin",
	"popup_min_max_height": "popup.min_max_height",
	"popup_max_max_height": "popup.max_max_height",
	"popup_cache_size":     "popup.cache_size",

	// Photo of the day
	"photo_of_day_history_path":   "photo_of_day.history_path",
	"photo_of_day_no_repeat_days": "photo_of_day.no_repeat_days",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - DATA_SOURCE -> data.source
//   - POPUP_EDGE_THRESHOLD -> popup.edge_threshold
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// Unmapped keys are skipped so unrelated environment variables never leak in.
	return ""
}
