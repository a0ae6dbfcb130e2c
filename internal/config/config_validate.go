// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	if err := c.validateData(); err != nil {
		return err
	}

	if err := c.validateClustering(); err != nil {
		return err
	}

	if err := c.validatePopup(); err != nil {
		return err
	}

	if err := c.validatePhotoOfDay(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

// validateSecurity validates security configuration
func (c *Config) validateSecurity() error {
	if err := c.validateAuthMode(); err != nil {
		return err
	}

	if err := c.validateCORS(); err != nil {
		return err
	}

	if err := c.validateRateLimits(); err != nil {
		return err
	}

	if c.Security.AuthMode == "jwt" {
		return c.validateJWTAuth()
	}
	return nil
}

// validAuthModes defines the allowed authentication modes
var validAuthModes = map[string]bool{
	"none": true,
	"jwt":  true,
}

// validateAuthMode checks if auth mode is valid
func (c *Config) validateAuthMode() error {
	if !validAuthModes[c.Security.AuthMode] {
		return fmt.Errorf("AUTH_MODE must be one of: none, jwt")
	}

	// AUTH_MODE=none would leave the admin reload endpoint open.
	if c.Security.AuthMode == "none" && c.IsProduction() {
		return fmt.Errorf("AUTH_MODE=none is not allowed when ENVIRONMENT=production")
	}
	return nil
}

// validateCORS rejects wildcard origins in production with authentication enabled.
func (c *Config) validateCORS() error {
	if c.Security.AuthMode != "none" && c.hasWildcardCORS() && c.IsProduction() {
		return fmt.Errorf("CORS_ORIGINS=* (wildcard) is not allowed in production with authentication enabled. " +
			"Set specific origins: CORS_ORIGINS=https://yourdomain.com")
	}
	return nil
}

// hasWildcardCORS checks if CORS is configured with wildcard origins
func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ShouldWarnAboutCORS returns true if CORS configuration has security concerns
// that should be logged at startup
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.Security.AuthMode != "none" && c.hasWildcardCORS()
}

// Rate limit constants
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

// validateRateLimits validates rate limiting configuration bounds.
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// IsProduction returns true if the application is running in production mode.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// IsDevelopment returns true if the application is running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "" || env == "development" || env == "dev"
}

// validateJWTAuth validates JWT authentication configuration
func (c *Config) validateJWTAuth() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_MODE is jwt")
	}
	if len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters for security")
	}
	if containsPlaceholder(c.Security.JWTSecret) {
		return fmt.Errorf("JWT_SECRET contains a placeholder value - generate a secure secret with: openssl rand -base64 32")
	}
	if c.Security.SessionTimeout <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT must be positive")
	}
	if c.Security.AdminUsername == "" {
		return fmt.Errorf("ADMIN_USERNAME is required when AUTH_MODE is jwt")
	}
	return c.validateAdminPassword()
}

// validateAdminPassword validates the admin password. Bcrypt hashes are
// accepted as is; plain text passwords must satisfy the password policy.
func (c *Config) validateAdminPassword() error {
	if c.Security.AdminPassword == "" {
		return fmt.Errorf("ADMIN_PASSWORD is required when AUTH_MODE is jwt")
	}
	if c.Security.AdminPasswordIsHash() {
		return nil
	}
	if containsPlaceholder(c.Security.AdminPassword) {
		return fmt.Errorf("ADMIN_PASSWORD contains a placeholder value - set a secure password")
	}
	if err := DefaultPasswordPolicy().ValidateWithError(c.Security.AdminPassword, c.Security.AdminUsername); err != nil {
		return fmt.Errorf("ADMIN_PASSWORD: %w", err)
	}
	return nil
}

// validateData validates the dataset source configuration
func (c *Config) validateData() error {
	if strings.TrimSpace(c.Data.Source) == "" {
		return fmt.Errorf("DATA_SOURCE is required")
	}
	if err := validateSourceURI(c.Data.Source); err != nil {
		return err
	}
	if c.Data.ReloadInterval < 0 {
		return fmt.Errorf("DATA_RELOAD_INTERVAL must not be negative")
	}
	if c.Data.FetchTimeout <= 0 {
		return fmt.Errorf("DATA_FETCH_TIMEOUT must be positive")
	}
	if c.Data.HTTPRateLimit <= 0 || c.Data.HTTPBurst < 1 {
		return fmt.Errorf("DATA_HTTP_RATE_LIMIT must be positive and DATA_HTTP_BURST at least 1")
	}
	if c.Data.BreakerMaxFailures < 1 {
		return fmt.Errorf("DATA_BREAKER_MAX_FAILURES must be at least 1")
	}
	return nil
}

// validateSourceURI accepts local paths, http(s) URLs and s3://bucket/key.
func validateSourceURI(source string) error {
	if !strings.Contains(source, "://") {
		return nil
	}

	u, err := url.Parse(source)
	if err != nil {
		return fmt.Errorf("DATA_SOURCE is not a valid URL: %w", err)
	}

	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("DATA_SOURCE must include a host")
		}
	case "s3":
		if u.Host == "" || strings.Trim(u.Path, "/") == "" {
			return fmt.Errorf("DATA_SOURCE must be of the form s3://bucket/key")
		}
	case "file":
	default:
		return fmt.Errorf("DATA_SOURCE scheme %q is not supported (use a path, http(s)://, or s3://)", u.Scheme)
	}
	return nil
}

// validateClustering validates the zoom band table
func (c *Config) validateClustering() error {
	if _, err := c.Clustering.ParseBands(); err != nil {
		return fmt.Errorf("CLUSTER_BANDS: %w", err)
	}
	if c.Clustering.DistanceCacheSize < 1 {
		return fmt.Errorf("CLUSTER_DISTANCE_CACHE_SIZE must be at least 1")
	}
	return nil
}

// validatePopup validates placement tuning constants
func (c *Config) validatePopup() error {
	p := c.Popup
	if p.HeaderHeight < 0 || p.HeaderBuffer < 0 || p.BaseOffset < 0 || p.EdgeMargin < 0 {
		return fmt.Errorf("POPUP_* pixel sizes must not be negative")
	}
	if p.EdgeThreshold <= 0 || p.EdgeThreshold >= 0.5 {
		return fmt.Errorf("POPUP_EDGE_THRESHOLD must be between 0 and 0.5 (exclusive)")
	}
	if p.MinMaxHeight <= 0 || p.MaxMaxHeight < p.MinMaxHeight {
		return fmt.Errorf("POPUP_MIN_MAX_HEIGHT must be positive and not above POPUP_MAX_MAX_HEIGHT")
	}
	if p.CacheSize < 1 {
		return fmt.Errorf("POPUP_CACHE_SIZE must be at least 1")
	}
	return nil
}

// validatePhotoOfDay validates photo of the day settings
func (c *Config) validatePhotoOfDay() error {
	if c.PhotoOfDay.NoRepeatDays < 0 || c.PhotoOfDay.NoRepeatDays > 3650 {
		return fmt.Errorf("PHOTO_OF_DAY_NO_REPEAT_DAYS must be between 0 and 3650")
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// placeholderPatterns lists values that indicate an unset secret.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_SECRET",
	"YOUR_PASSWORD",
	"PLACEHOLDER",
	"EXAMPLE",
}

// containsPlaceholder checks if a value contains common placeholder patterns
func containsPlaceholder(value string) bool {
	upper := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}
