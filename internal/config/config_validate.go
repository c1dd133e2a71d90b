// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package config

import (
	"fmt"
	"net/url"
	"time"
)

const (
	minResizeDebounce    = 200 * time.Millisecond
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
	maxMapZoom           = 19
)

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

var validColorSchemes = map[string]bool{
	"volume":        true,
	"dataset_count": true,
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if err := c.validateUpstream(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateChart(); err != nil {
		return err
	}
	if err := c.validateMap(); err != nil {
		return err
	}
	if err := c.validateRateLimits(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateUpstream() error {
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("UPSTREAM_URL is required")
	}
	if err := validateHTTPURL(c.Upstream.BaseURL, "UPSTREAM_URL"); err != nil {
		return err
	}
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive")
	}
	if c.Upstream.RateLimit <= 0 || c.Upstream.RateBurst < 1 {
		return fmt.Errorf("UPSTREAM_RATE_LIMIT must be positive and UPSTREAM_RATE_BURST at least 1")
	}
	if c.Upstream.BreakerFailureRatio <= 0 || c.Upstream.BreakerFailureRatio > 1 {
		return fmt.Errorf("UPSTREAM_BREAKER_FAILURE_RATIO must be in (0, 1]")
	}
	if c.Upstream.MetadataCacheTTL <= 0 {
		return fmt.Errorf("METADATA_CACHE_TTL must be positive")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateChart() error {
	if c.Chart.Width < 1 || c.Chart.Height < 1 {
		return fmt.Errorf("CHART_WIDTH and CHART_HEIGHT must be positive")
	}
	if c.Chart.ResizeDebounce < minResizeDebounce {
		return fmt.Errorf("CHART_RESIZE_DEBOUNCE must be at least %v", minResizeDebounce)
	}
	if c.Chart.FilterDebounce < 0 {
		return fmt.Errorf("FILTER_DEBOUNCE must not be negative")
	}
	return nil
}

func (c *Config) validateMap() error {
	if !validColorSchemes[c.Map.ColorScheme] {
		return fmt.Errorf("MAP_COLOR_SCHEME must be one of: volume, dataset_count")
	}
	for name, z := range map[string]float64{
		"MAP_INITIAL_ZOOM":    c.Map.InitialZoom,
		"MAP_MIN_SELECT_ZOOM": c.Map.MinSelectZoom,
	} {
		if z < 0 || z > maxMapZoom {
			return fmt.Errorf("%s must be between 0 and %d", name, maxMapZoom)
		}
	}
	if c.Map.CenterLat < -90 || c.Map.CenterLat > 90 || c.Map.CenterLon < -180 || c.Map.CenterLon > 180 {
		return fmt.Errorf("MAP_CENTER_LAT/MAP_CENTER_LON out of range")
	}
	return nil
}

func (c *Config) validateRateLimits() error {
	if len(c.Security.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS must list at least one origin")
	}
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

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// validateHTTPURL accepts http(s) base URLs without path or query.
func validateHTTPURL(rawURL, fieldName string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	if u.Path != "" && u.Path != "/" {
		return fmt.Errorf("%s should be base URL only, remove path: %s", fieldName, u.Path)
	}
	if u.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters", fieldName)
	}
	return nil
}
