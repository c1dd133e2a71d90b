// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

// Package config loads dandimap configuration with koanf: built-in defaults,
// then an optional YAML file, then environment variables.
package config

import (
	"fmt"
	"time"
)

// Config is the complete application configuration.
type Config struct {
	Upstream UpstreamConfig `koanf:"upstream"`
	Server   ServerConfig   `koanf:"server"`
	Chart    ChartConfig    `koanf:"chart"`
	Map      MapConfig      `koanf:"map"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// UpstreamConfig describes the statistics API the dashboard reads from.
type UpstreamConfig struct {
	BaseURL   string        `koanf:"base_url"` // scheme://host[:port], "/api" is appended
	Timeout   time.Duration `koanf:"timeout"`
	RateLimit float64       `koanf:"rate_limit"` // outbound requests per second
	RateBurst int           `koanf:"rate_burst"`

	BreakerMaxRequests   uint32        `koanf:"breaker_max_requests"` // concurrent probes while half-open
	BreakerInterval      time.Duration `koanf:"breaker_interval"`
	BreakerTimeout       time.Duration `koanf:"breaker_timeout"`
	BreakerMinRequests   uint32        `koanf:"breaker_min_requests"`
	BreakerFailureRatio  float64       `koanf:"breaker_failure_ratio"`
	MetadataCacheTTL     time.Duration `koanf:"metadata_cache_ttl"`
	MaxResponseBodyBytes int64         `koanf:"max_response_body_bytes"`
}

// ServerConfig is the dashboard HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ChartConfig controls the time-series chart.
type ChartConfig struct {
	Width          int           `koanf:"width"`
	Height         int           `koanf:"height"`
	ResizeDebounce time.Duration `koanf:"resize_debounce"` // at least 200ms
	FilterDebounce time.Duration `koanf:"filter_debounce"`
	Cumulative     bool          `koanf:"cumulative"`
	EmptyMessage   string        `koanf:"empty_message"`
}

// MapConfig controls the region map.
type MapConfig struct {
	ColorScheme   string  `koanf:"color_scheme"` // volume or dataset_count
	InitialZoom   float64 `koanf:"initial_zoom"`
	MinSelectZoom float64 `koanf:"min_select_zoom"`
	CenterLat     float64 `koanf:"center_lat"`
	CenterLon     float64 `koanf:"center_lon"`
}

// SecurityConfig holds CORS and inbound rate limiting.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
