// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

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
)

// DefaultConfigPaths are searched in order; the first existing file wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/dandimap/config.yaml",
	"/etc/dandimap/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Upstream: UpstreamConfig{
			BaseURL:              "http://localhost:5001",
			Timeout:              30 * time.Second,
			RateLimit:            10,
			RateBurst:            20,
			BreakerMaxRequests:   3,
			BreakerInterval:      time.Minute,
			BreakerTimeout:       2 * time.Minute,
			BreakerMinRequests:   10,
			BreakerFailureRatio:  0.6,
			MetadataCacheTTL:     time.Hour,
			MaxResponseBodyBytes: 64 << 20,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Chart: ChartConfig{
			Width:          960,
			Height:         420,
			ResizeDebounce: 250 * time.Millisecond,
			FilterDebounce: 300 * time.Millisecond,
			Cumulative:     false,
			EmptyMessage:   "No download data for the selected filters",
		},
		Map: MapConfig{
			ColorScheme:   "volume",
			InitialZoom:   2,
			MinSelectZoom: 5,
			CenterLat:     20,
			CenterLon:     0,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, the config file and the
// environment, in increasing priority, and validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

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
	cfg.Upstream.BaseURL = strings.TrimRight(cfg.Upstream.BaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths arrive from the environment as comma separated strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		parts := strings.Split(s, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to config paths.
// Unlisted variables are ignored.
var envMappings = map[string]string{
	"upstream_url":                     "upstream.base_url",
	"upstream_timeout":                 "upstream.timeout",
	"upstream_rate_limit":              "upstream.rate_limit",
	"upstream_rate_burst":              "upstream.rate_burst",
	"upstream_breaker_max_requests":    "upstream.breaker_max_requests",
	"upstream_breaker_interval":        "upstream.breaker_interval",
	"upstream_breaker_timeout":         "upstream.breaker_timeout",
	"upstream_breaker_min_requests":    "upstream.breaker_min_requests",
	"upstream_breaker_failure_ratio":   "upstream.breaker_failure_ratio",
	"metadata_cache_ttl":               "upstream.metadata_cache_ttl",
	"upstream_max_response_body_bytes": "upstream.max_response_body_bytes",

	"http_host":        "server.host",
	"http_port":        "server.port",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",

	"chart_width":           "chart.width",
	"chart_height":          "chart.height",
	"chart_resize_debounce": "chart.resize_debounce",
	"filter_debounce":       "chart.filter_debounce",
	"chart_cumulative":      "chart.cumulative",
	"chart_empty_message":   "chart.empty_message",

	"map_color_scheme":    "map.color_scheme",
	"map_initial_zoom":    "map.initial_zoom",
	"map_min_select_zoom": "map.min_select_zoom",
	"map_center_lat":      "map.center_lat",
	"map_center_lon":      "map.center_lon",

	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
