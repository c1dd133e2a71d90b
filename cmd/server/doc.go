// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

/*
Package main runs the dandimap server.

dandimap reads download statistics for DANDI Archive datasets from the usage
statistics API, turns them into a stacked time-series chart and a region
marker map, and serves both, along with the interactions that drive them,
over HTTP. Render and selection events are pushed to browsers over a
WebSocket.

# Process layout

	dandimap (root supervisor)
	├── cache-layer
	│   └── metadata cache sweeper
	├── messaging-layer
	│   ├── WebSocket hub
	│   └── initial dashboard load (retried until it succeeds)
	└── api-layer
	    └── HTTP server

Startup order:

 1. Configuration: koanf defaults, optional YAML file, environment
 2. Logging: zerolog, JSON or console
 3. Upstream client: rate limited, circuit breaker, metadata cache
 4. Renderers: chart, region layer, dashboard orchestration
 5. WebSocket hub, registered as a listener on all three
 6. Supervisor tree, then signal handling

# Configuration

	UPSTREAM_URL=http://localhost:5001   statistics API root, "/api" is appended
	HTTP_PORT=8080
	LOG_LEVEL=info
	LOG_FORMAT=json
	CORS_ORIGINS=https://dandi.example
	CONFIG_PATH=/etc/dandimap/config.yaml

See internal/config for the full list.

# Endpoints

The HTTP surface is described in internal/api. Prometheus metrics are
served at /metrics.
*/
package main
