// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package api

import (
	"context"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/dandimap/internal/config"
	"github.com/tomtom215/dandimap/internal/dashboard"
	"github.com/tomtom215/dandimap/internal/models"
	ws "github.com/tomtom215/dandimap/internal/websocket"
)

// Upstream is the part of the statistics client used directly by handlers.
type Upstream interface {
	DatasetDetails(ctx context.Context, id string) (*models.DatasetDetails, error)
	BreakerState() string
}

// Handler holds the dependencies of the HTTP handlers.
//
// Handler methods are split across files:
//   - handlers_health.go: liveness and readiness
//   - handlers_dashboard.go: dashboard snapshot, datasets, filters
//   - handlers_chart.go: chart scene, exports and interactions
//   - handlers_map.go: marker layer and selection
//   - handlers_websocket.go: event stream
type Handler struct {
	dash      *dashboard.Dashboard
	upstream  Upstream
	wsHub     *ws.Hub
	config    *config.Config
	startTime time.Time
	loaded    atomic.Bool
	upgrader  websocket.Upgrader
}

// NewHandler creates the handler set. hub may be nil, in which case /ws
// answers 503.
func NewHandler(dash *dashboard.Dashboard, upstream Upstream, hub *ws.Hub, cfg *config.Config) *Handler {
	h := &Handler{
		dash:      dash,
		upstream:  upstream,
		wsHub:     hub,
		config:    cfg,
		startTime: time.Now(),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// MarkLoaded flips readiness once the initial dashboard load succeeded.
func (h *Handler) MarkLoaded() {
	h.loaded.Store(true)
}

// Loaded reports whether the initial load completed.
func (h *Handler) Loaded() bool {
	return h.loaded.Load()
}

// checkOrigin allows same-host upgrades and the configured CORS origins.
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if u.Host == r.Host {
		return true
	}
	if h.config == nil {
		return false
	}
	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
