// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/dandimap/internal/models"
)

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status       string  `json:"status"` // healthy or degraded
	Loaded       bool    `json:"loaded"`
	BreakerState string  `json:"breaker_state"`
	Clients      int     `json:"websocket_clients"`
	Markers      int     `json:"markers"`
	Uptime       float64 `json:"uptime_seconds"`
}

// Health handles health check requests
//
// @Summary Get dashboard health
// @Description Reports whether the initial load completed and the state of the upstream circuit breaker
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse{data=HealthStatus}
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	breaker := "unknown"
	if h.upstream != nil {
		breaker = h.upstream.BreakerState()
	}
	status := "healthy"
	if !h.Loaded() || breaker == "open" {
		status = "degraded"
	}
	clients := 0
	if h.wsHub != nil {
		clients = h.wsHub.GetClientCount()
	}

	respondSuccess(w, HealthStatus{
		Status:       status,
		Loaded:       h.Loaded(),
		BreakerState: breaker,
		Clients:      clients,
		Markers:      len(h.dash.Layer().Markers()),
		Uptime:       time.Since(h.startTime).Seconds(),
	})
}

// HealthLive returns 200 while the process runs.
//
// @Summary Liveness probe
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady returns 200 once the dashboard has loaded, 503 before.
//
// @Summary Readiness probe
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse
// @Failure 503 {object} models.APIResponse
// @Router /health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	status, code := "ready", http.StatusOK
	if !h.Loaded() {
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	respondJSON(w, code, &models.APIResponse{
		Status:   "success",
		Data:     map[string]interface{}{"status": status},
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	})
}
