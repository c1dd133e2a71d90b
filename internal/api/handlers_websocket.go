// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package api

import (
	"net/http"

	"github.com/tomtom215/dandimap/internal/logging"
	ws "github.com/tomtom215/dandimap/internal/websocket"
)

// WebSocket upgrades the connection and attaches it to the hub.
//
// @Summary Live updates
// @Description Streams dashboard updates, notices, chart renders and region selections
// @Tags Core
// @Success 101 {string} string "Switching Protocols"
// @Failure 503 {object} models.APIResponse
// @Router /ws [get]
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		logging.Warn().Msg("WebSocket connection rejected: hub not initialized")
		respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "WebSocket service unavailable", nil)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("WebSocket upgrade error")
		return
	}
	ws.NewClient(h.wsHub, conn).Start()
}
