// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package api

import (
	"io"
	"net/http"

	"github.com/tomtom215/dandimap/internal/chart"
	"github.com/tomtom215/dandimap/internal/dashboard"
)

// Chart returns the current scene of the time-series chart.
//
// @Summary Chart scene
// @Description Laid-out stacked bars, axis ticks, legend and tooltips
// @Tags Chart
// @Produce json
// @Success 200 {object} models.APIResponse{data=chart.Scene}
// @Router /chart [get]
func (h *Handler) Chart(w http.ResponseWriter, r *http.Request) {
	sc, err := h.scene()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, sc)
}

func (h *Handler) scene() (*chart.Scene, error) {
	sc, err := h.dash.Chart().Scene(dashboard.ChartSelector)
	if err != nil {
		return nil, err
	}
	if sc == nil {
		return nil, ErrNotReady
	}
	return sc, nil
}

// ChartSVG renders the chart as a standalone SVG document.
//
// @Summary Chart as SVG
// @Tags Chart
// @Produce image/svg+xml
// @Success 200 {string} string "SVG document"
// @Failure 503 {object} models.APIResponse
// @Router /chart.svg [get]
func (h *Handler) ChartSVG(w http.ResponseWriter, r *http.Request) {
	h.export(w, "image/svg+xml", chart.WriteSVG)
}

// ChartHTML renders the chart as an interactive ECharts page.
//
// @Summary Chart as HTML
// @Tags Chart
// @Produce html
// @Success 200 {string} string "HTML page"
// @Failure 503 {object} models.APIResponse
// @Router /chart.html [get]
func (h *Handler) ChartHTML(w http.ResponseWriter, r *http.Request) {
	h.export(w, "text/html; charset=utf-8", chart.WriteHTML)
}

// ChartPNG renders the chart as a PNG image. An empty chart is a 404.
//
// @Summary Chart as PNG
// @Tags Chart
// @Produce png
// @Success 200 {file} binary "PNG image"
// @Failure 404 {object} models.APIResponse
// @Failure 503 {object} models.APIResponse
// @Router /chart.png [get]
func (h *Handler) ChartPNG(w http.ResponseWriter, r *http.Request) {
	h.export(w, "image/png", chart.WritePNG)
}

func (h *Handler) export(w http.ResponseWriter, contentType string, write func(io.Writer, *chart.Scene) error) {
	sc, err := h.scene()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	writeDocument(w, contentType, func(out io.Writer) error {
		return write(out, sc)
	})
}

// LegendToggle is the body of a legend toggle response.
type LegendToggle struct {
	Key    string `json:"key"`
	Hidden bool   `json:"hidden"`
}

// ToggleLegend shows or hides one series without changing the layout.
// Series keys are dataset ids or, in the region breakdown, region codes
// such as "US/Ohio", so the key is taken from the wildcard segment.
//
// @Summary Toggle a legend entry
// @Tags Chart
// @Param key path string true "Series key"
// @Produce json
// @Success 200 {object} models.APIResponse{data=LegendToggle}
// @Failure 404 {object} models.APIResponse
// @Router /chart/legend/{key} [post]
func (h *Handler) ToggleLegend(w http.ResponseWriter, r *http.Request) {
	key := wildcardParam(r)
	hidden, err := h.dash.Chart().ToggleLegend(dashboard.ChartSelector, key)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, LegendToggle{Key: key, Hidden: hidden})
}

// ResizeChart schedules a debounced re-layout at the new size.
//
// @Summary Resize the chart
// @Tags Chart
// @Accept json
// @Produce json
// @Param size body ResizeRequest true "New mount size in pixels"
// @Success 200 {object} models.APIResponse{data=ResizeRequest}
// @Failure 400 {object} models.APIResponse
// @Router /chart/resize [post]
func (h *Handler) ResizeChart(w http.ResponseWriter, r *http.Request) {
	var req ResizeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.dash.Chart().Resize(dashboard.ChartSelector, req.Width, req.Height); err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, req)
}
