// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package api

import (
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

// wildcardParam extracts a key from the trailing wildcard segment. Region
// codes contain a "/" between country and subregion and may arrive either
// raw or percent-encoded.
func wildcardParam(r *http.Request) string {
	raw := strings.Trim(chi.URLParam(r, "*"), "/")
	if code, err := url.PathUnescape(raw); err == nil {
		return code
	}
	return raw
}

// Markers returns the region layer: markers with styles and popups, legend,
// domains and view.
//
// @Summary Map markers
// @Tags Map
// @Produce json
// @Success 200 {object} models.APIResponse{data=geomap.LayerView}
// @Router /map/markers [get]
func (h *Handler) Markers(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, h.dash.Layer().View())
}

// MapLayer returns the bare layer document the browser map loads, without
// the response envelope. Marker styles use Leaflet circleMarker option
// names.
//
// @Summary Map layer document
// @Tags Map
// @Produce json
// @Success 200 {object} geomap.LayerView
// @Router /map/layer.json [get]
func (h *Handler) MapLayer(w http.ResponseWriter, r *http.Request) {
	writeDocument(w, "application/json", func(out io.Writer) error {
		data, err := h.dash.Layer().MarshalLayer()
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	})
}

// Popup returns the popup content for one marker.
//
// @Summary Marker popup
// @Tags Map
// @Param code path string true "Region code, e.g. US/Ohio"
// @Produce json
// @Success 200 {object} models.APIResponse{data=geomap.Popup}
// @Failure 404 {object} models.APIResponse
// @Router /map/popup/{code} [get]
func (h *Handler) Popup(w http.ResponseWriter, r *http.Request) {
	code := wildcardParam(r)
	p, ok := h.dash.Layer().Popup(code)
	if !ok {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "No marker for region "+code, nil)
		return
	}
	respondSuccess(w, p)
}

// SelectRegion highlights a marker, centres the map on it and scopes the
// chart to the region.
//
// @Summary Select a region
// @Tags Map
// @Param code path string true "Region code, e.g. US/Ohio"
// @Produce json
// @Success 200 {object} models.APIResponse{data=geomap.Selection}
// @Failure 404 {object} models.APIResponse
// @Failure 502 {object} models.APIResponse
// @Router /map/select/{code} [post]
func (h *Handler) SelectRegion(w http.ResponseWriter, r *http.Request) {
	sel, err := h.dash.SelectRegion(r.Context(), wildcardParam(r))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, sel)
}

// ResetSelection clears the selection and returns to the global chart.
//
// @Summary Reset the selection
// @Tags Map
// @Produce json
// @Success 200 {object} models.APIResponse{data=geomap.Selection}
// @Failure 502 {object} models.APIResponse
// @Router /map/reset [post]
func (h *Handler) ResetSelection(w http.ResponseWriter, r *http.Request) {
	if err := h.dash.ResetSelection(r.Context()); err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, h.dash.Layer().Selection())
}

// Zoom changes the map zoom; marker radii follow, nothing else changes.
//
// @Summary Zoom the map
// @Tags Map
// @Accept json
// @Produce json
// @Param zoom body ZoomRequest true "New zoom level"
// @Success 200 {object} models.APIResponse{data=geomap.LayerView}
// @Failure 400 {object} models.APIResponse
// @Router /map/zoom [post]
func (h *Handler) Zoom(w http.ResponseWriter, r *http.Request) {
	var req ZoomRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	layer := h.dash.Layer()
	layer.SetZoom(req.Zoom)
	respondSuccess(w, layer.View())
}
