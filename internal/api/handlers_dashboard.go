// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/dandimap/internal/format"
	"github.com/tomtom215/dandimap/internal/geomap"
	"github.com/tomtom215/dandimap/internal/models"
	"github.com/tomtom215/dandimap/internal/state"
)

// DashboardSnapshot is the body of GET /dashboard.
type DashboardSnapshot struct {
	Stats      *models.Stats            `json:"stats"`
	Filters    state.Filters            `json:"filters"`
	Selection  geomap.Selection         `json:"selection"`
	ChartTitle string                   `json:"chart_title,omitempty"`
	Featured   []models.DatasetMetadata `json:"featured"`
	Datasets   int                      `json:"dataset_count"`
	Markers    int                      `json:"marker_count"`
	Loaded     bool                     `json:"loaded"`
}

// Dashboard returns the current dashboard state.
//
// @Summary Dashboard snapshot
// @Tags Dashboard
// @Produce json
// @Success 200 {object} models.APIResponse{data=DashboardSnapshot}
// @Router /dashboard [get]
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	st := h.dash.State()
	snap := DashboardSnapshot{
		Stats:     st.Stats(),
		Filters:   st.Filters(),
		Selection: h.dash.Layer().Selection(),
		Featured:  st.Featured(),
		Datasets:  len(st.Datasets()),
		Markers:   len(h.dash.Layer().Markers()),
		Loaded:    h.Loaded(),
	}
	if last := st.LastChart(); last != nil {
		snap.ChartTitle = last.Title
	}
	if snap.Stats != nil && snap.Stats.TotalBytesFormatted == "" {
		stats := *snap.Stats
		stats.TotalBytesFormatted = format.FormatBytes(stats.TotalBytes)
		snap.Stats = &stats
	}
	respondSuccess(w, snap)
}

// DatasetEntry is one row of GET /datasets.
type DatasetEntry struct {
	models.Dataset
	Name       string `json:"name,omitempty"`
	LandingURL string `json:"landing_url,omitempty"`
}

// Datasets lists every dataset with the names known so far.
//
// @Summary List datasets
// @Tags Dashboard
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]DatasetEntry}
// @Router /datasets [get]
func (h *Handler) Datasets(w http.ResponseWriter, r *http.Request) {
	st := h.dash.State()
	datasets := st.Datasets()
	out := make([]DatasetEntry, len(datasets))
	for i, d := range datasets {
		out[i] = DatasetEntry{Dataset: d}
		if m, ok := st.Metadata(d.ID); ok {
			out[i].Name = m.Name
			out[i].LandingURL = m.LandingURL
		}
	}
	respondSuccess(w, out)
}

type datasetIDParam struct {
	ID string `json:"id" validate:"required,datasetid"`
}

// DatasetDetails proxies the archive details of one dataset.
//
// @Summary Dataset details
// @Tags Dashboard
// @Param id path string true "Dataset identifier, raw or zero padded"
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.DatasetDetails}
// @Failure 400 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Failure 502 {object} models.APIResponse
// @Router /datasets/{id} [get]
func (h *Handler) DatasetDetails(w http.ResponseWriter, r *http.Request) {
	p := datasetIDParam{ID: chi.URLParam(r, "id")}
	if apiErr := validateRequest(&p); apiErr != nil || p.ID == "ALL" {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "id must be a dataset identifier of up to 6 digits", nil)
		return
	}
	details, err := h.upstream.DatasetDetails(r.Context(), p.ID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, details)
}

// Filters returns the current filters.
//
// @Summary Current filters
// @Tags Dashboard
// @Produce json
// @Success 200 {object} models.APIResponse{data=state.Filters}
// @Router /filters [get]
func (h *Handler) Filters(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, h.dash.State().Filters())
}

// UpdateFilters applies a partial filter update.
//
// @Summary Update filters
// @Description Dataset and date changes schedule a debounced refresh; scheme and cumulative changes redraw at once
// @Tags Dashboard
// @Accept json
// @Produce json
// @Param filters body FilterRequest true "Fields to change"
// @Success 200 {object} models.APIResponse{data=state.Filters}
// @Failure 400 {object} models.APIResponse
// @Router /filters [post]
func (h *Handler) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	var req FilterRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON body", nil)
		return
	}
	if apiErr := validateRequest(req.values()); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	filters, err := h.dash.UpdateFilters(r.Context(), req.update())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, filters)
}
