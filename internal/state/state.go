// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

// Package state holds the dashboard's application state: current filters,
// reference data loaded at startup and the last rendered chart.
//
// Only the dashboard orchestrator mutates an AppState. Renderers receive it
// as a read-only dependency. The mutex exists because HTTP handlers read the
// state from their own goroutines.
package state

import (
	"sync"

	"github.com/tomtom215/dandimap/internal/format"
	"github.com/tomtom215/dandimap/internal/geomap"
	"github.com/tomtom215/dandimap/internal/models"
	"github.com/tomtom215/dandimap/internal/timeseries"
)

// AllDatasets is the dataset filter value meaning "no filter".
const AllDatasets = "ALL"

// Filters are the user-controlled selections.
type Filters struct {
	DatasetID   string `json:"dataset_id,omitempty"`
	StartDate   string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate     string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Cumulative  bool   `json:"cumulative"`
	ColorScheme string `json:"color_scheme"`
}

// SingleDataset reports whether a single dataset filter is active.
func (f Filters) SingleDataset() bool {
	return f.DatasetID != "" && f.DatasetID != AllDatasets
}

// ChartSnapshot is the last payload handed to the chart renderer.
type ChartSnapshot struct {
	Payload *models.ChartPayload
	Title   string
	Series  *timeseries.Series // built without the cumulative transform
}

// AppState is the single mutable dashboard state.
type AppState struct {
	mu sync.RWMutex

	filters        Filters
	selectedRegion string

	stats    *models.Stats
	datasets []models.Dataset
	featured []models.DatasetMetadata
	metadata map[string]models.DatasetMetadata

	lastChart *ChartSnapshot
}

// New returns a state with the given initial filters.
func New(initial Filters) *AppState {
	if initial.ColorScheme == "" {
		initial.ColorScheme = geomap.DefaultScheme
	}
	return &AppState{
		filters:  initial,
		metadata: make(map[string]models.DatasetMetadata),
	}
}

// Filters returns a snapshot of the current filters.
func (s *AppState) Filters() Filters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters
}

// SetFilters replaces the current filters.
func (s *AppState) SetFilters(f Filters) {
	if f.ColorScheme == "" {
		f.ColorScheme = geomap.DefaultScheme
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = f
}

// SingleDatasetFilter reports whether a single dataset filter is active.
func (s *AppState) SingleDatasetFilter() bool {
	return s.Filters().SingleDataset()
}

// SelectedRegion returns the selected region code, or "".
func (s *AppState) SelectedRegion() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedRegion
}

// SetSelectedRegion records the selected region; "" clears the selection.
func (s *AppState) SetSelectedRegion(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedRegion = code
}

// SetReference stores the reference data loaded at startup.
func (s *AppState) SetReference(stats *models.Stats, datasets []models.Dataset, featured []models.DatasetMetadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = stats
	s.datasets = datasets
	s.featured = featured
}

// Stats returns the global counters, or nil before the first load.
func (s *AppState) Stats() *models.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Datasets returns the dataset list.
func (s *AppState) Datasets() []models.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Dataset(nil), s.datasets...)
}

// Featured returns the featured dataset list with totals recomputed from the
// last chart when it is a dataset view.
func (s *AppState) Featured() []models.DatasetMetadata {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := append([]models.DatasetMetadata(nil), s.featured...)
	totals := s.featuredTotalsLocked()
	for i := range out {
		if v, ok := totals[out[i].ID]; ok {
			out[i].TotalBytes = v
			out[i].TotalBytesFormatted = format.FormatBytes(v)
		}
	}
	return out
}

// MergeMetadata adds enrichment results keyed by padded dataset id.
func (s *AppState) MergeMetadata(items []models.DatasetMetadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range items {
		s.metadata[m.ID] = m
	}
}

// Metadata returns enrichment for a dataset id, padding it first.
func (s *AppState) Metadata(id string) (models.DatasetMetadata, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.metadata[format.PadDatasetID(id)]
	return m, ok
}

// SetLastChart retains the payload most recently rendered.
func (s *AppState) SetLastChart(payload *models.ChartPayload, title string) {
	snap := &ChartSnapshot{
		Payload: payload,
		Title:   title,
		Series:  timeseries.BuildActiveSeries(payload, timeseries.Options{}),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastChart = snap
}

// LastChart returns the last rendered chart, or nil.
func (s *AppState) LastChart() *ChartSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastChart
}

// RegionTotalFromLastChart returns the window total of the last chart when it
// was scoped to region code.
func (s *AppState) RegionTotalFromLastChart(code string) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastChart == nil || !s.lastChart.Payload.IsRegionScoped() || s.lastChart.Payload.RegionCode != code {
		return 0, false
	}
	return s.lastChart.Series.WindowTotal(), true
}

// FeaturedTotals returns per-dataset totals from the last chart, keyed by
// padded id. Empty when the last chart keyed regions.
func (s *AppState) FeaturedTotals() map[string]int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.featuredTotalsLocked()
}

func (s *AppState) featuredTotalsLocked() map[string]int64 {
	out := make(map[string]int64)
	if s.lastChart == nil || s.lastChart.Payload.IsRegionBreakdown() {
		return out
	}
	for k, v := range s.lastChart.Series.KeyTotals() {
		if format.IsDigits(k) {
			out[format.PadDatasetID(k)] = v
		}
	}
	return out
}
