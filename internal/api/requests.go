// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package api

import "github.com/tomtom215/dandimap/internal/dashboard"

// FilterRequest is the body of POST /filters. Omitted or null fields keep
// their current value; an empty string clears a field.
type FilterRequest struct {
	DatasetID   *string `json:"dataset_id"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	Cumulative  *bool   `json:"cumulative"`
	ColorScheme *string `json:"color_scheme"`
}

// filterValues holds the set fields of a FilterRequest for validation.
type filterValues struct {
	DatasetID   string `json:"dataset_id" validate:"omitempty,datasetid"`
	StartDate   string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate     string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	ColorScheme string `json:"color_scheme" validate:"omitempty,oneof=volume dataset_count"`
}

func (r *FilterRequest) values() *filterValues {
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	return &filterValues{
		DatasetID:   deref(r.DatasetID),
		StartDate:   deref(r.StartDate),
		EndDate:     deref(r.EndDate),
		ColorScheme: deref(r.ColorScheme),
	}
}

func (r *FilterRequest) update() dashboard.FilterUpdate {
	return dashboard.FilterUpdate{
		DatasetID:   r.DatasetID,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Cumulative:  r.Cumulative,
		ColorScheme: r.ColorScheme,
	}
}

// ResizeRequest is the body of POST /chart/resize.
type ResizeRequest struct {
	Width  int `json:"width" validate:"gte=100,lte=4096"`
	Height int `json:"height" validate:"gte=100,lte=4096"`
}

// ZoomRequest is the body of POST /map/zoom.
type ZoomRequest struct {
	Zoom float64 `json:"zoom" validate:"mapzoom"`
}
