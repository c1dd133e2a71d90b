// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package dashboard

import (
	"time"

	"github.com/tomtom215/dandimap/internal/state"
)

// Update kinds.
const (
	UpdateReference = "reference"
	UpdateChart     = "chart"
	UpdateRegions   = "regions"
	UpdateFilters   = "filters"
)

// Update describes state the dashboard has just published.
type Update struct {
	Kind      string        `json:"kind"`
	Filters   state.Filters `json:"filters"`
	Title     string        `json:"title,omitempty"`
	Region    string        `json:"region,omitempty"`
	Empty     bool          `json:"empty,omitempty"`
	Markers   int           `json:"markers,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// Notice is a user-visible failure report. One notice is raised per failed
// operation.
type Notice struct {
	Operation string    `json:"operation"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// DataListener observes dashboard updates and notices.
type DataListener interface {
	DashboardUpdated(Update)
	DashboardNotice(Notice)
}
