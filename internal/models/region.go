// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package models

// Region is one geographic aggregation point. Code is "<country>/<subregion>"
// for geolocated traffic, or a bare service name (AWS, GitHub, ...).
type Region struct {
	Code                string  `json:"code"`
	Name                string  `json:"name"`
	Country             string  `json:"country"`
	Latitude            float64 `json:"latitude"`
	Longitude           float64 `json:"longitude"`
	TotalBytes          int64   `json:"total_bytes"`
	TotalBytesFormatted string  `json:"total_bytes_formatted,omitempty"`
	DatasetCount        int     `json:"dataset_count"`
}

// HasCoordinates reports whether the upstream supplied a position.
// The upstream encodes unknown positions as 0,0.
func (r *Region) HasCoordinates() bool {
	return r.Latitude != 0 || r.Longitude != 0
}

// Stats holds the global summary counters.
type Stats struct {
	TotalBytes          int64  `json:"total_bytes"`
	TotalBytesFormatted string `json:"total_bytes_formatted,omitempty"`
	TotalDatasets       int    `json:"total_datasets"`
	UniqueRegions       int    `json:"unique_regions"`
	UniqueCountries     int    `json:"unique_countries"`
	ActiveRegions       int    `json:"active_regions"`
}
