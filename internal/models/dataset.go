// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package models

import "fmt"

// ArchiveBaseURL is the public landing page root of the archive.
const ArchiveBaseURL = "https://dandiarchive.org/dandiset"

// DraftVersion is the version used when no published version is known.
const DraftVersion = "draft"

// Dataset is one entry of the dataset list.
type Dataset struct {
	ID                  string `json:"id"` // six digit, zero padded
	TotalBytes          int64  `json:"total_bytes"`
	TotalBytesFormatted string `json:"total_bytes_formatted,omitempty"`
	UniqueRegions       int    `json:"unique_regions"`
	UniqueCountries     int    `json:"unique_countries"`
}

// DatasetMetadata is archive metadata for a dataset, joined with its total.
type DatasetMetadata struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	LandingURL          string `json:"landing_url"`
	Version             string `json:"version"`
	TotalBytes          int64  `json:"total_bytes"`
	TotalBytesFormatted string `json:"total_bytes_formatted,omitempty"`
	Fallback            bool   `json:"fallback,omitempty"` // built locally, archive metadata unavailable
}

// FallbackMetadata builds the metadata shown when enrichment is unavailable.
// id must already be zero padded.
func FallbackMetadata(id string, totalBytes int64) DatasetMetadata {
	return DatasetMetadata{
		ID:         id,
		Name:       fmt.Sprintf("Dataset %s", id),
		LandingURL: LandingURL(id, DraftVersion),
		Version:    DraftVersion,
		TotalBytes: totalBytes,
		Fallback:   true,
	}
}

// LandingURL returns the archive page for a dataset version.
func LandingURL(id, version string) string {
	if version == "" {
		version = DraftVersion
	}
	return fmt.Sprintf("%s/%s/%s", ArchiveBaseURL, id, version)
}

// MetadataRequest is the body of the batch metadata endpoint.
type MetadataRequest struct {
	DatasetIDs    []string         `json:"dataset_ids"`
	DatasetTotals map[string]int64 `json:"dataset_totals"`
}

// MetadataResponse is the reply of the batch metadata endpoint.
type MetadataResponse struct {
	Dandisets []DatasetMetadata `json:"dandisets"`
	Count     int               `json:"count"`
}

// FeaturedDatasets is the curated highlight list.
type FeaturedDatasets struct {
	Items []DatasetMetadata `json:"featured_dandisets"`
	Count int               `json:"count"`
}

// DatasetDetails is the single-dataset detail record.
type DatasetDetails struct {
	DatasetMetadata
	UniqueRegions         int      `json:"unique_regions"`
	UniqueCountries       int      `json:"unique_countries"`
	Description           string   `json:"description,omitempty"`
	ContributorsFormatted []string `json:"contributors_formatted,omitempty"` // first five contributors
	ContributorsCount     int      `json:"contributors_count"`
}
