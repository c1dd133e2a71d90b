// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

/*
Package models defines the data structures exchanged with the upstream
statistics API and returned by the dashboard API.

Upstream payloads:

  - ChartPayload: per-day byte counts keyed by dataset id, region code or OTHER
  - Region: one geographic aggregation point with totals and dataset diversity
  - Dataset, Stats: reference data loaded once at startup
  - DatasetMetadata, DatasetDetails, FeaturedDatasets: archive metadata enrichment

Dashboard responses:

  - APIResponse, APIError, Metadata: the envelope used by every endpoint

Time-series records carry arbitrary series keys next to their date, so
RawRecord is a map decoded with goccy/go-json rather than a struct.
*/
package models
