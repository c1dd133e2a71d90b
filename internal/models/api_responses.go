// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package models

import (
	"time"
)

// APIResponse is the envelope returned by every dashboard endpoint.
//
//	{
//	  "status": "success",
//	  "data": {"markers": [...]},
//	  "metadata": {"timestamp": "2026-01-01T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"` // "success" or "error"
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response timing.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	FetchMS   int64     `json:"fetch_time_ms,omitempty"` // upstream time spent for this response
	Sequence  uint64    `json:"sequence,omitempty"`      // refresh sequence that produced the data
}

// APIError is a machine-readable error with optional details.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
