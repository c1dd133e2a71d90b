// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

// Package validation wraps go-playground/validator with a process-wide
// instance, the dashboard's custom tags and messages that fit the API error
// envelope.
//
// Custom tags:
//
//	datasetid   "ALL" or one to six digits
//	mapzoom     a zoom level in [MinZoom, MaxZoom]
//
// Usage:
//
//	type FilterRequest struct {
//	    DatasetID string `validate:"omitempty,datasetid"`
//	    StartDate string `validate:"omitempty,datetime=2006-01-02"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	}
package validation
