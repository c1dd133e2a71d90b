// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/dandimap/internal/chart"
	"github.com/tomtom215/dandimap/internal/client"
	"github.com/tomtom215/dandimap/internal/dashboard"
	"github.com/tomtom215/dandimap/internal/geomap"
)

// Error codes.
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeUpstream           = "UPSTREAM_ERROR"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
)

// ErrNotReady is returned while the initial load has not completed.
var ErrNotReady = errors.New("dashboard not loaded yet")

// classify maps a domain error to a status and code.
func classify(err error) (int, string) {
	var he *client.HTTPError
	switch {
	case errors.Is(err, dashboard.ErrInvalidFilters):
		return http.StatusBadRequest, ErrCodeValidation
	case errors.Is(err, geomap.ErrUnknownRegion),
		errors.Is(err, chart.ErrUnknownKey),
		errors.Is(err, chart.ErrNoMount):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, chart.ErrEmptyScene):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, ErrNotReady):
		return http.StatusServiceUnavailable, ErrCodeServiceUnavailable
	case errors.Is(err, client.ErrCircuitOpen):
		return http.StatusServiceUnavailable, ErrCodeUpstream
	case errors.As(err, &he):
		if he.StatusCode == http.StatusNotFound {
			return http.StatusNotFound, ErrCodeNotFound
		}
		return http.StatusBadGateway, ErrCodeUpstream
	default:
		return http.StatusInternalServerError, ErrCodeInternal
	}
}
