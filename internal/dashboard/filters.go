// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package dashboard

import (
	"errors"
	"fmt"

	"github.com/tomtom215/dandimap/internal/format"
	"github.com/tomtom215/dandimap/internal/geomap"
	"github.com/tomtom215/dandimap/internal/state"
)

// ErrInvalidFilters wraps every filter rejection.
var ErrInvalidFilters = errors.New("invalid filters")

// FilterUpdate changes some filters; nil fields are left alone.
type FilterUpdate struct {
	DatasetID   *string
	StartDate   *string
	EndDate     *string
	Cumulative  *bool
	ColorScheme *string
}

// apply returns f with u merged in.
func (u FilterUpdate) apply(f state.Filters) state.Filters {
	if u.DatasetID != nil {
		f.DatasetID = *u.DatasetID
		if format.IsDigits(f.DatasetID) {
			f.DatasetID = format.PadDatasetID(f.DatasetID)
		}
	}
	if u.StartDate != nil {
		f.StartDate = *u.StartDate
	}
	if u.EndDate != nil {
		f.EndDate = *u.EndDate
	}
	if u.Cumulative != nil {
		f.Cumulative = *u.Cumulative
	}
	if u.ColorScheme != nil && *u.ColorScheme != "" {
		f.ColorScheme = *u.ColorScheme
	}
	return f
}

// needsFetch reports whether moving from old to f changes what the
// upstream returns.
func needsFetch(old, f state.Filters) bool {
	return old.DatasetID != f.DatasetID || old.StartDate != f.StartDate || old.EndDate != f.EndDate
}

// ValidateFilters checks a complete filter set.
func ValidateFilters(f state.Filters) error {
	if f.DatasetID != "" && f.DatasetID != state.AllDatasets {
		if !format.IsDigits(f.DatasetID) || len(f.DatasetID) > format.DatasetIDWidth {
			return fmt.Errorf("%w: dataset id %q must be up to %d digits", ErrInvalidFilters, f.DatasetID, format.DatasetIDWidth)
		}
	}
	if f.StartDate != "" {
		if _, err := format.ParseDate(f.StartDate); err != nil {
			return fmt.Errorf("%w: start date %q is not YYYY-MM-DD", ErrInvalidFilters, f.StartDate)
		}
	}
	if f.EndDate != "" {
		if _, err := format.ParseDate(f.EndDate); err != nil {
			return fmt.Errorf("%w: end date %q is not YYYY-MM-DD", ErrInvalidFilters, f.EndDate)
		}
	}
	// Same layout, so lexical order is date order.
	if f.StartDate != "" && f.EndDate != "" && f.StartDate > f.EndDate {
		return fmt.Errorf("%w: start date %s is after end date %s", ErrInvalidFilters, f.StartDate, f.EndDate)
	}
	if f.ColorScheme != "" && !geomap.ValidScheme(f.ColorScheme) {
		return fmt.Errorf("%w: unknown colour scheme %q", ErrInvalidFilters, f.ColorScheme)
	}
	return nil
}
