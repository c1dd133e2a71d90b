// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

// Package format holds the display formatters shared by the chart, the map
// and the API. FormatBytes is the only byte formatter in the module so that
// axis ticks, tooltips, legends and popups always round the same way.
package format

import (
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// OtherKey is the series key aggregating everything outside the top keys.
const OtherKey = "OTHER"

// DateLayout is the calendar date format used for records, filters and tooltips.
const DateLayout = "2006-01-02"

// DatasetIDWidth is the zero-padded width of dataset identifiers.
const DatasetIDWidth = 6

var byteUnits = [...]string{"B", "KB", "MB", "GB", "TB", "PB"}

// FormatBytes renders n with base-1024 units and one decimal place.
//
//	FormatBytes(0)          // "0 B"
//	FormatBytes(1536)       // "1.5 KB"
//	FormatBytes(1073741824) // "1.0 GB"
func FormatBytes(n int64) string {
	if n == 0 {
		return "0 B"
	}

	sign := ""
	v := float64(n)
	if n < 0 {
		sign = "-"
		v = -v
	}

	unit := 0
	for v >= 1024 && unit < len(byteUnits)-1 {
		v /= 1024
		unit++
	}

	return sign + strconv.FormatFloat(v, 'f', 1, 64) + " " + byteUnits[unit]
}

// FormatNumber renders n with comma thousands separators.
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// FormatSeriesLabel turns a series key into its display label.
// regionView selects the wording for the OTHER bucket.
func FormatSeriesLabel(key string, regionView bool) string {
	if key == OtherKey {
		if regionView {
			return "Other Regions"
		}
		return "Other Datasets"
	}
	if country, sub, ok := strings.Cut(key, "/"); ok {
		return sub + ", " + country
	}
	if IsDigits(key) {
		return PadDatasetID(key)
	}
	return key
}

// PadDatasetID zero-pads a numeric dataset id to DatasetIDWidth characters.
// Non-numeric ids are returned unchanged.
func PadDatasetID(id string) string {
	if !IsDigits(id) || len(id) >= DatasetIDWidth {
		return id
	}
	return strings.Repeat("0", DatasetIDWidth-len(id)) + id
}

// IsDigits reports whether s is non-empty and made only of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD calendar date in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
