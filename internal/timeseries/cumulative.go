// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package timeseries

import "github.com/tomtom215/dandimap/internal/models"

// Cumulative returns a new slice where each key's value is its running sum
// over the (already sorted) points, and Total is the sum of those running
// sums. Keys not listed are left out of the result. The input is not
// modified. Applying it twice is not idempotent.
func Cumulative(points []models.TimePoint, keys []string) []models.TimePoint {
	running := make(map[string]int64, len(keys))
	out := make([]models.TimePoint, len(points))
	for i, p := range points {
		values := make(map[string]int64, len(keys))
		var total int64
		for _, k := range keys {
			running[k] += p.Values[k]
			values[k] = running[k]
			total += running[k]
		}
		out[i] = models.TimePoint{Date: p.Date, Values: values, Total: total}
	}
	return out
}
