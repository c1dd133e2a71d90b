// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

// Package timeseries turns upstream chart payloads into the stacked series the
// chart renders.
//
// The active key set is derived from the records inside the filtered date
// window, so a dataset or region that has no traffic in the window disappears
// from both the stack and the legend, and day totals only ever count what is
// drawn.
package timeseries

import (
	"sort"
	"time"

	"github.com/tomtom215/dandimap/internal/format"
	"github.com/tomtom215/dandimap/internal/models"
)

// Options control BuildActiveSeries.
type Options struct {
	Cumulative bool
}

// Series is the render-ready view of a ChartPayload.
type Series struct {
	Points []models.TimePoint

	// Candidates is the ordered candidate key list, OTHER last when present.
	Candidates []string

	// Active is the subset of Candidates with a positive value on some day,
	// in candidate order.
	Active []string

	Cumulative      bool
	RegionBreakdown bool
	RegionCode      string

	// Dropped counts records discarded for an unparseable date.
	Dropped int

	keyTotals map[string]int64
}

// BuildActiveSeries derives the active series of payload. The payload is never
// modified. A nil payload yields an empty series.
func BuildActiveSeries(payload *models.ChartPayload, opts Options) *Series {
	s := &Series{Cumulative: opts.Cumulative}
	if payload == nil {
		s.keyTotals = map[string]int64{}
		return s
	}
	s.RegionBreakdown = payload.IsRegionBreakdown()
	s.RegionCode = payload.RegionCode

	records := make([]models.RawRecord, len(payload.TimeSeries))
	for i, r := range payload.TimeSeries {
		records[i] = r.Clone()
	}

	s.Candidates = candidateKeys(payload.TopDatasets, records)

	points := make([]models.TimePoint, 0, len(records))
	for _, r := range records {
		raw, ok := r.Date()
		if !ok {
			s.Dropped++
			continue
		}
		d, err := format.ParseDate(raw)
		if err != nil {
			s.Dropped++
			continue
		}
		values := make(map[string]int64, len(s.Candidates))
		for _, k := range s.Candidates {
			values[k] = r.Value(k)
		}
		points = append(points, models.TimePoint{Date: d, Values: values})
	}
	points = sortUniqueByDate(points)

	// First pass: totals over every candidate.
	for i := range points {
		points[i].Total = sumKeys(points[i].Values, s.Candidates)
	}

	s.Active = activeKeys(s.Candidates, points)

	// Final totals count only what is drawn.
	for i := range points {
		for k := range points[i].Values {
			if !contains(s.Active, k) {
				delete(points[i].Values, k)
			}
		}
		points[i].Total = sumKeys(points[i].Values, s.Active)
	}

	s.keyTotals = make(map[string]int64, len(s.Active))
	for _, p := range points {
		for _, k := range s.Active {
			s.keyTotals[k] += p.Values[k]
		}
	}

	if opts.Cumulative {
		points = Cumulative(points, s.Active)
	}
	s.Points = points
	return s
}

// candidateKeys returns top followed by OTHER when some record carries a
// positive OTHER value. Duplicates and an OTHER inside top are dropped so
// OTHER is always last.
func candidateKeys(top []string, records []models.RawRecord) []string {
	seen := make(map[string]struct{}, len(top)+1)
	keys := make([]string, 0, len(top)+1)
	for _, k := range top {
		if k == format.OtherKey || k == models.DateField {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	for _, r := range records {
		if r.Value(format.OtherKey) > 0 {
			keys = append(keys, format.OtherKey)
			break
		}
	}
	return keys
}

// sortUniqueByDate sorts ascending by date. When two records share a date
// the one that appeared later in the payload wins.
func sortUniqueByDate(points []models.TimePoint) []models.TimePoint {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	out := points[:0]
	for _, p := range points {
		if n := len(out); n > 0 && out[n-1].Date.Equal(p.Date) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}

func activeKeys(candidates []string, points []models.TimePoint) []string {
	active := make([]string, 0, len(candidates))
	for _, k := range candidates {
		for _, p := range points {
			if p.Values[k] > 0 {
				active = append(active, k)
				break
			}
		}
	}
	return active
}

func sumKeys(values map[string]int64, keys []string) int64 {
	var total int64
	for _, k := range keys {
		total += values[k]
	}
	return total
}

func contains(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

// Len returns the number of dated points.
func (s *Series) Len() int {
	return len(s.Points)
}

// Empty reports whether there is nothing to draw.
func (s *Series) Empty() bool {
	return len(s.Points) == 0
}

// MaxTotal returns the largest point total, 0 for an empty series.
func (s *Series) MaxTotal() int64 {
	var m int64
	for _, p := range s.Points {
		if p.Total > m {
			m = p.Total
		}
	}
	return m
}

// SumTotals returns the sum of all point totals as rendered.
func (s *Series) SumTotals() int64 {
	var sum int64
	for _, p := range s.Points {
		sum += p.Total
	}
	return sum
}

// Dates returns the distinct dates in ascending order.
func (s *Series) Dates() []time.Time {
	out := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Date
	}
	return out
}

// KeyTotals returns the per-key byte total over the window, independent of
// the cumulative flag.
func (s *Series) KeyTotals() map[string]int64 {
	out := make(map[string]int64, len(s.keyTotals))
	for k, v := range s.keyTotals {
		out[k] = v
	}
	return out
}

// WindowTotal returns the bytes transferred across all active keys in the
// window, independent of the cumulative flag.
func (s *Series) WindowTotal() int64 {
	var sum int64
	for _, v := range s.keyTotals {
		sum += v
	}
	return sum
}

// Label formats a key for this series' view.
func (s *Series) Label(key string) string {
	return format.FormatSeriesLabel(key, s.RegionBreakdown)
}
