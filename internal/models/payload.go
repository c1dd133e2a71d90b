// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package models

import (
	"bytes"
	"math"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// View types reported by the global downloads endpoint.
const (
	ViewTypeDatasets = "datasets"
	ViewTypeRegions  = "regions" // a dataset filter is active and keys are region codes
)

// RawRecord is one day of a time series as received: a "date" field plus one
// numeric field per series key.
//
//	{"date": "2024-05-01", "409": 1048576, "26": 512, "OTHER": 2048}
type RawRecord map[string]interface{}

// DateField is the record key holding the calendar date.
const DateField = "date"

// Date returns the raw date string of the record.
func (r RawRecord) Date() (string, bool) {
	s, ok := r[DateField].(string)
	return s, ok
}

// Value returns the byte count stored under key. Missing, non-numeric and
// non-finite values read as zero.
func (r RawRecord) Value(key string) int64 {
	switch v := r[key].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return int64(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return int64(f)
		}
	case int64:
		return v
	case int:
		return int64(v)
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// Clone returns a shallow copy; record values are immutable scalars.
func (r RawRecord) Clone() RawRecord {
	out := make(RawRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ChartPayload is the response of the global and region download endpoints.
type ChartPayload struct {
	TimeSeries    []RawRecord      `json:"time_series"`
	TopDatasets   []string         `json:"top_datasets"`             // candidate series keys, ordered by lifetime total
	DatasetTotals map[string]int64 `json:"dataset_totals,omitempty"` // lifetime totals of the candidate keys
	RegionCode    string           `json:"region_code,omitempty"`    // set on region-scoped payloads
	RegionName    string           `json:"region_name,omitempty"`
	ViewType      string           `json:"view_type,omitempty"`
}

// IsRegionScoped reports whether the payload describes a single region.
func (p *ChartPayload) IsRegionScoped() bool {
	return p != nil && p.RegionCode != ""
}

// IsRegionBreakdown reports whether the series keys are region codes.
func (p *ChartPayload) IsRegionBreakdown() bool {
	return p != nil && p.ViewType == ViewTypeRegions
}

// Empty reports whether there is nothing to plot.
func (p *ChartPayload) Empty() bool {
	return p == nil || len(p.TimeSeries) == 0
}

// DecodeChartPayload decodes an upstream chart payload. Numbers are kept as
// json.Number so byte counts above 2^53 survive.
func DecodeChartPayload(data []byte) (*ChartPayload, error) {
	var p ChartPayload
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// TimePoint is one parsed calendar day of a series. Values holds one entry per
// rendered series key; Total is the sum of those values.
type TimePoint struct {
	Date   time.Time        `json:"date"`
	Values map[string]int64 `json:"values"`
	Total  int64            `json:"total"`
}
