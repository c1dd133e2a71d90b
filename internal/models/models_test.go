// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package models

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestDecodeChartPayload(t *testing.T) {
	t.Parallel()

	body := []byte(`{
		"time_series": [
			{"date": "2024-05-02", "409": 9007199254740993, "OTHER": 10},
			{"date": "2024-05-01", "409": 1.0e3}
		],
		"top_datasets": ["409"],
		"dataset_totals": {"409": 9007199254741993},
		"view_type": "datasets"
	}`)

	p, err := DecodeChartPayload(body)
	if err != nil {
		t.Fatalf("DecodeChartPayload: %v", err)
	}
	if len(p.TimeSeries) != 2 {
		t.Fatalf("expected 2 records, got %d", len(p.TimeSeries))
	}
	if got := p.TimeSeries[0].Value("409"); got != 9007199254740993 {
		t.Errorf("expected exact large integer, got %d", got)
	}
	if got := p.TimeSeries[1].Value("409"); got != 1000 {
		t.Errorf("expected float number to read as 1000, got %d", got)
	}
	if got := p.TimeSeries[1].Value("OTHER"); got != 0 {
		t.Errorf("expected missing key to read as 0, got %d", got)
	}
	if p.IsRegionScoped() || p.IsRegionBreakdown() {
		t.Error("expected global dataset payload")
	}
}

func TestRawRecordValueTypes(t *testing.T) {
	t.Parallel()

	r := RawRecord{
		"date": "2024-01-01",
		"a":    float64(12),
		"b":    json.Number("34"),
		"c":    "56",
		"d":    true,
		"e":    int64(7),
	}
	want := map[string]int64{"a": 12, "b": 34, "c": 56, "d": 0, "e": 7, "missing": 0}
	for k, v := range want {
		if got := r.Value(k); got != v {
			t.Errorf("Value(%q) = %d, want %d", k, got, v)
		}
	}

	if d, ok := r.Date(); !ok || d != "2024-01-01" {
		t.Errorf("Date() = %q, %v", d, ok)
	}

	c := r.Clone()
	c["a"] = float64(99)
	if r.Value("a") != 12 {
		t.Error("Clone must not alias the original")
	}
}

func TestFallbackMetadata(t *testing.T) {
	t.Parallel()

	m := FallbackMetadata("000409", 42)
	if m.Name != "Dataset 000409" {
		t.Errorf("unexpected name %q", m.Name)
	}
	if m.LandingURL != "https://dandiarchive.org/dandiset/000409/draft" {
		t.Errorf("unexpected landing url %q", m.LandingURL)
	}
	if m.Version != DraftVersion || !m.Fallback || m.TotalBytes != 42 {
		t.Errorf("unexpected fallback metadata %+v", m)
	}
}

func TestRegionHasCoordinates(t *testing.T) {
	t.Parallel()

	if (&Region{Code: "GitHub"}).HasCoordinates() {
		t.Error("0,0 should count as missing coordinates")
	}
	if !(&Region{Latitude: 0, Longitude: 7.75}).HasCoordinates() {
		t.Error("expected coordinates present")
	}
}
