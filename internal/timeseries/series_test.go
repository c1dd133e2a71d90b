// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package timeseries

import (
	"reflect"
	"testing"

	"github.com/tomtom215/dandimap/internal/format"
	"github.com/tomtom215/dandimap/internal/models"
)

func rec(date string, kv ...interface{}) models.RawRecord {
	r := models.RawRecord{"date": date}
	for i := 0; i+1 < len(kv); i += 2 {
		r[kv[i].(string)] = kv[i+1]
	}
	return r
}

func samplePayload() *models.ChartPayload {
	return &models.ChartPayload{
		TimeSeries: []models.RawRecord{
			rec("2024-05-03", "409", float64(30), "26", float64(0), "OTHER", float64(5)),
			rec("2024-05-01", "409", float64(10), "26", float64(0)),
			rec("not-a-date", "409", float64(1000)),
			rec("2024-05-02", "409", float64(20), "26", float64(0), "OTHER", float64(1)),
		},
		TopDatasets: []string{"409", "26"},
	}
}

func TestBuildActiveSeriesDropsZeroKeys(t *testing.T) {
	t.Parallel()

	s := BuildActiveSeries(samplePayload(), Options{})

	if !reflect.DeepEqual(s.Candidates, []string{"409", "26", "OTHER"}) {
		t.Errorf("unexpected candidates %v", s.Candidates)
	}
	if !reflect.DeepEqual(s.Active, []string{"409", "OTHER"}) {
		t.Errorf("expected all-zero key 26 to be inactive, got %v", s.Active)
	}
	for _, p := range s.Points {
		if _, ok := p.Values["26"]; ok {
			t.Errorf("inactive key present on %s", format.FormatDate(p.Date))
		}
	}
	if s.Dropped != 1 {
		t.Errorf("expected 1 dropped record, got %d", s.Dropped)
	}
}

func TestBuildActiveSeriesSortsAndTotals(t *testing.T) {
	t.Parallel()

	s := BuildActiveSeries(samplePayload(), Options{})

	wantDates := []string{"2024-05-01", "2024-05-02", "2024-05-03"}
	wantTotals := []int64{10, 21, 35}
	if s.Len() != len(wantDates) {
		t.Fatalf("expected %d points, got %d", len(wantDates), s.Len())
	}
	for i, p := range s.Points {
		if format.FormatDate(p.Date) != wantDates[i] {
			t.Errorf("point %d date = %s, want %s", i, format.FormatDate(p.Date), wantDates[i])
		}
		if p.Total != wantTotals[i] {
			t.Errorf("point %d total = %d, want %d", i, p.Total, wantTotals[i])
		}
	}
	if s.MaxTotal() != 35 {
		t.Errorf("MaxTotal = %d, want 35", s.MaxTotal())
	}
}

func TestTotalsEqualSumOfActiveKeys(t *testing.T) {
	t.Parallel()

	s := BuildActiveSeries(samplePayload(), Options{})

	var byKey int64
	for _, k := range s.Active {
		for _, p := range s.Points {
			byKey += p.Values[k]
		}
	}
	if s.SumTotals() != byKey {
		t.Errorf("sum of totals %d != sum over active keys %d", s.SumTotals(), byKey)
	}
	if s.WindowTotal() != byKey {
		t.Errorf("WindowTotal %d != %d", s.WindowTotal(), byKey)
	}
}

func TestBuildActiveSeriesDoesNotMutatePayload(t *testing.T) {
	t.Parallel()

	p := samplePayload()
	before := len(p.TimeSeries)
	first := p.TimeSeries[0].Clone()

	BuildActiveSeries(p, Options{Cumulative: true})

	if len(p.TimeSeries) != before {
		t.Errorf("payload length changed")
	}
	if !reflect.DeepEqual(first, p.TimeSeries[0]) {
		t.Errorf("payload record mutated: %v", p.TimeSeries[0])
	}
}

func TestOtherOnlyWhenPositive(t *testing.T) {
	t.Parallel()

	p := &models.ChartPayload{
		TimeSeries: []models.RawRecord{
			rec("2024-01-01", "1", float64(5), "OTHER", float64(0)),
		},
		TopDatasets: []string{"OTHER", "1", "1"},
	}
	s := BuildActiveSeries(p, Options{})
	if !reflect.DeepEqual(s.Candidates, []string{"1"}) {
		t.Errorf("expected OTHER excluded and duplicates removed, got %v", s.Candidates)
	}
}

func TestDuplicateDateLaterWins(t *testing.T) {
	t.Parallel()

	p := &models.ChartPayload{
		TimeSeries: []models.RawRecord{
			rec("2024-01-01", "1", float64(5)),
			rec("2024-01-01", "1", float64(7)),
		},
		TopDatasets: []string{"1"},
	}
	s := BuildActiveSeries(p, Options{})
	if s.Len() != 1 || s.Points[0].Total != 7 {
		t.Errorf("expected single point with total 7, got %+v", s.Points)
	}
}

func TestCumulativeMode(t *testing.T) {
	t.Parallel()

	s := BuildActiveSeries(samplePayload(), Options{Cumulative: true})

	want409 := []int64{10, 30, 60}
	wantOther := []int64{0, 1, 6}
	for i, p := range s.Points {
		if p.Values["409"] != want409[i] || p.Values["OTHER"] != wantOther[i] {
			t.Errorf("point %d values = %v", i, p.Values)
		}
		if p.Total != p.Values["409"]+p.Values["OTHER"] {
			t.Errorf("point %d total %d is not the sum of running sums", i, p.Total)
		}
	}
	if got := s.KeyTotals()["409"]; got != 60 {
		t.Errorf("KeyTotals independent of cumulative flag, got %d", got)
	}
}

func TestCumulativeIsMonotonicAndNotIdempotent(t *testing.T) {
	t.Parallel()

	base := BuildActiveSeries(samplePayload(), Options{})
	once := Cumulative(base.Points, base.Active)
	for _, k := range base.Active {
		for i := 1; i < len(once); i++ {
			if once[i].Values[k] < once[i-1].Values[k] {
				t.Errorf("key %s decreased at %d", k, i)
			}
		}
	}

	twice := Cumulative(once, base.Active)
	if reflect.DeepEqual(once, twice) {
		t.Error("applying the transform twice should change the values")
	}
	if base.Points[2].Values["409"] != 30 {
		t.Error("Cumulative must not modify its input")
	}
}

func TestEmptyAndNilPayload(t *testing.T) {
	t.Parallel()

	if s := BuildActiveSeries(nil, Options{}); !s.Empty() || s.MaxTotal() != 0 {
		t.Error("nil payload should give an empty series")
	}
	s := BuildActiveSeries(&models.ChartPayload{TopDatasets: []string{"1"}}, Options{})
	if !s.Empty() || len(s.Active) != 0 {
		t.Errorf("expected empty series, got %+v", s)
	}
}

func TestLabelUsesRegionWording(t *testing.T) {
	t.Parallel()

	p := samplePayload()
	p.ViewType = models.ViewTypeRegions
	s := BuildActiveSeries(p, Options{})
	if s.Label("OTHER") != "Other Regions" {
		t.Errorf("expected region wording, got %q", s.Label("OTHER"))
	}
}
