// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package geomap

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/dandimap/internal/models"
)

func sampleRegions() []models.Region {
	return []models.Region{
		{Code: "US/Ohio", Name: "Ohio", Country: "US", Latitude: 40.4, Longitude: -82.9, TotalBytes: 20_000_000_000, DatasetCount: 40},
		{Code: "FR/Grand Est", Country: "FR", TotalBytes: 5_000_000, DatasetCount: 1},
		{Code: "DE/Berlin", Name: "Berlin", Country: "DE", Latitude: 52.5, Longitude: 13.4, TotalBytes: 50_000_000, DatasetCount: 3},
		{Code: "GitHub", Name: "GitHub", TotalBytes: 1 << 30, DatasetCount: 2},
		{Code: "JP/Tokyo", Name: "Tokyo", Country: "JP", Latitude: 35.7, Longitude: 139.7, TotalBytes: 0, DatasetCount: 0},
	}
}

type fakeTotals struct {
	code   string
	total  int64
	single bool
}

func (f fakeTotals) RegionTotalFromLastChart(code string) (int64, bool) {
	if code == f.code {
		return f.total, true
	}
	return 0, false
}

func (f fakeTotals) SingleDatasetFilter() bool { return f.single }

func TestVolumeCategories(t *testing.T) {
	t.Parallel()

	in := []int64{5_000_000, 50_000_000, 20_000_000_000, 20 << 40}
	want := []string{CategoryLow, CategoryMedium, CategoryHigh, CategoryVeryHigh}
	for i, b := range in {
		if got := VolumeCategory(b); got != want[i] {
			t.Errorf("VolumeCategory(%d) = %s, want %s", b, got, want[i])
		}
	}
	if VolumeCategory(ThresholdLow) != CategoryLow {
		t.Error("thresholds are inclusive")
	}
}

func TestCountCategories(t *testing.T) {
	t.Parallel()

	tests := map[int]string{
		0: CategorySingle, 1: CategorySingle, 2: CategoryFew, 10: CategoryFew,
		11: CategoryMany, 99: CategoryMany, 100: CategoryVeryMany, 5000: CategoryVeryMany,
	}
	for n, want := range tests {
		if got := CountCategory(n); got != want {
			t.Errorf("CountCategory(%d) = %s, want %s", n, got, want)
		}
	}
}

func TestFillOpacity(t *testing.T) {
	t.Parallel()

	tests := map[int]float64{0: 0.3, 2: 0.4, 10: 0.8, 50: 0.8}
	for n, want := range tests {
		if got := FillOpacity(n); math.Abs(got-want) > 1e-9 {
			t.Errorf("FillOpacity(%d) = %v, want %v", n, got, want)
		}
	}
}

func TestRadiusBand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		zoom     float64
		min, max float64
	}{
		{2, 4, 20},
		{0, 3, 12},
		{6, 8, 40},
		{20, 10, 40},
	}
	for _, tt := range tests {
		b := RadiusBand(tt.zoom)
		if math.Abs(b.Min-tt.min) > 1e-9 || math.Abs(b.Max-tt.max) > 1e-9 {
			t.Errorf("RadiusBand(%v) = %+v, want [%v, %v]", tt.zoom, b, tt.min, tt.max)
		}
	}
}

func TestRenderRegionsFiltersSortsAndFills(t *testing.T) {
	t.Parallel()

	l := NewLayer(Config{}, nil)
	l.RenderRegions(sampleRegions())
	ms := l.Markers()

	codes := make([]string, len(ms))
	for i, m := range ms {
		codes[i] = m.Code
	}
	want := "FR/Grand Est,DE/Berlin,US/Ohio"
	if strings.Join(codes, ",") != want {
		t.Fatalf("markers = %v, want %s (zero totals and services dropped, ascending)", codes, want)
	}

	fr := ms[0]
	if fr.Position.Lat != 48.580002 || fr.Name != "Grand Est" {
		t.Errorf("missing coordinates should come from the known table: %+v", fr)
	}
	if fr.Style.Radius != 4 || ms[2].Style.Radius != 20 {
		t.Errorf("radii should span the band: %v .. %v", fr.Style.Radius, ms[2].Style.Radius)
	}
	if ms[1].Style.Radius <= 4 || ms[1].Style.Radius >= 20 {
		t.Errorf("middle radius %v outside band", ms[1].Style.Radius)
	}
	if ms[2].Category != CategoryHigh || ms[2].Style.FillOpacity != 0.8 {
		t.Errorf("Ohio styled %+v", ms[2])
	}

	legend := l.Legend()
	if legend[0].Count != 1 || legend[1].Count != 1 || legend[2].Count != 1 || legend[3].Count != 0 {
		t.Errorf("legend counts = %+v", legend)
	}
}

func TestSingleRegionUsesZeroFraction(t *testing.T) {
	t.Parallel()

	l := NewLayer(Config{}, nil)
	l.RenderRegions(sampleRegions()[:1])
	if r := l.Markers()[0].Style.Radius; r != 4 {
		t.Errorf("single region radius = %v, want band minimum", r)
	}
}

func TestEmptyRegionsResetLegend(t *testing.T) {
	t.Parallel()

	l := NewLayer(Config{Scheme: SchemeDatasetCount}, nil)
	l.RenderRegions(sampleRegions())
	l.RenderRegions(nil)

	if len(l.Markers()) != 0 {
		t.Error("markers should be cleared")
	}
	legend := l.Legend()
	def := DefaultLegend(SchemeDatasetCount)
	if len(legend) != len(def) {
		t.Fatalf("legend = %+v", legend)
	}
	for i := range def {
		if legend[i] != def[i] {
			t.Errorf("legend[%d] = %+v, want %+v", i, legend[i], def[i])
		}
	}
}

func TestSetZoomOnlyChangesRadii(t *testing.T) {
	t.Parallel()

	l := NewLayer(Config{}, nil)
	l.RenderRegions(sampleRegions())
	before := l.Markers()
	domain, _ := l.Domains()

	l.SetZoom(6)
	after := l.Markers()
	after2, _ := l.Domains()
	if domain != after2 {
		t.Error("zoom must not change the log domain")
	}
	for i := range before {
		if before[i].Code != after[i].Code || before[i].Style.FillColor != after[i].Style.FillColor {
			t.Errorf("zoom changed order or colour at %d", i)
		}
	}
	if after[0].Style.Radius != 8 || after[2].Style.Radius != 40 {
		t.Errorf("radii at zoom 6 = %v .. %v", after[0].Style.Radius, after[2].Style.Radius)
	}
}

func TestSelectionStateMachine(t *testing.T) {
	t.Parallel()

	var events []string
	l := NewLayer(Config{Zoom: 2, MinSelectZoom: 5}, nil)
	l.AddSelectionListener(SelectionListenerFunc(func(code, name string) {
		events = append(events, code+"|"+name)
	}))
	l.RenderRegions(sampleRegions())

	if _, err := l.Select("DE/Berlin"); err != nil {
		t.Fatal(err)
	}
	if l.Zoom() != 5 || l.Center() != (Point{Lat: 52.5, Lon: 13.4}) {
		t.Errorf("view = %v @ %v", l.Center(), l.Zoom())
	}
	berlin, _ := l.Marker("DE/Berlin")
	if berlin.Style.Color != SelectedStroke || berlin.Style.Weight != SelectedWeight {
		t.Errorf("selected style = %+v", berlin.Style)
	}

	if _, err := l.Select("US/Ohio"); err != nil {
		t.Fatal(err)
	}
	berlin, _ = l.Marker("DE/Berlin")
	if berlin.Selected || berlin.Style.Weight != BaseWeight {
		t.Error("previous selection should return to base style")
	}

	l.Reset()
	for _, m := range l.Markers() {
		if m.Selected || m.Style.Weight != BaseWeight || m.Style.Color == SelectedStroke {
			t.Errorf("residual highlight on %s", m.Code)
		}
	}
	if l.Selection().Selected() {
		t.Error("expected Unselected after reset")
	}

	want := []string{"DE/Berlin|Berlin", "US/Ohio|Ohio", "|"}
	if strings.Join(events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestSelectUnknownIsNoTransition(t *testing.T) {
	t.Parallel()

	l := NewLayer(Config{}, nil)
	l.RenderRegions(sampleRegions())
	l.Select("US/Ohio")

	if _, err := l.Select("GitHub"); !errors.Is(err, ErrUnknownRegion) {
		t.Errorf("err = %v", err)
	}
	if l.Selection().Code != "US/Ohio" {
		t.Error("failed select must keep the current selection")
	}
}

func TestZoomNotLoweredBySelect(t *testing.T) {
	t.Parallel()

	l := NewLayer(Config{Zoom: 8}, nil)
	l.RenderRegions(sampleRegions())
	l.Select("US/Ohio")
	if l.Zoom() != 8 {
		t.Errorf("zoom = %v, want 8", l.Zoom())
	}
}

func TestPopupTotals(t *testing.T) {
	t.Parallel()

	l := NewLayer(Config{}, fakeTotals{code: "DE/Berlin", total: 1536, single: true})
	l.RenderRegions(sampleRegions())

	p, ok := l.Popup("DE/Berlin")
	if !ok || p.Total != "1.5 KB" {
		t.Errorf("popup should prefer the chart total: %+v", p)
	}
	if p.DatasetCount != nil {
		t.Error("dataset count is hidden under a single dataset filter")
	}

	p, _ = l.Popup("US/Ohio")
	if p.TotalBytes != 20_000_000_000 {
		t.Errorf("unscoped popup should use the region total, got %d", p.TotalBytes)
	}

	l2 := NewLayer(Config{}, fakeTotals{})
	l2.RenderRegions(sampleRegions())
	p, _ = l2.Popup("US/Ohio")
	if p.DatasetCount == nil || *p.DatasetCount != 40 {
		t.Error("dataset count shown without a dataset filter")
	}
}

func TestMarshalLayer(t *testing.T) {
	t.Parallel()

	l := NewLayer(Config{Scheme: SchemeDatasetCount}, nil)
	l.RenderRegions(sampleRegions())
	data, err := l.MarshalLayer()
	if err != nil {
		t.Fatal(err)
	}

	var v struct {
		Scheme      string `json:"scheme"`
		CountDomain *struct {
			Max float64 `json:"max"`
		} `json:"count_domain"`
		Markers []struct {
			Code  string `json:"code"`
			Style struct {
				FillColor string `json:"fillColor"`
			} `json:"style"`
			Popup struct {
				Title string `json:"title"`
			} `json:"popup"`
		} `json:"markers"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatal(err)
	}
	if v.Scheme != SchemeDatasetCount || v.CountDomain == nil || math.Abs(v.CountDomain.Max-math.Log(40)) > 1e-9 {
		t.Errorf("layer header = %+v", v)
	}
	if len(v.Markers) != 3 || v.Markers[2].Popup.Title != "Ohio" || v.Markers[2].Style.FillColor == "" {
		t.Errorf("markers = %+v", v.Markers)
	}
}

func TestSetSchemeRecolors(t *testing.T) {
	t.Parallel()

	l := NewLayer(Config{}, nil)
	l.RenderRegions(sampleRegions())
	if l.SetScheme("rainbow") {
		t.Error("unknown scheme accepted")
	}
	l.SetScheme(SchemeDatasetCount)
	m, _ := l.Marker("US/Ohio")
	if m.Category != CategoryMany {
		t.Errorf("category after switch = %s", m.Category)
	}
}
