// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

// Package geomap turns region aggregates into styled circle markers for the
// browser map: log-scaled, zoom-aware radii, fixed-threshold colours and a
// single-selection state machine.
package geomap

import (
	"sort"
	"sync"

	"github.com/tomtom215/dandimap/internal/logging"
	"github.com/tomtom215/dandimap/internal/metrics"
	"github.com/tomtom215/dandimap/internal/models"
	"github.com/tomtom215/dandimap/internal/regions"
)

// Marker outline styles.
const (
	BaseWeight     = 1.0
	SelectedWeight = 3.0
	SelectedStroke = "#000"
	MarkerOpacity  = 0.9
)

// View defaults.
const (
	DefaultZoom    = 2.0
	DefaultMinZoom = 5.0
	DefaultScheme  = SchemeVolume
)

// Point is a map position.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Style is a Leaflet circle marker style.
type Style struct {
	Radius      float64 `json:"radius"`
	Color       string  `json:"color"`
	Weight      float64 `json:"weight"`
	Opacity     float64 `json:"opacity"`
	FillColor   string  `json:"fillColor"`
	FillOpacity float64 `json:"fillOpacity"`
}

// Marker is one drawn region.
type Marker struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Country      string `json:"country"`
	Position     Point  `json:"position"`
	TotalBytes   int64  `json:"total_bytes"`
	DatasetCount int    `json:"dataset_count"`
	Category     string `json:"category"`
	Selected     bool   `json:"selected"`
	Style        Style  `json:"style"`

	colors   ColorPair
	logBytes float64
}

// baseStyle is the unselected look of m at radius r.
func (m *Marker) baseStyle(r float64) Style {
	return Style{
		Radius:      r,
		Color:       m.colors.Stroke,
		Weight:      BaseWeight,
		Opacity:     MarkerOpacity,
		FillColor:   m.colors.Fill,
		FillOpacity: FillOpacity(m.DatasetCount),
	}
}

// restyle applies the base or highlighted look, keeping the radius.
func (m *Marker) restyle(selected bool) {
	m.Selected = selected
	m.Style = m.baseStyle(m.Style.Radius)
	if selected {
		m.Style.Color = SelectedStroke
		m.Style.Weight = SelectedWeight
	}
}

// SelectionListener is told when the selected region changes. An empty code
// means the selection was reset.
type SelectionListener interface {
	RegionSelected(code, name string)
}

// SelectionListenerFunc adapts a function to SelectionListener.
type SelectionListenerFunc func(code, name string)

// RegionSelected calls f.
func (f SelectionListenerFunc) RegionSelected(code, name string) { f(code, name) }

// TotalSource supplies popup figures from the rendered chart.
type TotalSource interface {
	RegionTotalFromLastChart(code string) (int64, bool)
	SingleDatasetFilter() bool
}

// Config is the initial map view.
type Config struct {
	Scheme        string
	Zoom          float64
	MinSelectZoom float64
	Center        Point
}

// Layer is the region marker layer and its view.
type Layer struct {
	mu            sync.RWMutex
	scheme        string
	zoom          float64
	minSelectZoom float64
	center        Point
	markers       []*Marker
	byCode        map[string]*Marker
	bytesDomain   LogDomain
	countDomain   LogDomain
	legend        []LegendEntry
	selected      string
	input         []models.Region
	totals        TotalSource
	listeners     []SelectionListener
}

// NewLayer returns an empty Layer. totals may be nil.
func NewLayer(cfg Config, totals TotalSource) *Layer {
	if !ValidScheme(cfg.Scheme) {
		cfg.Scheme = DefaultScheme
	}
	if cfg.Zoom == 0 {
		cfg.Zoom = DefaultZoom
	}
	if cfg.MinSelectZoom == 0 {
		cfg.MinSelectZoom = DefaultMinZoom
	}
	return &Layer{
		scheme:        cfg.Scheme,
		zoom:          cfg.Zoom,
		minSelectZoom: cfg.MinSelectZoom,
		center:        cfg.Center,
		byCode:        make(map[string]*Marker),
		legend:        DefaultLegend(cfg.Scheme),
		totals:        totals,
	}
}

// AddSelectionListener registers l.
func (l *Layer) AddSelectionListener(sl SelectionListener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, sl)
}

// RenderRegions rebuilds every marker from regions. Regions without a
// positive total are skipped, as are regions with no known position.
// Markers are ordered by ascending total so the largest draw on top.
func (l *Layer) RenderRegions(regs []models.Region) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.input = append([]models.Region(nil), regs...)
	l.rebuild()
}

// rebuild lays out l.input. Caller holds l.mu.
func (l *Layer) rebuild() {
	l.markers = nil
	l.byCode = make(map[string]*Marker)
	l.bytesDomain, l.countDomain = LogDomain{}, LogDomain{}

	if len(l.input) == 0 {
		l.legend = DefaultLegend(l.scheme)
		metrics.MapMarkers.Set(0)
		return
	}

	markers := make([]*Marker, 0, len(l.input))
	skipped := 0
	for _, r := range l.input {
		if r.TotalBytes <= 0 {
			continue
		}
		pos, ok := position(r)
		if !ok {
			skipped++
			continue
		}
		markers = append(markers, &Marker{
			Code:         r.Code,
			Name:         displayName(r),
			Country:      r.Country,
			Position:     pos,
			TotalBytes:   r.TotalBytes,
			DatasetCount: r.DatasetCount,
		})
	}
	if skipped > 0 {
		logging.Debug().Int("skipped", skipped).Msg("Regions without a map position were not drawn")
	}
	sort.SliceStable(markers, func(i, j int) bool {
		if markers[i].TotalBytes != markers[j].TotalBytes {
			return markers[i].TotalBytes < markers[j].TotalBytes
		}
		return markers[i].Code < markers[j].Code
	})

	byteVals := make([]float64, len(markers))
	countVals := make([]float64, len(markers))
	for i, m := range markers {
		byteVals[i] = float64(m.TotalBytes)
		countVals[i] = float64(m.DatasetCount)
	}
	l.bytesDomain = logDomain(byteVals)
	if l.scheme == SchemeDatasetCount {
		l.countDomain = logDomain(countVals)
	}

	band := RadiusBand(l.zoom)
	legend := DefaultLegend(l.scheme)
	for _, m := range markers {
		m.logBytes = safeLog(float64(m.TotalBytes))
		m.Category, m.colors = categorize(l.scheme, m.TotalBytes, m.DatasetCount)
		m.Style = m.baseStyle(band.Radius(l.bytesDomain.Fraction(m.logBytes)))
		if m.Code == l.selected {
			m.restyle(true)
		}
		for i := range legend {
			if legend[i].Category == m.Category {
				legend[i].Count++
			}
		}
		l.byCode[m.Code] = m
	}
	l.markers = markers
	l.legend = legend
	metrics.MapMarkers.Set(float64(len(markers)))
}

// position returns upstream coordinates, falling back to the known-region
// table. Service regions have no position.
func position(r models.Region) (Point, bool) {
	if regions.IsService(r.Code) {
		return Point{}, false
	}
	if r.HasCoordinates() {
		return Point{Lat: r.Latitude, Lon: r.Longitude}, true
	}
	if c, ok := regions.Lookup(r.Code); ok {
		return Point{Lat: c.Latitude, Lon: c.Longitude}, true
	}
	return Point{}, false
}

func displayName(r models.Region) string {
	if r.Name != "" {
		return r.Name
	}
	_, name := regions.Split(r.Code)
	return name
}

// SetZoom changes the zoom level and recomputes radii only. Order, colours
// and the log domain are unchanged.
func (l *Layer) SetZoom(zoom float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.setZoomLocked(zoom)
}

func (l *Layer) setZoomLocked(zoom float64) {
	l.zoom = zoom
	band := RadiusBand(zoom)
	for _, m := range l.markers {
		m.Style.Radius = band.Radius(l.bytesDomain.Fraction(m.logBytes))
	}
}

// SetScheme switches the colour scheme and rebuilds the markers from the
// last input.
func (l *Layer) SetScheme(scheme string) bool {
	if !ValidScheme(scheme) {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if scheme != l.scheme {
		l.scheme = scheme
		l.rebuild()
	}
	return true
}

// Scheme returns the active colour scheme.
func (l *Layer) Scheme() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.scheme
}

// Zoom returns the current zoom level.
func (l *Layer) Zoom() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.zoom
}

// Center returns the current view centre.
func (l *Layer) Center() Point {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.center
}

// Legend returns the legend of the current markers.
func (l *Layer) Legend() []LegendEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]LegendEntry(nil), l.legend...)
}

// Markers returns copies of the markers in draw order.
func (l *Layer) Markers() []Marker {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Marker, len(l.markers))
	for i, m := range l.markers {
		out[i] = *m
	}
	return out
}

// Marker returns a copy of the marker for code.
func (l *Layer) Marker(code string) (Marker, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	m, ok := l.byCode[code]
	if !ok {
		return Marker{}, false
	}
	return *m, true
}

// Domains returns the byte and dataset count log domains.
func (l *Layer) Domains() (bytes, counts LogDomain) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.bytesDomain, l.countDomain
}
