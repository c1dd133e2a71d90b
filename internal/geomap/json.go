// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package geomap

import (
	"github.com/goccy/go-json"
)

// LayerView is the serialisable state of a Layer.
type LayerView struct {
	Scheme      string         `json:"scheme"`
	Zoom        float64        `json:"zoom"`
	Center      Point          `json:"center"`
	Selection   Selection      `json:"selection"`
	Band        Band           `json:"radius_band"`
	BytesDomain LogDomain      `json:"bytes_domain"`
	CountDomain *LogDomain     `json:"count_domain,omitempty"`
	Legend      []LegendEntry  `json:"legend"`
	Markers     []MarkerWithUI `json:"markers"`
}

// MarkerWithUI is a marker plus its popup.
type MarkerWithUI struct {
	Marker
	Popup Popup `json:"popup"`
}

// View snapshots the layer. Popups are computed now, so they reflect the
// chart rendered most recently.
func (l *Layer) View() LayerView {
	l.mu.RLock()
	defer l.mu.RUnlock()

	v := LayerView{
		Scheme:      l.scheme,
		Zoom:        l.zoom,
		Center:      l.center,
		Band:        RadiusBand(l.zoom),
		BytesDomain: l.bytesDomain,
		Legend:      append([]LegendEntry(nil), l.legend...),
		Markers:     make([]MarkerWithUI, len(l.markers)),
	}
	if l.scheme == SchemeDatasetCount {
		d := l.countDomain
		v.CountDomain = &d
	}
	if m, ok := l.byCode[l.selected]; ok {
		v.Selection = Selection{Code: m.Code, Name: m.Name}
	} else if l.selected != "" {
		v.Selection = Selection{Code: l.selected}
	}
	for i, m := range l.markers {
		v.Markers[i] = MarkerWithUI{Marker: *m, Popup: l.popupFor(m)}
	}
	return v
}

// MarshalLayer encodes the layer for the browser map. Marker styles use
// Leaflet circleMarker option names.
func (l *Layer) MarshalLayer() ([]byte, error) {
	return json.Marshal(l.View())
}
