// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package geomap

import (
	"errors"
	"fmt"
	"math"

	"github.com/tomtom215/dandimap/internal/format"
)

// ErrUnknownRegion is returned when selecting a code with no marker.
var ErrUnknownRegion = errors.New("geomap: no marker for region")

// Selection is the selection state. An empty Code means Unselected.
type Selection struct {
	Code string `json:"code,omitempty"`
	Name string `json:"name,omitempty"`
}

// Selected reports whether a region is selected.
func (s Selection) Selected() bool { return s.Code != "" }

// Select highlights code's marker, restores the previous selection to its
// base style, centres the view on the region at no less than the minimum
// selection zoom and notifies listeners.
func (l *Layer) Select(code string) (Selection, error) {
	l.mu.Lock()
	m, ok := l.byCode[code]
	if !ok {
		l.mu.Unlock()
		return Selection{}, fmt.Errorf("%w: %s", ErrUnknownRegion, code)
	}
	if prev, ok := l.byCode[l.selected]; ok && prev != m {
		prev.restyle(false)
	}
	m.restyle(true)
	l.selected = code
	l.center = m.Position
	if z := math.Max(l.zoom, l.minSelectZoom); z != l.zoom {
		l.setZoomLocked(z)
	}
	sel := Selection{Code: m.Code, Name: m.Name}
	listeners := l.listeners
	l.mu.Unlock()

	for _, sl := range listeners {
		sl.RegionSelected(sel.Code, sel.Name)
	}
	return sel, nil
}

// Reset returns to Unselected and restores the base style of the previous
// selection.
func (l *Layer) Reset() {
	l.mu.Lock()
	if prev, ok := l.byCode[l.selected]; ok {
		prev.restyle(false)
	}
	l.selected = ""
	listeners := l.listeners
	l.mu.Unlock()

	for _, sl := range listeners {
		sl.RegionSelected("", "")
	}
}

// Selection returns the current selection.
func (l *Layer) Selection() Selection {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.selected == "" {
		return Selection{}
	}
	sel := Selection{Code: l.selected}
	if m, ok := l.byCode[l.selected]; ok {
		sel.Name = m.Name
	}
	return sel
}

// Popup is the summary shown for a marker.
type Popup struct {
	Title        string `json:"title"`
	Code         string `json:"code"`
	Country      string `json:"country"`
	Total        string `json:"total"`
	TotalBytes   int64  `json:"total_bytes"`
	DatasetCount *int   `json:"dataset_count,omitempty"` // omitted under a single dataset filter
}

// PopupTotal prefers the total of the rendered chart when it is scoped to
// this region, else the region's own total.
func PopupTotal(src TotalSource, m *Marker) int64 {
	if src != nil {
		if v, ok := src.RegionTotalFromLastChart(m.Code); ok {
			return v
		}
	}
	return m.TotalBytes
}

// popupFor builds m's popup. Caller holds l.mu.
func (l *Layer) popupFor(m *Marker) Popup {
	total := PopupTotal(l.totals, m)
	p := Popup{
		Title:      m.Name,
		Code:       m.Code,
		Country:    m.Country,
		Total:      format.FormatBytes(total),
		TotalBytes: total,
	}
	if l.totals == nil || !l.totals.SingleDatasetFilter() {
		n := m.DatasetCount
		p.DatasetCount = &n
	}
	return p
}

// Popup returns the popup of code's marker.
func (l *Layer) Popup(code string) (Popup, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	m, ok := l.byCode[code]
	if !ok {
		return Popup{}, false
	}
	return l.popupFor(m), true
}
