// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package chart

import (
	"fmt"
	"math"

	"github.com/tomtom215/dandimap/internal/format"
	"github.com/tomtom215/dandimap/internal/timeseries"
)

// Segment opacities.
const (
	VisibleOpacity = 1.0
	HiddenOpacity  = 0.2
)

// Tooltip labels for the bar total.
const (
	DayTotalLabel        = "Day Total"
	CumulativeTotalLabel = "Cumulative Total"
)

// Margin is the space between the SVG edge and the plot area.
type Margin struct {
	Top, Right, Bottom, Left float64
}

// DefaultMargin leaves room for y tick labels and the x axis.
var DefaultMargin = Margin{Top: 40, Right: 20, Bottom: 50, Left: 80}

// legendWidth is reserved on the right when a legend is drawn.
const legendWidth = 170

// minPlotWidth is the plot width the legend gives up its space to keep.
const minPlotWidth = 100

// Tooltip is the hover text of one segment.
type Tooltip struct {
	Date       string `json:"date"`
	Label      string `json:"label"`
	Value      string `json:"value"`
	TotalLabel string `json:"total_label"`
	Total      string `json:"total"`
}

// String renders the tooltip as plain lines.
func (t Tooltip) String() string {
	return fmt.Sprintf("%s\n%s: %s\n%s: %s", t.Date, t.Label, t.Value, t.TotalLabel, t.Total)
}

// Segment is one key's slice of a bar.
type Segment struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Color   string  `json:"color"`
	Value   int64   `json:"value"`
	Y       float64 `json:"y"`
	Height  float64 `json:"height"`
	Opacity float64 `json:"opacity"`
	Tooltip Tooltip `json:"tooltip"`
}

// Bar is the stacked column of one date.
type Bar struct {
	Date     string    `json:"date"`
	X        float64   `json:"x"`
	Width    float64   `json:"width"`
	Total    int64     `json:"total"`
	Segments []Segment `json:"segments"`
}

// LegendEntry is one toggleable key.
type LegendEntry struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Color  string `json:"color"`
	Hidden bool   `json:"hidden"`
}

// Tick is one y axis tick.
type Tick struct {
	Y     float64 `json:"y"`
	Label string  `json:"label"`
}

// Scene is a fully laid out chart. Scenes are immutable once published;
// legend toggles produce a new scene that shares the layout.
type Scene struct {
	Selector   string        `json:"selector"`
	Title      string        `json:"title"`
	Width      int           `json:"width"`
	Height     int           `json:"height"`
	Margin     Margin        `json:"margin"`
	Empty      bool          `json:"empty"`
	Message    string        `json:"message,omitempty"`
	Cumulative bool          `json:"cumulative"`
	Keys       []string      `json:"keys"`
	X          BandScale     `json:"x"`
	Y          LinearScale   `json:"y"`
	Ticks      []Tick        `json:"ticks"`
	Bars       []Bar         `json:"bars"`
	ShowLegend bool          `json:"show_legend"`
	LegendArea float64       `json:"legend_area,omitempty"`
	Legend     []LegendEntry `json:"legend,omitempty"`
	Dropped    int           `json:"dropped,omitempty"`
}

// ShowLegend reports whether a legend is drawn: more than one active key
// and either no single dataset filter or a region breakdown view.
func ShowLegend(s *timeseries.Series, singleDataset bool) bool {
	if len(s.Active) <= 1 {
		return false
	}
	return !singleDataset || s.RegionBreakdown
}

// stackOrder returns the active keys in candidate order with OTHER last.
func stackOrder(s *timeseries.Series) []string {
	keys := make([]string, 0, len(s.Active))
	other := false
	for _, k := range s.Active {
		if k == format.OtherKey {
			other = true
			continue
		}
		keys = append(keys, k)
	}
	if other {
		keys = append(keys, format.OtherKey)
	}
	return keys
}

// layout builds the scene of a non-empty series.
func layout(s *timeseries.Series, title string, width, height int, singleDataset bool, palette Palette, hidden map[string]bool) *Scene {
	sc := &Scene{
		Title:      title,
		Width:      width,
		Height:     height,
		Margin:     DefaultMargin,
		Cumulative: s.Cumulative,
		Keys:       stackOrder(s),
		ShowLegend: ShowLegend(s, singleDataset),
		Dropped:    s.Dropped,
	}
	if sc.ShowLegend {
		sc.LegendArea = legendArea(width, sc.Margin)
		sc.Margin.Right += sc.LegendArea
	}

	// Ranges never invert: a mount smaller than its margins gets an empty
	// plot, not negative bars.
	plotRight := math.Max(float64(width)-sc.Margin.Right, sc.Margin.Left)
	plotBottom := math.Max(float64(height)-sc.Margin.Bottom, sc.Margin.Top)
	sc.X = BandScale{N: s.Len(), RangeStart: sc.Margin.Left, RangeEnd: plotRight, Padding: 0.1}
	sc.Y = LinearScale{Max: float64(s.MaxTotal()), RangeStart: plotBottom, RangeEnd: sc.Margin.Top}

	for _, v := range sc.Y.Ticks(5) {
		sc.Ticks = append(sc.Ticks, Tick{Y: sc.Y.Scale(v), Label: format.FormatBytes(int64(v))})
	}

	totalLabel := DayTotalLabel
	if s.Cumulative {
		totalLabel = CumulativeTotalLabel
	}

	colors := make(map[string]string, len(sc.Keys))
	labels := make(map[string]string, len(sc.Keys))
	for _, k := range sc.Keys {
		colors[k] = palette.ColorFor(s.Candidates, k)
		labels[k] = s.Label(k)
	}

	sc.Bars = make([]Bar, 0, s.Len())
	for i, p := range s.Points {
		date := format.FormatDate(p.Date)
		bar := Bar{
			Date:     date,
			X:        sc.X.Position(i),
			Width:    sc.X.Bandwidth(),
			Total:    p.Total,
			Segments: make([]Segment, 0, len(sc.Keys)),
		}
		var base int64
		for _, k := range sc.Keys {
			v := p.Values[k]
			top := sc.Y.Scale(float64(base + v))
			seg := Segment{
				Key:     k,
				Label:   labels[k],
				Color:   colors[k],
				Value:   v,
				Y:       top,
				Height:  sc.Y.Scale(float64(base)) - top,
				Opacity: VisibleOpacity,
				Tooltip: Tooltip{
					Date:       date,
					Label:      labels[k],
					Value:      format.FormatBytes(v),
					TotalLabel: totalLabel,
					Total:      format.FormatBytes(p.Total),
				},
			}
			if hidden[k] {
				seg.Opacity = HiddenOpacity
			}
			bar.Segments = append(bar.Segments, seg)
			base += v
		}
		sc.Bars = append(sc.Bars, bar)
	}

	if sc.ShowLegend {
		for _, k := range sc.Keys {
			sc.Legend = append(sc.Legend, LegendEntry{Key: k, Label: labels[k], Color: colors[k], Hidden: hidden[k]})
		}
	}
	return sc
}

// legendArea is the legend reserve for a mount of the given width. The
// reserve shrinks, down to nothing, before the plot drops below
// minPlotWidth.
func legendArea(width int, m Margin) float64 {
	spare := float64(width) - m.Left - m.Right - minPlotWidth
	return math.Max(0, math.Min(legendWidth, spare))
}

// emptyScene is the placeholder drawn when there is nothing to plot.
func emptyScene(title, message string, width, height int) *Scene {
	return &Scene{
		Title:   title,
		Width:   width,
		Height:  height,
		Margin:  DefaultMargin,
		Empty:   true,
		Message: message,
	}
}

// withKeyOpacity returns a copy of sc with key's segments and legend entry
// restyled. Positions and scales are shared with sc.
func (sc *Scene) withKeyOpacity(key string, hidden bool) *Scene {
	opacity := VisibleOpacity
	if hidden {
		opacity = HiddenOpacity
	}
	out := *sc
	out.Bars = make([]Bar, len(sc.Bars))
	for i, b := range sc.Bars {
		b.Segments = append([]Segment(nil), b.Segments...)
		for j := range b.Segments {
			if b.Segments[j].Key == key {
				b.Segments[j].Opacity = opacity
			}
		}
		out.Bars[i] = b
	}
	out.Legend = append([]LegendEntry(nil), sc.Legend...)
	for i := range out.Legend {
		if out.Legend[i].Key == key {
			out.Legend[i].Hidden = hidden
		}
	}
	return &out
}

// HasKey reports whether key is stacked in the scene.
func (sc *Scene) HasKey(key string) bool {
	for _, k := range sc.Keys {
		if k == key {
			return true
		}
	}
	return false
}
