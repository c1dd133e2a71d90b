// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package chart

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrEmptyScene is returned when an image export is asked for the
// placeholder scene.
var ErrEmptyScene = errors.New("chart: nothing to draw")

// hiddenAlpha is HiddenOpacity on a 0-255 alpha channel.
const hiddenAlpha = uint8(HiddenOpacity * 255)

// WritePNG writes sc as a PNG stacked bar chart.
func WritePNG(w io.Writer, sc *Scene) error {
	if sc.Empty || len(sc.Bars) == 0 {
		return ErrEmptyScene
	}

	plotWidth := float64(sc.Width) - sc.Margin.Left - sc.Margin.Right
	barWidth := int(plotWidth / float64(len(sc.Bars)) * 0.9)
	if barWidth < 1 {
		barWidth = 1
	}

	bars := make([]gochart.StackedBar, 0, len(sc.Bars))
	for _, b := range sc.Bars {
		values := make([]gochart.Value, 0, len(b.Segments))
		for _, s := range b.Segments {
			fill := colorFromHex(s.Color)
			if s.Opacity < VisibleOpacity {
				fill = fill.WithAlpha(hiddenAlpha)
			}
			values = append(values, gochart.Value{
				Label: s.Label,
				Value: float64(s.Value),
				Style: gochart.Style{FillColor: fill, StrokeColor: fill, StrokeWidth: 0},
			})
		}
		bars = append(bars, gochart.StackedBar{Name: b.Date, Width: barWidth, Values: values})
	}

	ch := gochart.StackedBarChart{
		Title:      sc.Title,
		Width:      sc.Width,
		Height:     sc.Height,
		BarSpacing: 1,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis:      gochart.Style{FontSize: 7, TextRotationDegrees: 45},
		YAxis:      gochart.Style{FontSize: 8},
		Bars:       bars,
	}

	var buf bytes.Buffer
	if err := ch.Render(gochart.PNG, &buf); err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	return writeDoc(w, buf.String(), "png")
}

func colorFromHex(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}
