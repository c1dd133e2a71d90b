// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package chart

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// stackName groups every series into one stack.
const stackName = "downloads"

// buildBar converts sc into an ECharts stacked bar. Keys hidden in the
// scene start deselected in the legend.
func buildBar(sc *Scene) *charts.Bar {
	bar := charts.NewBar()

	title := opts.Title{Title: sc.Title}
	if sc.Empty {
		title.Subtitle = sc.Message
	}

	legend := opts.Legend{
		Show:   opts.Bool(sc.ShowLegend),
		Right:  "10",
		Orient: "vertical",
	}
	if sc.ShowLegend {
		legend.Selected = make(map[string]bool, len(sc.Legend))
		for _, e := range sc.Legend {
			legend.Selected[e.Label] = !e.Hidden
		}
	}

	grid := opts.Grid{Left: "80", Bottom: "60"}
	if sc.ShowLegend {
		grid.Right = "200"
	}

	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  fmt.Sprintf("%dpx", sc.Width),
			Height: fmt.Sprintf("%dpx", sc.Height),
		}),
		charts.WithTitleOpts(title),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(legend),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			AxisLabel: &opts.AxisLabel{Rotate: 45},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "Bytes",
			Type: "value",
		}),
		charts.WithGridOpts(grid),
	)

	if sc.Empty {
		bar.SetXAxis([]string{})
		return bar
	}

	dates := make([]string, len(sc.Bars))
	for i, b := range sc.Bars {
		dates[i] = b.Date
	}
	bar.SetXAxis(dates)

	for ki, key := range sc.Keys {
		data := make([]opts.BarData, len(sc.Bars))
		var label, color string
		for i, b := range sc.Bars {
			seg := b.Segments[ki]
			label, color = seg.Label, seg.Color
			data[i] = opts.BarData{Name: b.Date, Value: seg.Value}
		}
		if label == "" {
			label = key
		}
		bar.AddSeries(label, data,
			charts.WithBarChartOpts(opts.BarChart{Stack: stackName}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
		)
	}
	return bar
}

// WriteHTML writes sc as an interactive ECharts page.
func WriteHTML(w io.Writer, sc *Scene) error {
	page := components.NewPage()
	page.PageTitle = sc.Title
	if page.PageTitle == "" {
		page.PageTitle = "Downloads"
	}
	page.AddCharts(buildBar(sc))

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("render echarts page: %w", err)
	}
	return writeDoc(w, buf.String(), "html")
}
