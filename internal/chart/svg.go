// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package chart

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/tomtom215/dandimap/internal/metrics"
)

// WriteSVG writes sc as a standalone SVG document. Every segment carries a
// <title> with its tooltip and data-key for legend toggling in the browser.
func WriteSVG(w io.Writer, sc *Scene) error {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif" font-size="11">`,
		sc.Width, sc.Height, sc.Width, sc.Height)
	b.WriteByte('\n')
	if sc.Title != "" {
		fmt.Fprintf(&b, `<text class="chart-title" x="%.1f" y="%.1f" font-size="15" font-weight="bold">%s</text>`+"\n",
			sc.Margin.Left, sc.Margin.Top/2+5, esc(sc.Title))
	}

	if sc.Empty {
		fmt.Fprintf(&b, `<text class="empty-state" x="%d" y="%d" text-anchor="middle" fill="#666" font-size="14">%s</text>`+"\n",
			sc.Width/2, sc.Height/2, esc(sc.Message))
		b.WriteString("</svg>\n")
		return writeDoc(w, b.String(), "svg")
	}

	writeAxes(&b, sc)
	for _, bar := range sc.Bars {
		fmt.Fprintf(&b, `<g class="bar" data-date="%s">`+"\n", bar.Date)
		for _, s := range bar.Segments {
			if s.Value == 0 {
				continue
			}
			fmt.Fprintf(&b, `<rect data-key="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" opacity="%.1f"><title>%s</title></rect>`+"\n",
				esc(s.Key), bar.X, s.Y, bar.Width, s.Height, s.Color, s.Opacity, esc(s.Tooltip.String()))
		}
		b.WriteString("</g>\n")
	}
	if sc.ShowLegend && sc.LegendArea > 0 {
		writeLegend(&b, sc)
	}
	b.WriteString("</svg>\n")
	return writeDoc(w, b.String(), "svg")
}

func writeAxes(b *strings.Builder, sc *Scene) {
	bottom := float64(sc.Height) - sc.Margin.Bottom
	right := float64(sc.Width) - sc.Margin.Right

	b.WriteString(`<g class="y-axis">` + "\n")
	for _, t := range sc.Ticks {
		fmt.Fprintf(b, `<line x1="%.1f" x2="%.1f" y1="%.2f" y2="%.2f" stroke="#e0e0e0"/>`+"\n", sc.Margin.Left, right, t.Y, t.Y)
		fmt.Fprintf(b, `<text x="%.1f" y="%.2f" text-anchor="end" dominant-baseline="middle">%s</text>`+"\n", sc.Margin.Left-6, t.Y, esc(t.Label))
	}
	b.WriteString("</g>\n")

	fmt.Fprintf(b, `<g class="x-axis"><line x1="%.1f" x2="%.1f" y1="%.2f" y2="%.2f" stroke="#333"/>`+"\n", sc.Margin.Left, right, bottom, bottom)
	every := labelEvery(len(sc.Bars), right-sc.Margin.Left)
	for i, bar := range sc.Bars {
		if i%every != 0 {
			continue
		}
		x := bar.X + bar.Width/2
		fmt.Fprintf(b, `<text x="%.2f" y="%.2f" text-anchor="end" transform="rotate(-45 %.2f %.2f)">%s</text>`+"\n",
			x, bottom+12, x, bottom+12, bar.Date)
	}
	b.WriteString("</g>\n")
}

// labelEvery thins x labels so that they are at least 40px apart.
func labelEvery(n int, width float64) int {
	if n == 0 || width <= 0 {
		return 1
	}
	per := width / float64(n)
	if per >= 40 {
		return 1
	}
	return int(40/per) + 1
}

func writeLegend(b *strings.Builder, sc *Scene) {
	x := float64(sc.Width) - sc.LegendArea
	b.WriteString(`<g class="legend">` + "\n")
	for i, e := range sc.Legend {
		y := sc.Margin.Top + float64(i)*20
		opacity := VisibleOpacity
		if e.Hidden {
			opacity = HiddenOpacity
		}
		fmt.Fprintf(b, `<g class="legend-item" data-key="%s" opacity="%.1f" style="cursor:pointer">`, esc(e.Key), opacity)
		fmt.Fprintf(b, `<rect x="%.1f" y="%.1f" width="12" height="12" fill="%s"/>`, x, y, e.Color)
		fmt.Fprintf(b, `<text x="%.1f" y="%.1f">%s</text></g>`+"\n", x+18, y+10, esc(e.Label))
	}
	b.WriteString("</g>\n")
}

func esc(s string) string {
	return html.EscapeString(s)
}

func writeDoc(w io.Writer, doc, kind string) error {
	if _, err := io.WriteString(w, doc); err != nil {
		return fmt.Errorf("write %s: %w", kind, err)
	}
	metrics.ChartExports.WithLabelValues(kind).Inc()
	return nil
}
