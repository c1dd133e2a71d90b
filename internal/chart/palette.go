// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package chart

// Palette is an ordered list of CSS hex colours.
type Palette []string

// DefaultPalette is the ten-colour categorical palette used for series.
var DefaultPalette = Palette{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// ColorFor returns the colour of key by its position in keys, cycling when
// there are more keys than colours. Keys not in the list get the last colour
// of the palette.
func (p Palette) ColorFor(keys []string, key string) string {
	if len(p) == 0 {
		return "#000000"
	}
	for i, k := range keys {
		if k == key {
			return p[i%len(p)]
		}
	}
	return p[len(p)-1]
}
