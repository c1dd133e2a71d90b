// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package geomap

// Colour schemes.
const (
	SchemeVolume       = "volume"
	SchemeDatasetCount = "dataset_count"
)

// Volume thresholds, in bytes, base 1024 like every byte figure shown.
const (
	ThresholdLow    int64 = 10 << 20 // 10 MB
	ThresholdMedium int64 = 10 << 30 // 10 GB
	ThresholdHigh   int64 = 10 << 40 // 10 TB
)

// Category names.
const (
	CategoryLow      = "low"
	CategoryMedium   = "medium"
	CategoryHigh     = "high"
	CategoryVeryHigh = "very-high"

	CategorySingle   = "single"
	CategoryFew      = "few"
	CategoryMany     = "many"
	CategoryVeryMany = "very-many"
)

// ColorPair is a marker's fill and outline colour.
type ColorPair struct {
	Fill   string `json:"fill"`
	Stroke string `json:"stroke"`
}

type category struct {
	name  string
	label string
	color ColorPair
}

var volumeCategories = []category{
	{CategoryLow, "Up to 10 MB", ColorPair{"#74c476", "#31a354"}},
	{CategoryMedium, "10 MB to 10 GB", ColorPair{"#fd8d3c", "#e6550d"}},
	{CategoryHigh, "10 GB to 10 TB", ColorPair{"#e34a33", "#b30000"}},
	{CategoryVeryHigh, "Over 10 TB", ColorPair{"#7a0177", "#49006a"}},
}

var countCategories = []category{
	{CategorySingle, "1 dataset", ColorPair{"#9ecae1", "#3182bd"}},
	{CategoryFew, "2-10 datasets", ColorPair{"#6baed6", "#2171b5"}},
	{CategoryMany, "11-99 datasets", ColorPair{"#4292c6", "#08519c"}},
	{CategoryVeryMany, "100+ datasets", ColorPair{"#08306b", "#041f4a"}},
}

// ValidScheme reports whether scheme is known.
func ValidScheme(scheme string) bool {
	return scheme == SchemeVolume || scheme == SchemeDatasetCount
}

// VolumeCategory buckets a byte total by the fixed thresholds.
func VolumeCategory(bytes int64) string {
	switch {
	case bytes <= ThresholdLow:
		return CategoryLow
	case bytes <= ThresholdMedium:
		return CategoryMedium
	case bytes <= ThresholdHigh:
		return CategoryHigh
	default:
		return CategoryVeryHigh
	}
}

// CountCategory buckets a distinct dataset count. Zero is styled as single.
func CountCategory(count int) string {
	switch {
	case count <= 1:
		return CategorySingle
	case count <= 10:
		return CategoryFew
	case count < 100:
		return CategoryMany
	default:
		return CategoryVeryMany
	}
}

func categoriesFor(scheme string) []category {
	if scheme == SchemeDatasetCount {
		return countCategories
	}
	return volumeCategories
}

// categorize returns the category name and colours of a region.
func categorize(scheme string, bytes int64, count int) (string, ColorPair) {
	name := VolumeCategory(bytes)
	if scheme == SchemeDatasetCount {
		name = CountCategory(count)
	}
	cats := categoriesFor(scheme)
	for _, c := range cats {
		if c.name == name {
			return name, c.color
		}
	}
	return name, cats[len(cats)-1].color
}

// LegendEntry is one scheme category.
type LegendEntry struct {
	Category string    `json:"category"`
	Label    string    `json:"label"`
	Color    ColorPair `json:"color"`
	Count    int       `json:"count"` // markers in the category
}

// DefaultLegend returns the placeholder legend of a scheme, with no counts.
func DefaultLegend(scheme string) []LegendEntry {
	cats := categoriesFor(scheme)
	out := make([]LegendEntry, len(cats))
	for i, c := range cats {
		out[i] = LegendEntry{Category: c.name, Label: c.label, Color: c.color}
	}
	return out
}

// FillOpacity grows with dataset diversity: min(0.3 + count/20, 0.8).
func FillOpacity(count int) float64 {
	o := 0.3 + float64(count)/20
	if o > 0.8 {
		return 0.8
	}
	return o
}
