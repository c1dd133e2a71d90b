// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package geomap

import "math"

// Radius band at the reference zoom, and its clamps.
const (
	referenceZoom = 2.0
	baseMinRadius = 4.0
	baseMaxRadius = 20.0
	zoomFactor    = 0.25

	minRadiusFloor = 3.0
	minRadiusCeil  = 10.0
	maxRadiusFloor = 12.0
	maxRadiusCeil  = 40.0
)

// Band is the marker radius range at one zoom level.
type Band struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// RadiusBand scales the reference band linearly with zoom and clamps each
// end so markers stay visible when zoomed out and bounded when zoomed in.
func RadiusBand(zoom float64) Band {
	scale := 1 + zoomFactor*(zoom-referenceZoom)
	return Band{
		Min: clamp(baseMinRadius*scale, minRadiusFloor, minRadiusCeil),
		Max: clamp(baseMaxRadius*scale, maxRadiusFloor, maxRadiusCeil),
	}
}

// Radius interpolates within the band.
func (b Band) Radius(fraction float64) float64 {
	return b.Min + fraction*(b.Max-b.Min)
}

// LogDomain is the min and max of natural-log values.
type LogDomain struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// logDomain computes the domain of log(v) over values. Values below one are
// treated as one.
func logDomain(values []float64) LogDomain {
	if len(values) == 0 {
		return LogDomain{}
	}
	d := LogDomain{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, v := range values {
		l := safeLog(v)
		d.Min = math.Min(d.Min, l)
		d.Max = math.Max(d.Max, l)
	}
	return d
}

// Fraction places log value l in the domain. A zero-width domain yields 0.
func (d LogDomain) Fraction(l float64) float64 {
	span := d.Max - d.Min
	if span == 0 {
		return 0
	}
	return (l - d.Min) / span
}

func safeLog(v float64) float64 {
	if v < 1 {
		v = 1
	}
	return math.Log(v)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
