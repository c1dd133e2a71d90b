// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package chart

import "math"

// BandScale maps n ordinal slots to equal-width bands across a pixel range.
// Padding is a fraction of the step applied between and around bands.
type BandScale struct {
	N          int
	RangeStart float64
	RangeEnd   float64
	Padding    float64
}

// Step is the distance between the starts of adjacent bands.
func (s BandScale) Step() float64 {
	if s.N <= 0 {
		return 0
	}
	return (s.RangeEnd - s.RangeStart) / (float64(s.N) + s.Padding)
}

// Bandwidth is the width of one band.
func (s BandScale) Bandwidth() float64 {
	return s.Step() * (1 - s.Padding)
}

// Position returns the start of band i.
func (s BandScale) Position(i int) float64 {
	step := s.Step()
	return s.RangeStart + s.Padding*step + float64(i)*step
}

// LinearScale maps [0, Max] onto [RangeStart, RangeEnd]. The chart uses an
// inverted pixel range so that larger values sit higher.
type LinearScale struct {
	Max        float64
	RangeStart float64
	RangeEnd   float64
}

// Scale maps v into the range. A zero domain maps everything to RangeStart.
func (s LinearScale) Scale(v float64) float64 {
	if s.Max <= 0 {
		return s.RangeStart
	}
	return s.RangeStart + (v/s.Max)*(s.RangeEnd-s.RangeStart)
}

// Ticks returns round tick values from 0 up to at most Max, about count of
// them, using 1, 2 and 5 multiples of a power of ten.
func (s LinearScale) Ticks(count int) []float64 {
	if s.Max <= 0 || count <= 0 {
		return []float64{0}
	}
	step := niceStep(s.Max / float64(count))
	ticks := make([]float64, 0, count+1)
	for v := 0.0; v <= s.Max*(1+1e-9); v += step {
		ticks = append(ticks, v)
	}
	return ticks
}

func niceStep(raw float64) float64 {
	power := math.Pow(10, math.Floor(math.Log10(raw)))
	ratio := raw / power
	switch {
	case ratio >= math.Sqrt(50):
		return 10 * power
	case ratio >= math.Sqrt(10):
		return 5 * power
	case ratio >= math.Sqrt(2):
		return 2 * power
	default:
		return power
	}
}
