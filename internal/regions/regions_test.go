// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package regions

import "testing"

func TestLookup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code   string
		wantOK bool
		lat    float64
	}{
		{"FR/Grand Est", true, 48.580002},
		{"fr/grand est", true, 48.580002},
		{"Pomerania", true, 53.428543},
		{"GitHub", false, 0},
		{"VPN", false, 0},
		{"unknown", false, 0},
		{"", false, 0},
		{"ZZ/Nowhere", false, 0},
	}
	for _, tt := range tests {
		c, ok := Lookup(tt.code)
		if ok != tt.wantOK {
			t.Errorf("Lookup(%q) ok = %v, want %v", tt.code, ok, tt.wantOK)
			continue
		}
		if ok && c.Latitude != tt.lat {
			t.Errorf("Lookup(%q) lat = %v, want %v", tt.code, c.Latitude, tt.lat)
		}
	}
}

func TestIsService(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"GitHub", "AWS", "GCP", "VPN"} {
		if !IsService(s) {
			t.Errorf("expected %s to be a service", s)
		}
	}
	if IsService("AWS/us-east-2") {
		t.Error("a cloud region with a location is not a bare service")
	}
}

func TestSplit(t *testing.T) {
	t.Parallel()

	if c, n := Split("US/California"); c != "US" || n != "California" {
		t.Errorf("Split = %q, %q", c, n)
	}
	if c, n := Split("GitHub"); c != "GitHub" || n != "GitHub" {
		t.Errorf("Split without separator = %q, %q", c, n)
	}
}
