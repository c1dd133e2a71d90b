// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

// Package regions resolves coordinates for region codes the upstream could
// not geolocate, and recognises traffic attributed to services rather than
// places.
package regions

import (
	"sort"
	"strings"
)

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// knownServices have no meaningful position on a map.
var knownServices = map[string]struct{}{
	"GitHub":  {},
	"AWS":     {},
	"GCP":     {},
	"VPN":     {},
	"unknown": {},
}

// knownCoordinates covers codes that heuristic geocoding gets wrong or misses.
var knownCoordinates = map[string]Coordinates{
	"AWS/us-east-2":                   {39.9612, -82.9988},
	"GCP/us-central1":                 {41.2619, -95.8608},
	"BO/La Paz Department":            {-11.7773231, -67.4519752},
	"CL/Valparaíso":                   {-32.5976089, -70.8529753},
	"CN/Hainan":                       {19.2000001, 109.5999999},
	"CO/Huila Department":             {2.53593490, -75.52766990},
	"CO/Risaralda Department":         {5.2102948, -75.9842236},
	"CO/Valle del Cauca Department":   {3.788778, -76.472768},
	"CR/San José":                     {9.9325427, -84.0795782},
	"ES/Castille and León":            {42.00, -5.5},
	"FR/Grand Est":                    {48.580002, 7.750000},
	"HN/Francisco Morazán Department": {14.0723, -87.1921},
	"IQ/Sulaymaniyah":                 {35.5574725, 45.435202},
	"JP/Ishikawa":                     {36.9890574, 136.8162839},
	"MO/São Francisco Xavier":         {22.210928, 113.552971},
	"MX/México":                       {19.4326296, -99.1331785},
	"NI/Managua Department":           {12.125, -86.31},
	"NO/Vestland":                     {60.9291011, 6.1078869},
	"NZ/Taranaki Region":              {-39.3848064, 174.1973505},
	"PA/Panamá":                       {8.559559, -81.1308434},
	"PA/Panamá Oeste Province":        {8.88028, -79.78330},
	"PE/Lima Province":                {-12.5453873, -75.8599243},
	"PL/Greater Poland":               {52.406374, 16.9251681},
	"PL/Pomerania":                    {53.428543, 14.552811},
	"PL/Silesia":                      {50.6966393, 17.9254068},
	"PL/Subcarpathia":                 {50.0575, 22.0896},
	"PR/San Juan":                     {18.384239, -66.05344},
	"RU/Mordoviya Republic":           {54.5, 44},
	"RU/Rostov":                       {57.2012699, 39.4221813},
	"SV/San Salvador Department":      {13.6929, -89.2182},
	"TW/Takao":                        {22.6226696, 120.2764261},
	"UY/Montevideo Department":        {-34.9058916, -56.1913095},
	"VN/Bình Phước Province":          {11.749990, 106.953958},
	"VN/Hà Nam Province":              {20.583333, 105.916667},
	"VN/Long An Povince":              {10.56071680, 106.64976230},
	"VN/Yên Bái Province":             {21.666667, 104.916667},
}

// sortedKeys fixes the order of the substring heuristic.
var sortedKeys = func() []string {
	keys := make([]string, 0, len(knownCoordinates))
	for k := range knownCoordinates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}()

// IsService reports whether code names a service rather than a place.
func IsService(code string) bool {
	_, ok := knownServices[code]
	return ok
}

// Lookup returns coordinates for code: an exact table match first, then the
// first table entry (in sorted order) whose code contains code, ignoring case.
// Services and unknown codes report false.
func Lookup(code string) (Coordinates, bool) {
	if code == "" || IsService(code) {
		return Coordinates{}, false
	}
	if c, ok := knownCoordinates[code]; ok {
		return c, true
	}
	needle := strings.ToLower(code)
	for _, k := range sortedKeys {
		if strings.Contains(strings.ToLower(k), needle) {
			return knownCoordinates[k], true
		}
	}
	return Coordinates{}, false
}

// Split returns the country and subregion parts of a region code. Codes
// without a separator use the whole code for both.
func Split(code string) (country, name string) {
	if c, n, ok := strings.Cut(code, "/"); ok {
		return c, n
	}
	return code, code
}
