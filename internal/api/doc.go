// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

/*
Package api serves the dashboard over HTTP with a chi router.

Routes live under /api/v1:

	GET  /health, /health/live, /health/ready
	GET  /dashboard                  state snapshot: stats, filters, selection, featured datasets
	GET  /datasets                   dataset list
	GET  /datasets/{id}              archive details for one dataset
	GET  /filters                    current filters
	POST /filters                    partial filter update
	GET  /chart                      scene as JSON
	GET  /chart.svg, /chart.html, /chart.png
	POST /chart/legend/{key}         toggle a series (region keys may contain "/")
	POST /chart/resize               debounced resize
	GET  /map/markers                marker layer with popups and legend
	GET  /map/layer.json             the same layer without the envelope, for the browser map
	GET  /map/popup/{code}           popup for one marker
	POST /map/select/{code}          select a region (the code may contain "/")
	POST /map/reset                  clear the selection
	POST /map/zoom                   change the zoom level
	GET  /ws                         event stream

/metrics exposes Prometheus metrics outside the versioned prefix.

JSON responses use models.APIResponse. Errors carry one of the codes in
errors.go.
*/
package api
