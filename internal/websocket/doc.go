// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

/*
Package websocket pushes dashboard events to connected browsers.

The Hub registers as a listener on the dashboard, the map layer and the chart
renderer, and fans every event out to all clients as a JSON Message:

	{"type": "dashboard_update", "data": {"kind": "chart", "title": "Global downloads", ...}}
	{"type": "region_selected",  "data": {"code": "US/Ohio", "name": "Ohio"}}
	{"type": "chart_rendered",   "data": {"selector": "#time-series-chart", "empty": false, ...}}
	{"type": "notice",           "data": {"operation": "refresh", "message": "..."}}

Clients may send {"type": "ping"} and receive {"type": "pong"}. Slow clients
whose send buffer fills are dropped rather than blocking the broadcast.

The hub runs under the supervisor through RunWithContext; cancelling the
context closes every client.
*/
package websocket
