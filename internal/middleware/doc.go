// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

/*
Package middleware provides the HTTP middleware of the dashboard API.

  - RequestID: accepts or generates an X-Request-ID and stores it in the
    logging context, so logging.Ctx(r.Context()) carries it.
  - PrometheusMetrics: request counts, durations and in-flight requests.
    The endpoint label is the chi route pattern, not the raw path, so region
    codes in URLs do not create new series.

Both use the http.HandlerFunc signature; the api package adapts them to chi.
*/
package middleware
