// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrCircuitOpen is returned without contacting the upstream while the
// circuit breaker is open or saturated in half-open state.
var ErrCircuitOpen = errors.New("statistics API circuit breaker is open")

// ErrStale marks a response superseded by a newer request on its channel.
var ErrStale = errors.New("response superseded by a newer request")

// HTTPError is a non-2xx reply from the statistics API. It is recoverable:
// the operation is abandoned and never retried.
type HTTPError struct {
	StatusCode int
	Endpoint   string
	Body       string // raw body, at most 64 KiB
	Message    string // upstream "error" field when present, else the raw body
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: upstream returned %d %s", e.Endpoint, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s: upstream returned %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

// ClientFault reports whether the upstream rejected the request itself (4xx).
func (e *HTTPError) ClientFault() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.StatusCode == http.StatusNotFound
}
