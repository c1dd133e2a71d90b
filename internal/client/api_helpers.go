// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/dandimap/internal/metrics"
)

// maxErrorBodySize bounds how much of an error body is kept.
const maxErrorBodySize = 64 * 1024

// Filters are the query parameters shared by the filtered endpoints.
type Filters struct {
	DatasetID string
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
}

// apiRequest describes one call to the statistics API.
type apiRequest struct {
	method   string
	endpoint string // path below /api, used as the metrics label
	path     string // escaped path below /api
	params   url.Values
	body     interface{}
}

func newAPIRequest(method, endpoint string) *apiRequest {
	return &apiRequest{method: method, endpoint: endpoint, path: endpoint, params: url.Values{}}
}

func (r *apiRequest) withPath(escaped string) *apiRequest {
	r.path = escaped
	return r
}

// addParam sets key unless value is empty.
func (r *apiRequest) addParam(key, value string) *apiRequest {
	if value != "" {
		r.params.Set(key, value)
	}
	return r
}

// addFilters applies dataset and date filters. "ALL" means no dataset filter.
func (r *apiRequest) addFilters(f Filters) *apiRequest {
	if f.DatasetID != "ALL" {
		r.addParam("dataset_id", f.DatasetID)
	}
	r.addParam("start_date", f.StartDate)
	return r.addParam("end_date", f.EndDate)
}

func (r *apiRequest) withBody(body interface{}) *apiRequest {
	r.body = body
	return r
}

func (r *apiRequest) buildURL(baseURL string) string {
	u := baseURL + "/api" + r.path
	if len(r.params) > 0 {
		u += "?" + r.params.Encode()
	}
	return u
}

// escapeRegionPath escapes each segment of a region code, keeping the
// separator, so "CO/Valle del Cauca" becomes "CO/Valle%20del%20Cauca".
func escapeRegionPath(code string) string {
	parts := strings.Split(code, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// readBodyForError reads at most maxErrorBodySize bytes of r.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// upstreamMessage extracts {"error": "..."} from an error body.
func upstreamMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}

// executeRequest performs req and returns the body of a 2xx response.
func executeRequest(ctx context.Context, hc *http.Client, baseURL string, maxBody int64, req *apiRequest) ([]byte, error) {
	var reqBody io.Reader = http.NoBody
	if req.body != nil {
		buf, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, req.buildURL(baseURL), reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := hc.Do(httpReq)
	if err != nil {
		metrics.RecordUpstreamRequest(req.endpoint, 0, time.Since(start))
		return nil, fmt.Errorf("%s: request failed: %w", req.endpoint, err)
	}
	defer resp.Body.Close()
	metrics.RecordUpstreamRequest(req.endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body := readBodyForError(resp.Body)
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Endpoint:   req.endpoint,
			Body:       string(body),
			Message:    upstreamMessage(body),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", req.endpoint, err)
	}
	return body, nil
}

// decodeJSON decodes body into a new T.
func decodeJSON[T any](endpoint string, body []byte) (*T, error) {
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%s: failed to decode response: %w", endpoint, err)
	}
	return &out, nil
}
