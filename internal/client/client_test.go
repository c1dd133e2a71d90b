// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/dandimap/internal/config"
	"github.com/tomtom215/dandimap/internal/models"
)

func testUpstreamConfig(baseURL string) *config.UpstreamConfig {
	return &config.UpstreamConfig{
		BaseURL:              baseURL,
		Timeout:              5 * time.Second,
		RateLimit:            1000,
		RateBurst:            1000,
		BreakerMaxRequests:   1,
		BreakerInterval:      time.Minute,
		BreakerTimeout:       time.Minute,
		BreakerMinRequests:   3,
		BreakerFailureRatio:  0.6,
		MetadataCacheTTL:     time.Hour,
		MaxResponseBodyBytes: 1 << 20,
	}
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(testUpstreamConfig(srv.URL))
}

func TestGlobalDownloadsQuery(t *testing.T) {
	t.Parallel()

	var gotPath, gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
		_, _ = io.WriteString(w, `{"time_series":[{"date":"2024-01-01","409":10}],"top_datasets":["409"],"view_type":"datasets"}`)
	})

	p, err := c.GlobalDownloads(context.Background(), Filters{DatasetID: "ALL", StartDate: "2024-01-01"})
	if err != nil {
		t.Fatalf("GlobalDownloads: %v", err)
	}
	if gotPath != "/api/downloads/global" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery != "start_date=2024-01-01" {
		t.Errorf("query = %q, want ALL and empty filters omitted", gotQuery)
	}
	if len(p.TimeSeries) != 1 || p.TimeSeries[0].Value("409") != 10 {
		t.Errorf("unexpected payload %+v", p)
	}
}

func TestRegionDownloadsEscapesSegments(t *testing.T) {
	t.Parallel()

	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = io.WriteString(w, `{"time_series":[],"top_datasets":[],"region_code":"CO/Valle del Cauca","view_type":"datasets"}`)
	})

	if _, err := c.RegionDownloads(context.Background(), "CO/Valle del Cauca", Filters{DatasetID: "000409"}); err != nil {
		t.Fatalf("RegionDownloads: %v", err)
	}
	if gotPath != "/api/downloads/region/CO/Valle%20del%20Cauca" {
		t.Errorf("escaped path = %q", gotPath)
	}
}

func TestNon2xxIsHTTPError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error": "Dataset not found"}`)
	})

	_, err := c.DatasetDetails(context.Background(), "999999")
	var he *HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if he.StatusCode != http.StatusNotFound || he.Message != "Dataset not found" {
		t.Errorf("HTTPError = %+v", he)
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound should report true")
	}
	if calls.Load() != 1 {
		t.Errorf("expected exactly one call (no retry), got %d", calls.Load())
	}
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Invalid dataset ID"}`, http.StatusBadRequest)
	})
	for i := 0; i < 10; i++ {
		_, _ = c.DatasetDetails(context.Background(), "x")
	}
	if got := c.BreakerState(); got != "closed" {
		t.Errorf("breaker state = %s, want closed after 4xx only", got)
	}
}

func TestServerErrorsOpenBreaker(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	for i := 0; i < 3; i++ {
		_, _ = c.Stats(context.Background())
	}
	if got := c.BreakerState(); got != "open" {
		t.Fatalf("breaker state = %s, want open", got)
	}

	_, err := c.Stats(context.Background())
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("open breaker still reached upstream: %d calls", calls.Load())
	}
}

func TestErrorBodyTruncated(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, strings.Repeat("x", maxErrorBodySize+100))
	})
	_, err := c.Datasets(context.Background())
	var he *HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if !strings.HasSuffix(he.Body, "(truncated)") {
		t.Error("expected truncation marker")
	}
}

func TestDecodeFailure(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `not json`)
	})
	if _, err := c.Regions(context.Background(), Filters{}); err == nil {
		t.Error("expected decode error")
	}
}

func TestEnrichMetadataCachesAndPads(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	var lastReq models.MetadataRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Method != http.MethodPost || r.URL.Path != "/api/dandisets/metadata" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&lastReq)
		resp := models.MetadataResponse{Count: len(lastReq.DatasetIDs)}
		for _, id := range lastReq.DatasetIDs {
			resp.Dandisets = append(resp.Dandisets, models.DatasetMetadata{
				ID:      "000" + id,
				Name:    "Name " + id,
				Version: "0.230101.0000",
			})
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	totals := map[string]int64{"409": 2048, "123": 10}
	got, err := c.EnrichMetadata(context.Background(), []string{"409", "123"}, totals)
	if err != nil {
		t.Fatalf("EnrichMetadata: %v", err)
	}
	if got[0].ID != "000409" || got[0].Name != "Name 409" || got[0].TotalBytes != 2048 {
		t.Errorf("first entry = %+v", got[0])
	}
	if got[0].LandingURL != "https://dandiarchive.org/dandiset/000409/0.230101.0000" {
		t.Errorf("landing URL = %q", got[0].LandingURL)
	}

	totals["409"] = 4096
	got, err = c.EnrichMetadata(context.Background(), []string{"409"}, totals)
	if err != nil {
		t.Fatalf("second EnrichMetadata: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected cached second lookup, got %d calls", calls.Load())
	}
	if got[0].TotalBytes != 4096 {
		t.Errorf("cached entry should take the current total, got %d", got[0].TotalBytes)
	}
}

func TestEnrichMetadataFallback(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	got, err := c.EnrichMetadata(context.Background(), []string{"409"}, map[string]int64{"409": 1024})
	if err == nil {
		t.Error("expected the upstream error to be reported")
	}
	if len(got) != 1 {
		t.Fatalf("expected a fallback entry, got %d", len(got))
	}
	m := got[0]
	if m.ID != "000409" || m.Name != "Dataset 000409" || m.Version != "draft" || !m.Fallback {
		t.Errorf("fallback = %+v", m)
	}
	if m.LandingURL != "https://dandiarchive.org/dandiset/000409/draft" || m.TotalBytes != 1024 {
		t.Errorf("fallback url/total = %q/%d", m.LandingURL, m.TotalBytes)
	}
	if c.MetadataCache().Len() != 0 {
		t.Error("fallback entries must not be cached")
	}
}

func TestSequencer(t *testing.T) {
	t.Parallel()

	s := NewSequencer()
	first := s.Next(ChannelChart)
	second := s.Next(ChannelChart)
	other := s.Next(ChannelRegions)

	if s.IsCurrent(ChannelChart, first) {
		t.Error("older ticket should be stale")
	}
	if !s.Accept(ChannelChart, second) {
		t.Error("latest ticket should be accepted")
	}
	if !s.IsCurrent(ChannelRegions, other) {
		t.Error("channels are independent")
	}
	if second <= first {
		t.Error("tickets must increase")
	}
}
