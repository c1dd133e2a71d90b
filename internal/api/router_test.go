// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	gorillaws "github.com/gorilla/websocket"

	"github.com/tomtom215/dandimap/internal/chart"
	"github.com/tomtom215/dandimap/internal/client"
	"github.com/tomtom215/dandimap/internal/config"
	"github.com/tomtom215/dandimap/internal/dashboard"
	"github.com/tomtom215/dandimap/internal/geomap"
	"github.com/tomtom215/dandimap/internal/models"
	"github.com/tomtom215/dandimap/internal/state"
	ws "github.com/tomtom215/dandimap/internal/websocket"
)

type stubFetcher struct{}

func (stubFetcher) Stats(context.Context) (*models.Stats, error) {
	return &models.Stats{TotalBytes: 3 << 30, TotalDatasets: 2}, nil
}

func (stubFetcher) Datasets(context.Context) ([]models.Dataset, error) {
	return []models.Dataset{{ID: "409", TotalBytes: 2048}, {ID: "26", TotalBytes: 1024}}, nil
}

func (stubFetcher) FeaturedDatasets(context.Context) (*models.FeaturedDatasets, error) {
	return &models.FeaturedDatasets{}, nil
}

func (stubFetcher) Regions(context.Context, client.Filters) ([]models.Region, error) {
	return []models.Region{
		{Code: "US/Ohio", Name: "Ohio", Country: "US", Latitude: 40.4, Longitude: -82.9, TotalBytes: 3 << 20, DatasetCount: 2},
		{Code: "DE/Berlin", Name: "Berlin", Country: "DE", Latitude: 52.5, Longitude: 13.4, TotalBytes: 1 << 20, DatasetCount: 1},
	}, nil
}

func (stubFetcher) GlobalDownloads(context.Context, client.Filters) (*models.ChartPayload, error) {
	return &models.ChartPayload{
		TimeSeries: []models.RawRecord{
			{"date": "2024-01-01", "409": float64(1024), "26": float64(512)},
			{"date": "2024-01-02", "409": float64(2048)},
		},
		TopDatasets: []string{"409", "26"},
		ViewType:    models.ViewTypeDatasets,
	}, nil
}

func (stubFetcher) RegionDownloads(_ context.Context, code string, _ client.Filters) (*models.ChartPayload, error) {
	return &models.ChartPayload{
		TimeSeries:  []models.RawRecord{{"date": "2024-01-01", "409": float64(700)}},
		TopDatasets: []string{"409"},
		RegionCode:  code,
	}, nil
}

func (stubFetcher) EnrichMetadata(_ context.Context, ids []string, totals map[string]int64) ([]models.DatasetMetadata, error) {
	out := make([]models.DatasetMetadata, len(ids))
	for i, id := range ids {
		out[i] = models.DatasetMetadata{ID: "000000"[:6-len(id)] + id, Name: "Dataset " + id, TotalBytes: totals[id]}
	}
	return out, nil
}

type stubUpstream struct {
	breaker string
}

func (u stubUpstream) DatasetDetails(_ context.Context, id string) (*models.DatasetDetails, error) {
	if id == "999999" {
		return nil, &client.HTTPError{StatusCode: http.StatusNotFound, Endpoint: "/datasets/999999", Message: "not found"}
	}
	return &models.DatasetDetails{
		DatasetMetadata: models.DatasetMetadata{ID: id, Name: "Dataset " + id},
		UniqueRegions:   4,
	}, nil
}

func (u stubUpstream) BreakerState() string { return u.breaker }

type testServer struct {
	handler *Handler
	dash    *dashboard.Dashboard
	mux     http.Handler
}

func newTestServer(t *testing.T, load bool, mwCfg *ChiMiddlewareConfig) *testServer {
	t.Helper()
	st := state.New(state.Filters{})
	renderer := chart.NewRenderer(chart.RendererConfig{ResizeDebounce: 200 * time.Millisecond})
	layer := geomap.NewLayer(geomap.Config{}, st)
	dash := dashboard.New(dashboard.Config{FilterDebounce: 20 * time.Millisecond}, stubFetcher{}, st, renderer, layer)
	t.Cleanup(func() {
		dash.Close()
		renderer.Close()
	})

	h := NewHandler(dash, stubUpstream{breaker: "closed"}, nil, &config.Config{})
	if load {
		if err := dash.Load(context.Background()); err != nil {
			t.Fatalf("Load: %v", err)
		}
		h.MarkLoaded()
	}
	if mwCfg == nil {
		mwCfg = DefaultChiMiddlewareConfig()
		mwCfg.RateLimitDisabled = true
	}
	return &testServer{handler: h, dash: dash, mux: NewRouter(h, mwCfg).SetupChi()}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Status string           `json:"status"`
	Data   json.RawMessage  `json:"data"`
	Error  *models.APIError `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return env
}

func TestHealthBeforeAndAfterLoad(t *testing.T) {
	t.Parallel()

	cold := newTestServer(t, false, nil)
	if w := cold.do(t, http.MethodGet, "/api/v1/health/ready", ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("ready before load = %d, want 503", w.Code)
	}
	if w := cold.do(t, http.MethodGet, "/api/v1/health/live", ""); w.Code != http.StatusOK {
		t.Errorf("live = %d", w.Code)
	}
	if w := cold.do(t, http.MethodGet, "/api/v1/chart", ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("chart before load = %d, want 503", w.Code)
	}

	warm := newTestServer(t, true, nil)
	if w := warm.do(t, http.MethodGet, "/api/v1/health/ready", ""); w.Code != http.StatusOK {
		t.Errorf("ready after load = %d", w.Code)
	}

	w := warm.do(t, http.MethodGet, "/api/v1/health", "")
	var hs HealthStatus
	if err := json.Unmarshal(decode(t, w).Data, &hs); err != nil {
		t.Fatal(err)
	}
	if hs.Status != "healthy" || hs.BreakerState != "closed" || hs.Markers != 2 {
		t.Errorf("health = %+v", hs)
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
}

func TestDashboardAndDatasets(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, true, nil)
	w := s.do(t, http.MethodGet, "/api/v1/dashboard", "")
	if w.Code != http.StatusOK || w.Header().Get("ETag") == "" {
		t.Fatalf("dashboard = %d, etag %q", w.Code, w.Header().Get("ETag"))
	}
	var snap DashboardSnapshot
	if err := json.Unmarshal(decode(t, w).Data, &snap); err != nil {
		t.Fatal(err)
	}
	if !snap.Loaded || snap.Markers != 2 || snap.Stats.TotalBytesFormatted != "3.0 GB" || snap.ChartTitle != dashboard.GlobalTitle {
		t.Errorf("snapshot = %+v", snap)
	}

	var datasets []DatasetEntry
	if err := json.Unmarshal(decode(t, s.do(t, http.MethodGet, "/api/v1/datasets", "")).Data, &datasets); err != nil {
		t.Fatal(err)
	}
	if len(datasets) != 2 || datasets[0].Name != "Dataset 409" {
		t.Errorf("datasets = %+v", datasets)
	}
}

func TestDatasetDetails(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, true, nil)
	tests := []struct {
		path string
		code int
	}{
		{"/api/v1/datasets/000409", http.StatusOK},
		{"/api/v1/datasets/409", http.StatusOK},
		{"/api/v1/datasets/ALL", http.StatusBadRequest},
		{"/api/v1/datasets/abc", http.StatusBadRequest},
		{"/api/v1/datasets/1234567", http.StatusBadRequest},
		{"/api/v1/datasets/999999", http.StatusNotFound},
	}
	for _, tt := range tests {
		if w := s.do(t, http.MethodGet, tt.path, ""); w.Code != tt.code {
			t.Errorf("GET %s = %d, want %d", tt.path, w.Code, tt.code)
		}
	}
}

func TestUpdateFilters(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, true, nil)
	tests := []struct {
		name string
		body string
		code int
	}{
		{"dataset", `{"dataset_id":"409"}`, http.StatusOK},
		{"clear dataset", `{"dataset_id":""}`, http.StatusOK},
		{"bad date", `{"start_date":"2024-13-01"}`, http.StatusBadRequest},
		{"reversed range", `{"start_date":"2024-02-01","end_date":"2024-01-01"}`, http.StatusBadRequest},
		{"unknown scheme", `{"color_scheme":"rainbow"}`, http.StatusBadRequest},
		{"bad dataset", `{"dataset_id":"12ab"}`, http.StatusBadRequest},
		{"not json", `{`, http.StatusBadRequest},
		{"scheme", `{"color_scheme":"dataset_count","cumulative":true}`, http.StatusOK},
	}
	for _, tt := range tests {
		w := s.do(t, http.MethodPost, "/api/v1/filters", tt.body)
		if w.Code != tt.code {
			t.Errorf("%s: status = %d, want %d (%s)", tt.name, w.Code, tt.code, w.Body.String())
			continue
		}
		if tt.code == http.StatusBadRequest {
			if env := decode(t, w); env.Error == nil || env.Error.Code != ErrCodeValidation {
				t.Errorf("%s: error = %+v", tt.name, env.Error)
			}
		}
	}

	var f state.Filters
	if err := json.Unmarshal(decode(t, s.do(t, http.MethodGet, "/api/v1/filters", "")).Data, &f); err != nil {
		t.Fatal(err)
	}
	if f.ColorScheme != geomap.SchemeDatasetCount || !f.Cumulative || f.DatasetID != "" {
		t.Errorf("filters = %+v", f)
	}
}

func TestChartExports(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, true, nil)
	w := s.do(t, http.MethodGet, "/api/v1/chart.svg", "")
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/svg+xml" {
		t.Fatalf("svg = %d %q", w.Code, w.Header().Get("Content-Type"))
	}
	if !strings.HasPrefix(w.Body.String(), "<svg") || !strings.Contains(w.Body.String(), `data-key="409"`) {
		t.Errorf("svg body = %.200s", w.Body.String())
	}

	w = s.do(t, http.MethodGet, "/api/v1/chart", "")
	var sc chart.Scene
	if err := json.Unmarshal(decode(t, w).Data, &sc); err != nil {
		t.Fatal(err)
	}
	if sc.Empty || len(sc.Bars) != 2 {
		t.Errorf("scene = %+v", sc)
	}
}

func TestLegendToggle(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, true, nil)
	var lt LegendToggle
	if err := json.Unmarshal(decode(t, s.do(t, http.MethodPost, "/api/v1/chart/legend/409", "")).Data, &lt); err != nil {
		t.Fatal(err)
	}
	if lt.Key != "409" || !lt.Hidden {
		t.Errorf("first toggle = %+v", lt)
	}
	if err := json.Unmarshal(decode(t, s.do(t, http.MethodPost, "/api/v1/chart/legend/409", "")).Data, &lt); err != nil {
		t.Fatal(err)
	}
	if lt.Hidden {
		t.Error("second toggle should show the series again")
	}
	if w := s.do(t, http.MethodPost, "/api/v1/chart/legend/777", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown key = %d, want 404", w.Code)
	}
}

func TestLegendToggleRegionKeys(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, true, nil)
	breakdown := &models.ChartPayload{
		TimeSeries: []models.RawRecord{
			{"date": "2024-01-01", "US/Ohio": float64(900), "DE/Berlin": float64(300)},
		},
		TopDatasets: []string{"US/Ohio", "DE/Berlin"},
		ViewType:    models.ViewTypeRegions,
	}
	sc, err := s.dash.Chart().Render(dashboard.ChartSelector, breakdown, "Downloads for 000409", chart.Options{SingleDataset: true})
	if err != nil {
		t.Fatal(err)
	}
	if !sc.ShowLegend {
		t.Fatal("region breakdown should show a legend")
	}

	tests := []struct {
		name string
		path string
		key  string
	}{
		{"raw slash", "/api/v1/chart/legend/US/Ohio", "US/Ohio"},
		{"encoded slash", "/api/v1/chart/legend/DE%2FBerlin", "DE/Berlin"},
	}
	for _, tt := range tests {
		w := s.do(t, http.MethodPost, tt.path, "")
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status %d: %s", tt.name, w.Code, w.Body.String())
		}
		var lt LegendToggle
		if err := json.Unmarshal(decode(t, w).Data, &lt); err != nil {
			t.Fatal(err)
		}
		if lt.Key != tt.key || !lt.Hidden {
			t.Errorf("%s: toggle = %+v", tt.name, lt)
		}
	}
}

func TestResizeValidation(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, true, nil)
	if w := s.do(t, http.MethodPost, "/api/v1/chart/resize", `{"width":800,"height":400}`); w.Code != http.StatusOK {
		t.Errorf("resize = %d", w.Code)
	}
	if w := s.do(t, http.MethodPost, "/api/v1/chart/resize", `{"width":10,"height":400}`); w.Code != http.StatusBadRequest {
		t.Errorf("tiny resize = %d, want 400", w.Code)
	}
}

func TestMapSelection(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, true, nil)
	w := s.do(t, http.MethodPost, "/api/v1/map/select/US/Ohio", "")
	if w.Code != http.StatusOK {
		t.Fatalf("select = %d %s", w.Code, w.Body.String())
	}
	var sel geomap.Selection
	if err := json.Unmarshal(decode(t, w).Data, &sel); err != nil {
		t.Fatal(err)
	}
	if sel.Code != "US/Ohio" || sel.Name != "Ohio" {
		t.Errorf("selection = %+v", sel)
	}
	if title := s.dash.State().LastChart().Title; title != "Downloads for Ohio" {
		t.Errorf("chart title = %q", title)
	}

	w = s.do(t, http.MethodGet, "/api/v1/map/popup/DE%2FBerlin", "")
	if w.Code != http.StatusOK {
		t.Errorf("popup = %d", w.Code)
	}

	if w := s.do(t, http.MethodPost, "/api/v1/map/select/XX/Nowhere", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown region = %d, want 404", w.Code)
	}
	if s.dash.Layer().Selection().Code != "US/Ohio" {
		t.Error("failed select changed the selection")
	}

	if w := s.do(t, http.MethodPost, "/api/v1/map/reset", ""); w.Code != http.StatusOK {
		t.Errorf("reset = %d", w.Code)
	}
	if s.dash.Layer().Selection().Selected() {
		t.Error("selection not cleared")
	}
}

func TestZoom(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, true, nil)
	if w := s.do(t, http.MethodPost, "/api/v1/map/zoom", `{"zoom":6}`); w.Code != http.StatusOK {
		t.Errorf("zoom = %d", w.Code)
	}
	if s.dash.Layer().Zoom() != 6 {
		t.Errorf("layer zoom = %v", s.dash.Layer().Zoom())
	}
	if w := s.do(t, http.MethodPost, "/api/v1/map/zoom", `{"zoom":40}`); w.Code != http.StatusBadRequest {
		t.Errorf("zoom 40 = %d, want 400", w.Code)
	}
}

func TestMapLayerDocument(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, true, nil)
	s.do(t, http.MethodPost, "/api/v1/map/zoom", `{"zoom":4}`)

	w := s.do(t, http.MethodGet, "/api/v1/map/layer.json", "")
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		t.Fatalf("layer = %d %q", w.Code, w.Header().Get("Content-Type"))
	}
	var layer geomap.LayerView
	if err := json.Unmarshal(w.Body.Bytes(), &layer); err != nil {
		t.Fatalf("layer document should not be wrapped: %v", err)
	}
	if layer.Scheme != geomap.SchemeVolume || layer.Zoom != 4 || len(layer.Markers) != 2 {
		t.Errorf("layer = scheme %q zoom %v markers %d", layer.Scheme, layer.Zoom, len(layer.Markers))
	}
}

func TestRoutingErrors(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, true, nil)
	if w := s.do(t, http.MethodGet, "/api/v1/nope", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown route = %d", w.Code)
	}
	if w := s.do(t, http.MethodGet, "/api/v1/wsx", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown route = %d", w.Code)
	}
	if w := s.do(t, http.MethodGet, "/api/v1/ws", ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("ws without hub = %d, want 503", w.Code)
	}
	if w := s.do(t, http.MethodGet, "/metrics", ""); w.Code != http.StatusOK {
		t.Errorf("metrics = %d", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitRequests = 2
	s := newTestServer(t, true, cfg)

	codes := make([]int, 3)
	for i := range codes {
		codes[i] = s.do(t, http.MethodGet, "/api/v1/filters", "").Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v", codes)
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err    error
		status int
		code   string
	}{
		{dashboard.ErrInvalidFilters, http.StatusBadRequest, ErrCodeValidation},
		{geomap.ErrUnknownRegion, http.StatusNotFound, ErrCodeNotFound},
		{chart.ErrEmptyScene, http.StatusNotFound, ErrCodeNotFound},
		{ErrNotReady, http.StatusServiceUnavailable, ErrCodeServiceUnavailable},
		{client.ErrCircuitOpen, http.StatusServiceUnavailable, ErrCodeUpstream},
		{&client.HTTPError{StatusCode: 500}, http.StatusBadGateway, ErrCodeUpstream},
		{context.DeadlineExceeded, http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tt := range tests {
		status, code := classify(tt.err)
		if status != tt.status || code != tt.code {
			t.Errorf("classify(%v) = %d %s, want %d %s", tt.err, status, code, tt.status, tt.code)
		}
	}
}

func TestWebSocketReceivesChartEvents(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, true, nil)
	hub := ws.NewHub()
	s.dash.Chart().AddListener(hub)
	s.handler.wsHub = hub

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.RunWithContext(ctx)

	srv := httptest.NewServer(s.mux)
	t.Cleanup(srv.Close)

	conn, _, err := gorillaws.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/v1/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.GetClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	resp, err := http.Post(srv.URL+"/api/v1/chart/legend/26", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var msg struct {
			Type string `json:"type"`
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("no chart_rendered event: %v", err)
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatal(err)
		}
		if msg.Type == ws.MessageTypeChartRendered {
			return
		}
	}
}
