// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package websocket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/dandimap/internal/chart"
	"github.com/tomtom215/dandimap/internal/dashboard"
)

// startHub runs a hub behind an httptest server that upgrades every request.
func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.RunWithContext(ctx) }()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := (&websocket.Upgrader{}).Upgrade(w, r, nil)
		if err != nil {
			return
		}
		NewClient(hub, conn).Start()
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-done
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.GetClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("client count = %d, want %d", hub.GetClientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

type rawMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func readMessage(t *testing.T, conn *websocket.Conn) rawMessage {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatal(err)
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var m rawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return m
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	t.Parallel()

	hub, srv := startHub(t)
	a, b := dial(t, srv), dial(t, srv)
	waitForClients(t, hub, 2)

	hub.RegionSelected("US/Ohio", "Ohio")
	for _, conn := range []*websocket.Conn{a, b} {
		m := readMessage(t, conn)
		if m.Type != MessageTypeRegionSelected {
			t.Fatalf("type = %s", m.Type)
		}
		var d RegionSelectedData
		if err := json.Unmarshal(m.Data, &d); err != nil || d.Code != "US/Ohio" || d.Name != "Ohio" {
			t.Errorf("data = %s", m.Data)
		}
	}
}

func TestHub_DashboardEvents(t *testing.T) {
	t.Parallel()

	hub, srv := startHub(t)
	conn := dial(t, srv)
	waitForClients(t, hub, 1)

	hub.DashboardUpdated(dashboard.Update{Kind: dashboard.UpdateChart, Title: "Global downloads"})
	hub.DashboardNotice(dashboard.Notice{Operation: "refresh", Message: "Could not load download statistics"})
	hub.ChartRendered("#time-series-chart", &chart.Scene{Title: "Global downloads", Width: 960, Height: 420})
	hub.ChartRendered("#ignored", nil)

	want := []string{MessageTypeDashboardUpdate, MessageTypeNotice, MessageTypeChartRendered}
	for _, typ := range want {
		if m := readMessage(t, conn); m.Type != typ {
			t.Errorf("type = %s, want %s", m.Type, typ)
		}
	}
}

func TestClient_PingPong(t *testing.T) {
	t.Parallel()

	hub, srv := startHub(t)
	conn := dial(t, srv)
	waitForClients(t, hub, 1)

	if err := conn.WriteJSON(Message{Type: MessageTypePing}); err != nil {
		t.Fatal(err)
	}
	if m := readMessage(t, conn); m.Type != MessageTypePong {
		t.Errorf("type = %s, want pong", m.Type)
	}
}

func TestHub_ClientDisconnectUnregisters(t *testing.T) {
	t.Parallel()

	hub, srv := startHub(t)
	conn := dial(t, srv)
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}

func TestHub_SlowClientDropped(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	c := &Client{id: 1, hub: hub, send: make(chan Message)} // unbuffered, never read
	hub.clients[c] = true

	hub.broadcastToClients(Message{Type: MessageTypeNotice})
	if hub.GetClientCount() != 0 {
		t.Error("full client should be dropped")
	}
	if _, ok := <-c.send; ok {
		t.Error("dropped client's channel should be closed")
	}
}

func TestHub_RunWithContextClosesClients(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	c := &Client{id: 7, hub: hub, send: make(chan Message, 1)}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.RunWithContext(ctx) }()

	hub.Register <- c
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
	if hub.GetClientCount() != 0 {
		t.Error("clients should be closed on shutdown")
	}
}

func TestGetShutdownReason(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if r := getShutdownReason(ctx); r != ShutdownReasonContextCanceled {
		t.Errorf("reason = %s", r)
	}

	ctx, cancel = context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	if r := getShutdownReason(ctx); r != ShutdownReasonContextDeadline {
		t.Errorf("reason = %s", r)
	}
}

func TestBroadcastJSON_DropsWhenFull(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	for i := 0; i < broadcastBuffer+5; i++ {
		hub.BroadcastJSON(MessageTypeNotice, i)
	}
	if len(hub.broadcast) != broadcastBuffer {
		t.Errorf("queued = %d, want %d", len(hub.broadcast), broadcastBuffer)
	}
}
