// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"github.com/tomtom215/dandimap/internal/chart"
	"github.com/tomtom215/dandimap/internal/dashboard"
	"github.com/tomtom215/dandimap/internal/logging"
	"github.com/tomtom215/dandimap/internal/metrics"
)

// ShutdownReason identifies why the hub stopped.
type ShutdownReason string

const (
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types.
const (
	MessageTypePing            = "ping"
	MessageTypePong            = "pong"
	MessageTypeDashboardUpdate = "dashboard_update"
	MessageTypeNotice          = "notice"
	MessageTypeRegionSelected  = "region_selected"
	MessageTypeChartRendered   = "chart_rendered"
)

const broadcastBuffer = 256

// Message is one websocket frame.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// RegionSelectedData is sent when the map selection changes. An empty code
// means the selection was reset.
type RegionSelectedData struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// ChartRenderedData summarises a redrawn chart. Clients fetch the full scene
// over HTTP.
type ChartRenderedData struct {
	Selector   string   `json:"selector"`
	Title      string   `json:"title"`
	Empty      bool     `json:"empty"`
	Cumulative bool     `json:"cumulative"`
	Width      int      `json:"width"`
	Height     int      `json:"height"`
	Bars       int      `json:"bars"`
	Keys       []string `json:"keys"`
}

// Hub tracks connected clients and broadcasts to them.
//
// All client bookkeeping happens on the RunWithContext goroutine; other
// goroutines talk to it over channels:
//
//   - Register / Unregister carry client lifecycle events
//   - broadcast carries messages from dashboard, chart and map listeners
//
// The hub implements dashboard.DataListener, chart.Listener and
// geomap.SelectionListener, so it is wired with:
//
//	hub := websocket.NewHub()
//	dash.AddListener(hub)
//	layer.AddSelectionListener(hub)
//	renderer.AddListener(hub)
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates an idle hub; start it with RunWithContext.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, broadcastBuffer),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// RunWithContext processes registrations and broadcasts until ctx ends.
// Shutdown is checked first and lifecycle events are drained before
// broadcasts, so a client registered before a broadcast always receives it.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case c := <-h.Register:
			h.register(c)
			continue
		case c := <-h.Unregister:
			h.unregister(c)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case c := <-h.Register:
			h.register(c)
		case c := <-h.Unregister:
			h.unregister(c)
		case msg := <-h.broadcast:
			h.broadcastToClients(msg)
		}
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()
	metrics.WSConnections.Set(float64(n))
	logging.Info().Uint64("client_id", c.id).Int("total_clients", n).Msg("websocket client connected")
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.WSConnections.Set(float64(n))
	logging.Info().Uint64("client_id", c.id).Int("total_clients", n).Msg("websocket client disconnected")
}

func (h *Hub) logGracefulShutdown(ctx context.Context) {
	n := h.GetClientCount()
	h.closeAllClients()
	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", n).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	if ctx.Err() == context.DeadlineExceeded {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

// sortedClientsLocked returns clients in connection order.
func (h *Hub) sortedClientsLocked() []*Client {
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })
	return clients
}

// broadcastToClients delivers msg to every client, dropping those whose
// buffer is full.
func (h *Hub) broadcastToClients(msg Message) {
	h.mu.Lock()
	var dropped []*Client
	for _, c := range h.sortedClientsLocked() {
		select {
		case c.send <- msg:
			metrics.WSMessagesSent.Inc()
		default:
			dropped = append(dropped, c)
		}
	}
	for _, c := range dropped {
		close(c.send)
		delete(h.clients, c)
	}
	n := len(h.clients)
	h.mu.Unlock()

	if len(dropped) > 0 {
		metrics.WSErrors.WithLabelValues("slow_client").Add(float64(len(dropped)))
		metrics.WSConnections.Set(float64(n))
		logging.Warn().Int("dropped", len(dropped)).Msg("Dropped slow websocket clients")
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.sortedClientsLocked() {
		close(c.send)
		delete(h.clients, c)
	}
	metrics.WSConnections.Set(0)
}

// BroadcastJSON queues a message for every client.
//
// It never blocks the caller, which is usually a render or fetch path.
// When the broadcast queue is full the message is dropped and a warning is
// logged; clients recover on the next update since every message carries
// the current state rather than a delta.
func (h *Hub) BroadcastJSON(messageType string, data interface{}) {
	select {
	case h.broadcast <- Message{Type: messageType, Data: data}:
	default:
		metrics.WSErrors.WithLabelValues("broadcast_full").Inc()
		logging.Warn().Str("message_type", messageType).Msg("broadcast channel full, dropping message")
	}
}

// DashboardUpdated implements dashboard.DataListener.
func (h *Hub) DashboardUpdated(u dashboard.Update) {
	h.BroadcastJSON(MessageTypeDashboardUpdate, u)
}

// DashboardNotice implements dashboard.DataListener.
func (h *Hub) DashboardNotice(n dashboard.Notice) {
	h.BroadcastJSON(MessageTypeNotice, n)
}

// RegionSelected implements geomap.SelectionListener.
func (h *Hub) RegionSelected(code, name string) {
	h.BroadcastJSON(MessageTypeRegionSelected, RegionSelectedData{Code: code, Name: name})
}

// ChartRendered implements chart.Listener.
func (h *Hub) ChartRendered(selector string, sc *chart.Scene) {
	if sc == nil {
		return
	}
	h.BroadcastJSON(MessageTypeChartRendered, ChartRenderedData{
		Selector:   selector,
		Title:      sc.Title,
		Empty:      sc.Empty,
		Cumulative: sc.Cumulative,
		Width:      sc.Width,
		Height:     sc.Height,
		Bars:       len(sc.Bars),
		Keys:       sc.Keys,
	})
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// MarshalMessage encodes msg as JSON.
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
