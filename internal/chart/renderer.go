// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

// Package chart lays out the stacked download chart and writes it as SVG,
// an interactive ECharts page or a PNG image.
//
// A Renderer owns named mount points. Rendering into a mount replaces its
// previous scene, legend toggles restyle segments without touching the
// layout, and resizes are debounced before the last payload is laid out
// again at the new size.
package chart

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/dandimap/internal/logging"
	"github.com/tomtom215/dandimap/internal/metrics"
	"github.com/tomtom215/dandimap/internal/models"
	"github.com/tomtom215/dandimap/internal/timeseries"
)

// DefaultEmptyMessage is shown when a render has no records.
const DefaultEmptyMessage = "No download data for the selected filters"

var (
	// ErrNoMount is returned for a selector that was never mounted.
	ErrNoMount = errors.New("chart: no such mount")

	// ErrUnknownKey is returned when toggling a key the scene does not stack.
	ErrUnknownKey = errors.New("chart: key is not in the current chart")
)

// Options control one render.
type Options struct {
	Cumulative    bool
	SingleDataset bool   // a single dataset filter is active
	EmptyMessage  string // placeholder text; DefaultEmptyMessage when empty
}

// Listener is told about every scene a mount publishes.
type Listener interface {
	ChartRendered(selector string, scene *Scene)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(selector string, scene *Scene)

// ChartRendered calls f.
func (f ListenerFunc) ChartRendered(selector string, scene *Scene) { f(selector, scene) }

// RendererConfig configures a Renderer.
type RendererConfig struct {
	Palette        Palette
	ResizeDebounce time.Duration
	EmptyMessage   string
}

// mount is one drawing target.
type mount struct {
	width, height int
	payload       *models.ChartPayload
	title         string
	opts          Options
	hidden        map[string]bool
	scene         *Scene
	resize        *Debouncer
}

// Renderer draws charts into mounts.
type Renderer struct {
	mu        sync.RWMutex
	mounts    map[string]*mount
	palette   Palette
	debounce  time.Duration
	emptyMsg  string
	listeners []Listener
}

// NewRenderer returns a Renderer. Resize windows below MinResizeDebounce are
// raised to it.
func NewRenderer(cfg RendererConfig) *Renderer {
	if len(cfg.Palette) == 0 {
		cfg.Palette = DefaultPalette
	}
	if cfg.ResizeDebounce == 0 {
		cfg.ResizeDebounce = DefaultResizeDebounce
	}
	if cfg.ResizeDebounce < MinResizeDebounce {
		cfg.ResizeDebounce = MinResizeDebounce
	}
	if cfg.EmptyMessage == "" {
		cfg.EmptyMessage = DefaultEmptyMessage
	}
	return &Renderer{
		mounts:   make(map[string]*mount),
		palette:  cfg.Palette,
		debounce: cfg.ResizeDebounce,
		emptyMsg: cfg.EmptyMessage,
	}
}

// AddListener registers l for future scenes.
func (r *Renderer) AddListener(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

// Mount creates a drawing target of the given size. Mounting an existing
// selector only changes its size.
func (r *Renderer) Mount(selector string, width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.mounts[selector]; ok {
		m.width, m.height = width, height
		return
	}
	r.mounts[selector] = &mount{
		width:  width,
		height: height,
		hidden: make(map[string]bool),
		resize: NewDebouncer(r.debounce),
	}
}

// Render replaces the mount's scene with payload laid out under title.
func (r *Renderer) Render(selector string, payload *models.ChartPayload, title string, opts Options) (*Scene, error) {
	r.mu.Lock()
	m, ok := r.mounts[selector]
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrNoMount, selector)
	}
	m.payload, m.title, m.opts = payload, title, opts
	sc := r.draw(selector, m)
	listeners := r.listeners
	r.mu.Unlock()

	r.notify(listeners, selector, sc)
	return sc, nil
}

// draw lays out m's stored payload. Caller holds r.mu.
func (r *Renderer) draw(selector string, m *mount) *Scene {
	series := timeseries.BuildActiveSeries(m.payload, timeseries.Options{Cumulative: m.opts.Cumulative})
	metrics.RecordChartRender(series.Empty(), series.Dropped)
	if series.Dropped > 0 {
		logging.Debug().Str("selector", selector).Int("dropped", series.Dropped).Msg("Dropped records with unparseable dates")
	}

	var sc *Scene
	if series.Empty() {
		msg := m.opts.EmptyMessage
		if msg == "" {
			msg = r.emptyMsg
		}
		sc = emptyScene(m.title, msg, m.width, m.height)
	} else {
		// Hidden keys survive only while they stay active.
		for k := range m.hidden {
			if !contains(series.Active, k) {
				delete(m.hidden, k)
			}
		}
		sc = layout(series, m.title, m.width, m.height, m.opts.SingleDataset, r.palette, m.hidden)
	}
	sc.Selector = selector
	m.scene = sc
	return sc
}

// Scene returns the mount's current scene, or nil before the first render.
func (r *Renderer) Scene(selector string) (*Scene, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.mounts[selector]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoMount, selector)
	}
	return m.scene, nil
}

// ToggleLegend flips the visibility of key's segments and reports whether
// the key is now hidden. Scales and positions are left as they are.
func (r *Renderer) ToggleLegend(selector, key string) (bool, error) {
	r.mu.Lock()
	m, ok := r.mounts[selector]
	if !ok {
		r.mu.Unlock()
		return false, fmt.Errorf("%w: %s", ErrNoMount, selector)
	}
	if m.scene == nil || m.scene.Empty || !m.scene.HasKey(key) {
		r.mu.Unlock()
		return false, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	hidden := !m.hidden[key]
	if hidden {
		m.hidden[key] = true
	} else {
		delete(m.hidden, key)
	}
	m.scene = m.scene.withKeyOpacity(key, hidden)
	sc := m.scene
	listeners := r.listeners
	r.mu.Unlock()

	r.notify(listeners, selector, sc)
	return hidden, nil
}

// Resize records a container size change. The mount is laid out again from
// its last payload once resizes stop arriving for the debounce window.
func (r *Renderer) Resize(selector string, width, height int) error {
	r.mu.RLock()
	m, ok := r.mounts[selector]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoMount, selector)
	}
	m.resize.Trigger(func() { r.applyResize(selector, width, height) })
	return nil
}

func (r *Renderer) applyResize(selector string, width, height int) {
	r.mu.Lock()
	m, ok := r.mounts[selector]
	if !ok {
		r.mu.Unlock()
		return
	}
	m.width, m.height = width, height
	if m.scene == nil {
		r.mu.Unlock()
		return
	}
	sc := r.draw(selector, m)
	listeners := r.listeners
	r.mu.Unlock()

	logging.Debug().Str("selector", selector).Int("width", width).Int("height", height).Msg("Chart resized")
	r.notify(listeners, selector, sc)
}

// Close cancels pending resizes.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.mounts {
		m.resize.Stop()
	}
}

func (r *Renderer) notify(listeners []Listener, selector string, sc *Scene) {
	for _, l := range listeners {
		l.ChartRendered(selector, sc)
	}
}

func contains(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
