// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

// Package dashboard orchestrates fetches and renders. It is the only writer
// of the application state: filter changes and map selections flow in,
// fetches go out through the client, and the chart renderer and map layer
// are redrawn from the results.
//
// Each refresh takes a ticket per request channel. A response is applied
// only while its ticket is the newest, so an older request finishing late
// never overwrites a newer one. The final ticket check and the apply happen
// under one lock, after any metadata enrichment, so a newer refresh that
// completes while an older one is still enriching always wins.
//
// Failed fetches leave every piece of state untouched and raise a single
// Notice. Region selection follows the same rule: the region series is
// fetched first and the map selection is committed only once it arrives.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/dandimap/internal/chart"
	"github.com/tomtom215/dandimap/internal/client"
	"github.com/tomtom215/dandimap/internal/format"
	"github.com/tomtom215/dandimap/internal/geomap"
	"github.com/tomtom215/dandimap/internal/logging"
	"github.com/tomtom215/dandimap/internal/models"
	"github.com/tomtom215/dandimap/internal/state"
	"github.com/tomtom215/dandimap/internal/timeseries"
)

// ChartSelector is the chart mount the dashboard draws into.
const ChartSelector = "#time-series-chart"

// Chart titles.
const (
	GlobalTitle      = "Global downloads"
	RegionTitleFmt   = "Downloads for %s"
	CumulativeSuffix = " (cumulative)"
)

// Fetcher is the subset of the statistics client the dashboard needs.
type Fetcher interface {
	Stats(ctx context.Context) (*models.Stats, error)
	Datasets(ctx context.Context) ([]models.Dataset, error)
	FeaturedDatasets(ctx context.Context) (*models.FeaturedDatasets, error)
	Regions(ctx context.Context, f client.Filters) ([]models.Region, error)
	GlobalDownloads(ctx context.Context, f client.Filters) (*models.ChartPayload, error)
	RegionDownloads(ctx context.Context, code string, f client.Filters) (*models.ChartPayload, error)
	EnrichMetadata(ctx context.Context, ids []string, totals map[string]int64) ([]models.DatasetMetadata, error)
}

// Config tunes the orchestrator.
type Config struct {
	FilterDebounce time.Duration
	RefreshTimeout time.Duration
	Width, Height  int
	EmptyMessage   string
}

// Dashboard wires the fetch layer to the renderers.
type Dashboard struct {
	fetcher  Fetcher
	state    *state.AppState
	chart    *chart.Renderer
	layer    *geomap.Layer
	seq      *client.Sequencer
	debounce *chart.Debouncer
	cfg      Config

	// applyMu serializes chart applies so the ticket check and the
	// render/store pair are atomic.
	applyMu sync.Mutex

	mu        sync.RWMutex
	listeners []DataListener
}

// New builds a Dashboard and mounts its chart.
func New(cfg Config, fetcher Fetcher, st *state.AppState, renderer *chart.Renderer, layer *geomap.Layer) *Dashboard {
	if cfg.FilterDebounce <= 0 {
		cfg.FilterDebounce = 300 * time.Millisecond
	}
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = 30 * time.Second
	}
	if cfg.Width <= 0 {
		cfg.Width = 960
	}
	if cfg.Height <= 0 {
		cfg.Height = 420
	}
	renderer.Mount(ChartSelector, cfg.Width, cfg.Height)
	return &Dashboard{
		fetcher:  fetcher,
		state:    st,
		chart:    renderer,
		layer:    layer,
		seq:      client.NewSequencer(),
		debounce: chart.NewDebouncer(cfg.FilterDebounce),
		cfg:      cfg,
	}
}

// AddListener registers l for updates and notices.
func (d *Dashboard) AddListener(l DataListener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, l)
}

// State returns the application state.
func (d *Dashboard) State() *state.AppState { return d.state }

// Chart returns the chart renderer.
func (d *Dashboard) Chart() *chart.Renderer { return d.chart }

// Layer returns the map layer.
func (d *Dashboard) Layer() *geomap.Layer { return d.layer }

// Load fetches the reference data and performs the first refresh.
func (d *Dashboard) Load(ctx context.Context) error {
	var (
		stats    *models.Stats
		datasets []models.Dataset
		featured *models.FeaturedDatasets
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats, err = d.fetcher.Stats(gctx)
		return err
	})
	g.Go(func() (err error) {
		datasets, err = d.fetcher.Datasets(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		if featured, err = d.fetcher.FeaturedDatasets(gctx); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Featured datasets unavailable")
			featured = &models.FeaturedDatasets{}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		d.notice(ctx, "load", err)
		return err
	}

	for i := range datasets {
		datasets[i].ID = format.PadDatasetID(datasets[i].ID)
		if datasets[i].TotalBytesFormatted == "" {
			datasets[i].TotalBytesFormatted = format.FormatBytes(datasets[i].TotalBytes)
		}
	}
	d.state.SetReference(stats, datasets, featured.Items)
	d.state.MergeMetadata(featured.Items)
	d.publish(Update{Kind: UpdateReference, Filters: d.state.Filters()})

	return d.Refresh(ctx)
}

// Refresh fetches regions and the current chart series and redraws both.
func (d *Dashboard) Refresh(ctx context.Context) error {
	ctx = logging.ContextWithRefreshID(ctx, logging.GenerateRefreshID())
	filters := d.state.Filters()
	selected := d.state.SelectedRegion()
	chartTicket := d.seq.Next(client.ChannelChart)
	regionsTicket := d.seq.Next(client.ChannelRegions)

	var (
		regs    []models.Region
		payload *models.ChartPayload
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		regs, err = d.fetcher.Regions(gctx, clientFilters(filters))
		return err
	})
	g.Go(func() (err error) {
		payload, err = d.fetchSeries(gctx, selected, filters)
		return err
	})
	if err := g.Wait(); err != nil {
		d.notice(ctx, "refresh", err)
		return err
	}

	if d.seq.Accept(client.ChannelRegions, regionsTicket) {
		d.applyRegions(regs, filters)
	}
	d.applyChart(ctx, chartTicket, payload, filters, selected)
	return nil
}

// scopeChart fetches the chart series for region (empty for global) and,
// once it has arrived, runs commit and draws the chart. A failed fetch or
// commit leaves the selection and the chart as they were. When a newer
// chart request was issued meanwhile, commit is not run.
func (d *Dashboard) scopeChart(ctx context.Context, region string, commit func() error) error {
	filters := d.state.Filters()
	ticket := d.seq.Next(client.ChannelChart)

	payload, err := d.fetchSeries(ctx, region, filters)
	if err != nil {
		d.notice(ctx, "chart", err)
		return err
	}

	d.applyMu.Lock()
	if !d.seq.Accept(client.ChannelChart, ticket) {
		d.applyMu.Unlock()
		return nil
	}
	if err := commit(); err != nil {
		d.applyMu.Unlock()
		return err
	}
	d.state.SetSelectedRegion(region)
	d.applyMu.Unlock()

	d.applyChart(ctx, ticket, payload, filters, region)
	return nil
}

func (d *Dashboard) fetchSeries(ctx context.Context, region string, f state.Filters) (*models.ChartPayload, error) {
	if region != "" {
		return d.fetcher.RegionDownloads(ctx, region, clientFilters(f))
	}
	return d.fetcher.GlobalDownloads(ctx, clientFilters(f))
}

func (d *Dashboard) applyRegions(regs []models.Region, f state.Filters) {
	d.layer.RenderRegions(regs)
	d.publish(Update{Kind: UpdateRegions, Filters: f, Markers: len(d.layer.Markers())})
}

// applyChart enriches payload, then renders and stores it if ticket is
// still the newest chart ticket.
func (d *Dashboard) applyChart(ctx context.Context, ticket uint64, payload *models.ChartPayload, f state.Filters, region string) {
	if !d.seq.Accept(client.ChannelChart, ticket) {
		return
	}
	d.enrich(ctx, payload)

	d.applyMu.Lock()
	if !d.seq.Accept(client.ChannelChart, ticket) {
		d.applyMu.Unlock()
		return
	}
	u, err := d.renderLocked(payload, f, region)
	d.applyMu.Unlock()

	if err != nil {
		d.notice(ctx, "render", err)
		return
	}
	d.publish(u)
}

// renderLocked draws payload and records it as the last chart. The caller
// holds applyMu.
func (d *Dashboard) renderLocked(payload *models.ChartPayload, f state.Filters, region string) (Update, error) {
	title := d.title(payload, region, f.Cumulative)
	sc, err := d.chart.Render(ChartSelector, payload, title, chart.Options{
		Cumulative:    f.Cumulative,
		SingleDataset: f.SingleDataset(),
		EmptyMessage:  d.cfg.EmptyMessage,
	})
	if err != nil {
		return Update{}, err
	}
	d.state.SetLastChart(payload, title)
	return Update{Kind: UpdateChart, Filters: f, Title: title, Region: region, Empty: sc.Empty}, nil
}

// enrich loads metadata for the dataset keys of payload. Failure is
// tolerated: fallback entries carry raw ids and local totals.
func (d *Dashboard) enrich(ctx context.Context, payload *models.ChartPayload) {
	if payload.IsRegionBreakdown() || payload.Empty() {
		return
	}
	series := timeseries.BuildActiveSeries(payload, timeseries.Options{})
	var ids []string
	for _, k := range series.Active {
		if format.IsDigits(k) {
			ids = append(ids, k)
		}
	}
	if len(ids) == 0 {
		return
	}
	meta, err := d.fetcher.EnrichMetadata(ctx, ids, series.KeyTotals())
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Dataset metadata unavailable, showing raw identifiers")
	}
	d.state.MergeMetadata(meta)
}

// title names the chart after its scope.
func (d *Dashboard) title(payload *models.ChartPayload, region string, cumulative bool) string {
	t := GlobalTitle
	if region != "" {
		name := payload.RegionName
		if name == "" {
			if m, ok := d.layer.Marker(region); ok {
				name = m.Name
			} else {
				name = format.FormatSeriesLabel(region, true)
			}
		}
		t = fmt.Sprintf(RegionTitleFmt, name)
	}
	if cumulative {
		t += CumulativeSuffix
	}
	return t
}

// UpdateFilters merges u into the current filters. Scheme and cumulative
// changes are redrawn at once; dataset and date changes schedule a
// debounced refresh, so a burst of updates fetches only once.
func (d *Dashboard) UpdateFilters(ctx context.Context, u FilterUpdate) (state.Filters, error) {
	old := d.state.Filters()
	next := u.apply(old)
	if err := ValidateFilters(next); err != nil {
		return old, err
	}
	d.state.SetFilters(next)
	d.publish(Update{Kind: UpdateFilters, Filters: next})

	if next.ColorScheme != old.ColorScheme {
		d.layer.SetScheme(next.ColorScheme)
		d.publish(Update{Kind: UpdateRegions, Filters: next, Markers: len(d.layer.Markers())})
	}

	if needsFetch(old, next) {
		d.debounce.Trigger(func() {
			rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.cfg.RefreshTimeout)
			defer cancel()
			_ = d.Refresh(rctx)
		})
		return next, nil
	}

	if next.Cumulative != old.Cumulative {
		d.rerender(ctx, next)
	}
	return next, nil
}

// rerender draws the stored payload again under new options. No fetch is
// involved, so the stored payload is already enriched.
func (d *Dashboard) rerender(ctx context.Context, f state.Filters) {
	d.applyMu.Lock()
	last := d.state.LastChart()
	if last == nil {
		d.applyMu.Unlock()
		return
	}
	region := ""
	if last.Payload.IsRegionScoped() {
		region = last.Payload.RegionCode
	}
	u, err := d.renderLocked(last.Payload, f, region)
	d.applyMu.Unlock()

	if err != nil {
		d.notice(ctx, "render", err)
		return
	}
	d.publish(u)
}

// SelectRegion scopes the chart to code and selects it on the map.
//
// The flow is:
//  1. Reject codes with no marker before touching the network.
//  2. Fetch the region's series.
//  3. On success, highlight and centre the marker, then draw the chart.
//
// A failed fetch raises one Notice and leaves the previous selection, map
// view and chart in place.
func (d *Dashboard) SelectRegion(ctx context.Context, code string) (geomap.Selection, error) {
	if _, ok := d.layer.Marker(code); !ok {
		return geomap.Selection{}, fmt.Errorf("%w: %s", geomap.ErrUnknownRegion, code)
	}
	var sel geomap.Selection
	committed := false
	err := d.scopeChart(ctx, code, func() (err error) {
		sel, err = d.layer.Select(code)
		committed = err == nil
		return err
	})
	if err != nil {
		return geomap.Selection{}, err
	}
	if !committed {
		// A newer selection or reset overtook this one.
		return d.layer.Selection(), nil
	}
	return sel, nil
}

// ResetSelection returns to the global chart and then clears the map
// selection. A failed fetch keeps the current selection.
func (d *Dashboard) ResetSelection(ctx context.Context) error {
	return d.scopeChart(ctx, "", func() error {
		d.layer.Reset()
		return nil
	})
}

// Close cancels a pending debounced refresh.
func (d *Dashboard) Close() {
	d.debounce.Stop()
}

func (d *Dashboard) publish(u Update) {
	u.Timestamp = time.Now().UTC()
	d.mu.RLock()
	listeners := d.listeners
	d.mu.RUnlock()
	for _, l := range listeners {
		l.DashboardUpdated(u)
	}
}

// notice logs err and raises one Notice. Cancellations are logged only.
func (d *Dashboard) notice(ctx context.Context, op string, err error) {
	if errors.Is(err, context.Canceled) {
		logging.Ctx(ctx).Debug().Str("operation", op).Msg("Dashboard operation cancelled")
		return
	}
	logging.Ctx(ctx).Error().Err(err).Str("operation", op).Msg("Dashboard operation failed")

	n := Notice{Operation: op, Message: noticeMessage(err), Timestamp: time.Now().UTC()}
	d.mu.RLock()
	listeners := d.listeners
	d.mu.RUnlock()
	for _, l := range listeners {
		l.DashboardNotice(n)
	}
}

func noticeMessage(err error) string {
	var he *client.HTTPError
	switch {
	case errors.As(err, &he):
		return fmt.Sprintf("The statistics service answered %d: %s", he.StatusCode, he.Message)
	case errors.Is(err, client.ErrCircuitOpen):
		return "The statistics service is unavailable, try again shortly"
	default:
		return "Could not load download statistics"
	}
}

func clientFilters(f state.Filters) client.Filters {
	return client.Filters{DatasetID: f.DatasetID, StartDate: f.StartDate, EndDate: f.EndDate}
}
