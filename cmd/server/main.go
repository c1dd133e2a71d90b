// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/dandimap/internal/api"
	"github.com/tomtom215/dandimap/internal/chart"
	"github.com/tomtom215/dandimap/internal/client"
	"github.com/tomtom215/dandimap/internal/config"
	"github.com/tomtom215/dandimap/internal/dashboard"
	"github.com/tomtom215/dandimap/internal/geomap"
	"github.com/tomtom215/dandimap/internal/logging"
	"github.com/tomtom215/dandimap/internal/state"
	"github.com/tomtom215/dandimap/internal/supervisor"
	"github.com/tomtom215/dandimap/internal/supervisor/services"
	ws "github.com/tomtom215/dandimap/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("upstream", cfg.Upstream.BaseURL).
		Str("addr", cfg.Server.Addr()).
		Msg("Starting dandimap with supervisor tree")

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}
	for _, origin := range cfg.Security.CORSOrigins {
		if origin == "*" {
			logging.Warn().Msg("CORS allows any origin (CORS_ORIGINS=*); set explicit origins in production")
			break
		}
	}

	upstream := client.New(&cfg.Upstream)

	st := state.New(state.Filters{
		Cumulative:  cfg.Chart.Cumulative,
		ColorScheme: cfg.Map.ColorScheme,
	})
	renderer := chart.NewRenderer(chart.RendererConfig{
		ResizeDebounce: cfg.Chart.ResizeDebounce,
		EmptyMessage:   cfg.Chart.EmptyMessage,
	})
	defer renderer.Close()
	layer := geomap.NewLayer(geomap.Config{
		Scheme:        cfg.Map.ColorScheme,
		Zoom:          cfg.Map.InitialZoom,
		MinSelectZoom: cfg.Map.MinSelectZoom,
		Center:        geomap.Point{Lat: cfg.Map.CenterLat, Lon: cfg.Map.CenterLon},
	}, st)
	dash := dashboard.New(dashboard.Config{
		FilterDebounce: cfg.Chart.FilterDebounce,
		RefreshTimeout: cfg.Upstream.Timeout,
		Width:          cfg.Chart.Width,
		Height:         cfg.Chart.Height,
		EmptyMessage:   cfg.Chart.EmptyMessage,
	}, upstream, st, renderer, layer)
	defer dash.Close()

	hub := ws.NewHub()
	dash.AddListener(hub)
	layer.AddSelectionListener(hub)
	renderer.AddListener(hub)

	handler := api.NewHandler(dash, upstream, hub, cfg)
	router := api.NewRouter(handler, api.ChiMiddlewareConfigFrom(cfg.Security))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * time.Minute,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddCacheService(upstream.MetadataCache())
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddMessagingService(services.NewDashboardLoaderService(dash, handler.MarkLoaded))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("dandimap stopped")
}
