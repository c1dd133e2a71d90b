// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package services

import (
	"context"
	"fmt"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/dandimap/internal/logging"
)

// Loader is satisfied by *dashboard.Dashboard.
type Loader interface {
	Load(ctx context.Context) error
}

// DashboardLoaderService performs the initial dashboard load.
//
// The statistics API may still be starting when the dashboard comes up, so
// the first load is supervised rather than run inline:
//
//  1. Load fetches reference data, regions and the first chart
//  2. A failure is returned and suture retries with its failure backoff
//  3. The first success runs onLoaded (readiness) and returns
//     suture.ErrDoNotRestart so the service leaves the tree
//
// Example usage:
//
//	svc := services.NewDashboardLoaderService(dash, handler.MarkLoaded)
//	tree.AddMessagingService(svc)
type DashboardLoaderService struct {
	loader   Loader
	onLoaded func()
	name     string
}

// NewDashboardLoaderService wraps loader. onLoaded may be nil.
func NewDashboardLoaderService(loader Loader, onLoaded func()) *DashboardLoaderService {
	return &DashboardLoaderService{loader: loader, onLoaded: onLoaded, name: "dashboard-loader"}
}

// Serve implements suture.Service. A load aborted by cancellation returns
// ctx.Err() without a warning.
func (s *DashboardLoaderService) Serve(ctx context.Context) error {
	if err := s.loader.Load(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logging.Warn().Err(err).Msg("Initial dashboard load failed, will retry")
		return fmt.Errorf("initial load: %w", err)
	}
	logging.Info().Msg("Dashboard loaded")
	if s.onLoaded != nil {
		s.onLoaded()
	}
	return suture.ErrDoNotRestart
}

// String names the service in supervisor logs.
func (s *DashboardLoaderService) String() string {
	return s.name
}
