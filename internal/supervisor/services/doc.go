// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

/*
Package services adapts dandimap components to suture.Service.

  - HTTPServerService turns ListenAndServe/Shutdown into Serve(ctx).
  - WebSocketHubService runs the hub's event loop.
  - DashboardLoaderService performs the initial dashboard load, retrying
    through supervisor restarts until it succeeds, then marks the API ready.

The metadata cache implements suture.Service itself and is added to the
tree directly:

	tree.AddCacheService(upstream.MetadataCache())
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddMessagingService(services.NewDashboardLoaderService(dash, handler.MarkLoaded))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
*/
package services
