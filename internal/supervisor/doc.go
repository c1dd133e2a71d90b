// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

/*
Package supervisor runs the long-lived parts of dandimap under a suture/v4
supervisor tree.

The tree has three layers, each its own supervisor so that repeated
failures in one layer back off without stopping the others:

	dandimap (root)
	├── cache-layer      metadata cache sweeper
	├── messaging-layer  WebSocket hub, initial dashboard load
	└── api-layer        HTTP server

Supervisor events are logged through sutureslog, bridged to zerolog with
logging.NewSlogLogger.

Services that wrap non-suture components live in the services subpackage.
*/
package supervisor
