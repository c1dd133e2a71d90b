// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package client

import (
	"sync"

	"github.com/tomtom215/dandimap/internal/metrics"
)

// Request channels whose responses may arrive out of order.
const (
	ChannelChart   = "chart"
	ChannelRegions = "regions"
)

// Sequencer issues monotonically increasing tickets per channel. Only the
// holder of the latest ticket may apply its response; everything older is
// stale.
type Sequencer struct {
	mu     sync.Mutex
	latest map[string]uint64
}

// NewSequencer returns an empty Sequencer.
func NewSequencer() *Sequencer {
	return &Sequencer{latest: make(map[string]uint64)}
}

// Next issues a new ticket on channel, invalidating all earlier ones.
func (s *Sequencer) Next(channel string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[channel]++
	return s.latest[channel]
}

// IsCurrent reports whether ticket is still the newest on channel.
func (s *Sequencer) IsCurrent(channel string, ticket uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest[channel] == ticket
}

// Accept is IsCurrent that also counts a stale response in metrics.
func (s *Sequencer) Accept(channel string, ticket uint64) bool {
	if s.IsCurrent(channel, ticket) {
		return true
	}
	metrics.RecordStaleResponse(channel)
	return false
}
