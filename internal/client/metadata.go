// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package client

import (
	"context"

	"github.com/tomtom215/dandimap/internal/format"
	"github.com/tomtom215/dandimap/internal/logging"
	"github.com/tomtom215/dandimap/internal/metrics"
	"github.com/tomtom215/dandimap/internal/models"
)

// EnrichMetadata returns metadata for ids in input order, ids padded to six
// digits. Cached entries are reused; the rest are fetched in one batch. When
// the batch fails, the missing entries fall back to raw ids and local totals
// and the error is returned alongside the complete result.
func (c *Client) EnrichMetadata(ctx context.Context, ids []string, totals map[string]int64) ([]models.DatasetMetadata, error) {
	out := make([]models.DatasetMetadata, len(ids))
	var missing []string
	missingAt := make(map[string][]int)

	for i, id := range ids {
		padded := format.PadDatasetID(id)
		if m, ok := c.metadata.Get(padded); ok {
			out[i] = withTotal(m, totalFor(totals, id))
			continue
		}
		if _, seen := missingAt[padded]; !seen {
			missing = append(missing, id)
		}
		missingAt[padded] = append(missingAt[padded], i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	fill := func(padded string, m models.DatasetMetadata) {
		for _, i := range missingAt[padded] {
			out[i] = withTotal(m, totalFor(totals, ids[i]))
		}
	}

	resp, err := c.DatasetsMetadata(ctx, missing, totals)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int("datasets", len(missing)).Msg("Metadata enrichment failed, using fallback names")
		metrics.MetadataFallbacks.Add(float64(len(missing)))
		for _, id := range missing {
			padded := format.PadDatasetID(id)
			fill(padded, models.FallbackMetadata(padded, 0))
		}
		return out, err
	}

	got := make(map[string]models.DatasetMetadata, len(resp.Dandisets))
	for _, m := range resp.Dandisets {
		m.ID = format.PadDatasetID(m.ID)
		if m.LandingURL == "" {
			m.LandingURL = models.LandingURL(m.ID, m.Version)
		}
		if m.Version == "" {
			m.Version = models.DraftVersion
		}
		got[m.ID] = m
		if !m.Fallback {
			c.metadata.Set(m.ID, m)
		}
	}
	for _, id := range missing {
		padded := format.PadDatasetID(id)
		m, ok := got[padded]
		if !ok {
			metrics.MetadataFallbacks.Inc()
			m = models.FallbackMetadata(padded, 0)
		}
		fill(padded, m)
	}
	return out, nil
}

// totalFor looks a total up under the raw id, then the padded one.
func totalFor(totals map[string]int64, id string) int64 {
	if v, ok := totals[id]; ok {
		return v
	}
	return totals[format.PadDatasetID(id)]
}

func withTotal(m models.DatasetMetadata, total int64) models.DatasetMetadata {
	m.TotalBytes = total
	m.TotalBytesFormatted = format.FormatBytes(total)
	return m
}
