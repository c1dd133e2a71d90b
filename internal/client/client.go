// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

// Package client talks to the download statistics API. Every call goes
// through an outbound rate limiter and a circuit breaker; failures are
// returned to the caller and never retried.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/dandimap/internal/cache"
	"github.com/tomtom215/dandimap/internal/config"
	"github.com/tomtom215/dandimap/internal/models"
)

// Client is the statistics API client.
type Client struct {
	baseURL  string
	maxBody  int64
	http     *http.Client
	limiter  *rate.Limiter
	cb       *gobreaker.CircuitBreaker[interface{}]
	metadata *cache.Cache[models.DatasetMetadata]
}

// New builds a Client from cfg. cfg is assumed validated.
func New(cfg *config.UpstreamConfig) *Client {
	return &Client{
		baseURL:  cfg.BaseURL,
		maxBody:  cfg.MaxResponseBodyBytes,
		http:     &http.Client{Timeout: cfg.Timeout},
		limiter:  rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		cb:       newCircuitBreaker(cfg),
		metadata: cache.New[models.DatasetMetadata]("metadata", cfg.MetadataCacheTTL),
	}
}

// MetadataCache exposes the enrichment cache so its sweeper can be
// supervised.
func (c *Client) MetadataCache() *cache.Cache[models.DatasetMetadata] {
	return c.metadata
}

// do waits for the limiter then executes req under the breaker.
func (c *Client) do(ctx context.Context, req *apiRequest) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: rate limiter: %w", req.endpoint, err)
	}
	res, err := c.execute(func() (interface{}, error) {
		body, err := executeRequest(ctx, c.http, c.baseURL, c.maxBody, req)
		if err != nil {
			return nil, err
		}
		return &body, nil
	})
	body, err := castResult[[]byte](res, err)
	if err != nil {
		return nil, err
	}
	return *body, nil
}

// fetchJSON performs req and decodes the reply into T.
func fetchJSON[T any](ctx context.Context, c *Client, req *apiRequest) (*T, error) {
	body, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	return decodeJSON[T](req.endpoint, body)
}

// Stats fetches the global summary counters.
func (c *Client) Stats(ctx context.Context) (*models.Stats, error) {
	return fetchJSON[models.Stats](ctx, c, newAPIRequest(http.MethodGet, "/stats"))
}

// Datasets fetches the dataset list.
func (c *Client) Datasets(ctx context.Context) ([]models.Dataset, error) {
	out, err := fetchJSON[[]models.Dataset](ctx, c, newAPIRequest(http.MethodGet, "/datasets"))
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// Regions fetches per-region aggregates for the given filters.
func (c *Client) Regions(ctx context.Context, f Filters) ([]models.Region, error) {
	out, err := fetchJSON[[]models.Region](ctx, c, newAPIRequest(http.MethodGet, "/regions").addFilters(f))
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// GlobalDownloads fetches the global time series.
func (c *Client) GlobalDownloads(ctx context.Context, f Filters) (*models.ChartPayload, error) {
	body, err := c.do(ctx, newAPIRequest(http.MethodGet, "/downloads/global").addFilters(f))
	if err != nil {
		return nil, err
	}
	p, err := models.DecodeChartPayload(body)
	if err != nil {
		return nil, fmt.Errorf("/downloads/global: %w", err)
	}
	return p, nil
}

// RegionDownloads fetches the time series of one region. The code keeps its
// "/" separator in the path.
func (c *Client) RegionDownloads(ctx context.Context, code string, f Filters) (*models.ChartPayload, error) {
	req := newAPIRequest(http.MethodGet, "/downloads/region").
		withPath("/downloads/region/" + escapeRegionPath(code)).
		addFilters(f)
	body, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	p, err := models.DecodeChartPayload(body)
	if err != nil {
		return nil, fmt.Errorf("/downloads/region: %w", err)
	}
	return p, nil
}

// DatasetsMetadata fetches archive metadata for ids in one batch. The
// upstream pads ids and fills in totals from the provided map.
func (c *Client) DatasetsMetadata(ctx context.Context, ids []string, totals map[string]int64) (*models.MetadataResponse, error) {
	if totals == nil {
		totals = map[string]int64{}
	}
	req := newAPIRequest(http.MethodPost, "/dandisets/metadata").
		withBody(models.MetadataRequest{DatasetIDs: ids, DatasetTotals: totals})
	return fetchJSON[models.MetadataResponse](ctx, c, req)
}

// DatasetDetails fetches the detail record for one dataset.
func (c *Client) DatasetDetails(ctx context.Context, id string) (*models.DatasetDetails, error) {
	req := newAPIRequest(http.MethodGet, "/dataset/details").
		withPath("/dataset/" + url.PathEscape(id) + "/details")
	return fetchJSON[models.DatasetDetails](ctx, c, req)
}

// FeaturedDatasets fetches the curated highlight list.
func (c *Client) FeaturedDatasets(ctx context.Context) (*models.FeaturedDatasets, error) {
	return fetchJSON[models.FeaturedDatasets](ctx, c, newAPIRequest(http.MethodGet, "/featured-dandisets"))
}
