// DANDI Usage Map - Download Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dandimap

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	requestIDKey  contextKey = "request_id"
	refreshIDKey  contextKey = "refresh_id"
	ctxLoggerKey  contextKey = "logger"
	shortIDLength            = 8
)

// GenerateRequestID returns a full UUID for an inbound HTTP request.
func GenerateRequestID() string {
	return uuid.New().String()
}

// GenerateRefreshID returns a short id tying together the upstream calls of
// one dashboard refresh.
func GenerateRefreshID() string {
	return uuid.New().String()[:shortIDLength]
}

// ContextWithRequestID stores an HTTP request id.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request id or "".
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithRefreshID stores a refresh id.
//
//	ctx = logging.ContextWithRefreshID(ctx, logging.GenerateRefreshID())
func ContextWithRefreshID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, refreshIDKey, id)
}

// RefreshIDFromContext returns the refresh id or "".
func RefreshIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(refreshIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithLogger stores a preconfigured logger in ctx.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func ContextWithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey, logger)
}

// Ctx returns a logger carrying the request and refresh ids found in ctx.
//
//	logging.Ctx(ctx).Info().Msg("Chart rendered")
func Ctx(ctx context.Context) *zerolog.Logger {
	base, ok := ctx.Value(ctxLoggerKey).(zerolog.Logger)
	if !ok {
		base = Logger()
	}

	lc := base.With()
	if id := RequestIDFromContext(ctx); id != "" {
		lc = lc.Str("request_id", id)
	}
	if id := RefreshIDFromContext(ctx); id != "" {
		lc = lc.Str("refresh_id", id)
	}
	l := lc.Logger()
	return &l
}
