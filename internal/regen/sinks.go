// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package regen

import (
	"context"
	"log/slog"

	"helpnest/internal/models"
	"helpnest/internal/sitemap"
)

// DocumentSaver stores rendered documents, e.g. cache.DocumentCache.
type DocumentSaver interface {
	Save(ctx context.Context, res *sitemap.Result) error
}

// SitemapPublisher uploads rendered documents, e.g. storage.Client.
type SitemapPublisher interface {
	PublishSitemap(ctx context.Context, res *sitemap.Result) error
}

// RunRecorder keeps the generation log, e.g. store.GenerationRunStore.
type RunRecorder interface {
	Record(ctx context.Context, run models.GenerationRun)
}

// RunObserver records run metrics, e.g. metrics.Metrics.
type RunObserver interface {
	ObserveRun(reason string, res *sitemap.Result, err error)
}

// CacheSink saves successful results to the shared document cache.
func CacheSink(c DocumentSaver) Sink {
	return SinkFunc(func(ctx context.Context, run Run) {
		if run.Err != nil {
			return
		}
		if err := c.Save(ctx, run.Result); err != nil {
			slog.Warn("failed to cache sitemap documents", "run_id", run.Result.RunID, "error", err)
		}
	})
}

// PublishSink uploads successful results to object storage.
func PublishSink(p SitemapPublisher) Sink {
	return SinkFunc(func(ctx context.Context, run Run) {
		if run.Err != nil {
			return
		}
		if err := p.PublishSitemap(ctx, run.Result); err != nil {
			slog.Warn("failed to publish sitemap", "run_id", run.Result.RunID, "error", err)
		}
	})
}

// RecordSink writes successful runs to the generation log.
func RecordSink(r RunRecorder) Sink {
	return SinkFunc(func(ctx context.Context, run Run) {
		if run.Err != nil {
			return
		}
		r.Record(ctx, NewGenerationRun(run.Reason, run.Result))
	})
}

// MetricsSink observes every run, failed ones included.
func MetricsSink(o RunObserver) Sink {
	return SinkFunc(func(_ context.Context, run Run) {
		o.ObserveRun(run.Reason, run.Result, run.Err)
	})
}

// NewGenerationRun builds the log row for a result.
func NewGenerationRun(reason string, res *sitemap.Result) models.GenerationRun {
	return models.GenerationRun{
		ID:          res.RunID,
		Reason:      reason,
		URLCount:    res.URLCount,
		PageCount:   res.PageCount(),
		Warnings:    res.Warnings,
		DurationMS:  res.Duration.Milliseconds(),
		GeneratedAt: res.GeneratedAt,
	}
}
