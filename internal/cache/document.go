// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// document.go provides a Valkey-backed cache of rendered sitemap documents.
// Every instance behind the load balancer can serve the latest generation
// from here even when it did not run the generation itself.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"helpnest/internal/sitemap"
)

const (
	// documentKeyPrefix is the Valkey key prefix for cached sitemap documents.
	documentKeyPrefix = "sitemap:"

	// currentKey holds the run ID of the latest stored generation.
	currentKey = documentKeyPrefix + "current"

	// DefaultDocumentTTL is how long a stored generation stays cached.
	// Regeneration normally replaces it long before that.
	DefaultDocumentTTL = 24 * time.Hour
)

// DocumentCache stores whole generations: all documents of a run under one
// hash, plus a pointer to the current run. Readers never see a mix of two
// generations.
type DocumentCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDocumentCache creates a new document cache backed by the given Valkey client.
func NewDocumentCache(client *redis.Client, ttl time.Duration) *DocumentCache {
	if ttl == 0 {
		ttl = DefaultDocumentTTL
	}
	return &DocumentCache{client: client, ttl: ttl}
}

func runKey(runID string) string {
	return documentKeyPrefix + "run:" + runID
}

func etagField(name string) string {
	return "etag:" + name
}

// Save stores every document of res and makes it the current generation.
func (dc *DocumentCache) Save(ctx context.Context, res *sitemap.Result) error {
	key := runKey(res.RunID.String())
	fields := make([]any, 0, 4*(len(res.PageDocs)+1))
	for _, doc := range res.Documents() {
		fields = append(fields, doc.Name, doc.Body, etagField(doc.Name), doc.ETag)
	}

	_, err := dc.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fields...)
		pipe.Expire(ctx, key, dc.ttl)
		pipe.Set(ctx, currentKey, res.RunID.String(), dc.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache sitemap run %s: %w", res.RunID, err)
	}
	slog.Debug("sitemap documents cached", "run_id", res.RunID, "documents", len(fields)/4)
	return nil
}

// Get returns a document of the current generation by name
// ("sitemap.xml", "sitemaps/sitemap-3.xml"). Errors are logged and
// reported as a miss.
func (dc *DocumentCache) Get(ctx context.Context, name string) (sitemap.Document, bool) {
	runID, err := dc.client.Get(ctx, currentKey).Result()
	if errors.Is(err, redis.Nil) {
		return sitemap.Document{}, false
	}
	if err != nil {
		slog.Warn("sitemap cache get error", "name", name, "error", err)
		return sitemap.Document{}, false
	}

	vals, err := dc.client.HMGet(ctx, runKey(runID), name, etagField(name)).Result()
	if err != nil {
		slog.Warn("sitemap cache get error", "name", name, "run_id", runID, "error", err)
		return sitemap.Document{}, false
	}
	body, ok1 := vals[0].(string)
	etag, ok2 := vals[1].(string)
	if !ok1 || !ok2 {
		return sitemap.Document{}, false
	}
	slog.Debug("sitemap cache hit", "name", name, "run_id", runID)
	return sitemap.Document{Name: name, Body: []byte(body), ETag: etag}, true
}

// CurrentRun returns the run ID of the cached generation.
func (dc *DocumentCache) CurrentRun(ctx context.Context) (string, bool) {
	runID, err := dc.client.Get(ctx, currentKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("sitemap cache get error", "key", currentKey, "error", err)
		}
		return "", false
	}
	return runID, true
}
