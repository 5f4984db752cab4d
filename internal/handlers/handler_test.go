// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared fakes for the handler tests. Nothing here
// needs PostgreSQL or Valkey.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"helpnest/internal/sitemap"
)

// fakeTrigger implements Regenerator.
type fakeTrigger struct {
	mu      sync.Mutex
	current *sitemap.Result
	next    *sitemap.Result
	err     error
	calls   int
	pending int
}

func (f *fakeTrigger) Current() *sitemap.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *fakeTrigger) GenerateNow(ctx context.Context) (*sitemap.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	f.current = f.next
	return f.next, nil
}

func (f *fakeTrigger) Pending() int { return f.pending }

// fakeCachedRun implements CachedRunReader; "" means nothing is cached.
type fakeCachedRun string

func (f fakeCachedRun) CurrentRun(context.Context) (string, bool) {
	return string(f), f != ""
}

// fakeDocs implements DocumentReader.
type fakeDocs map[string]sitemap.Document

func (f fakeDocs) Get(_ context.Context, name string) (sitemap.Document, bool) {
	d, ok := f[name]
	return d, ok
}

func doc(name, body string) sitemap.Document {
	return sitemap.Document{Name: name, Body: []byte(body), ETag: sitemap.ETag([]byte(body))}
}

// indexedResult has a sitemap index and two pages.
func indexedResult() *sitemap.Result {
	return &sitemap.Result{
		RunID:       uuid.MustParse("0b6f8a52-5d0c-4c1e-9a57-3f0d2f7a9e11"),
		GeneratedAt: time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC),
		Duration:    42 * time.Millisecond,
		URLCount:    15,
		Counts:      map[sitemap.Tier]int{sitemap.TierStatic: 10, sitemap.TierCategory: 5},
		Pages:       make([]sitemap.Page, 2),
		Index:       make([]sitemap.IndexEntry, 2),
		Capacity:    10,
		Root:        doc(sitemap.RootName, "<sitemapindex/>"),
		PageDocs: []sitemap.Document{
			doc("sitemaps/sitemap-1.xml", "<urlset>1</urlset>"),
			doc("sitemaps/sitemap-2.xml", "<urlset>2</urlset>"),
		},
	}
}

// singleResult has everything on the root page.
func singleResult(warnings ...string) *sitemap.Result {
	return &sitemap.Result{
		RunID:       uuid.MustParse("7f1c0f0e-0d43-4d0a-8d8e-5b0e0c7a1d22"),
		GeneratedAt: time.Date(2026, 3, 14, 16, 0, 0, 0, time.UTC),
		URLCount:    10,
		Counts:      map[sitemap.Tier]int{sitemap.TierStatic: 10},
		Warnings:    warnings,
		Pages:       make([]sitemap.Page, 1),
		Capacity:    10,
		Root:        doc(sitemap.RootName, "<urlset>static</urlset>"),
	}
}

var errBoom = errors.New("boom")

// withParams attaches chi URL parameters to r.
func withParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
