// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// generator.go runs the whole pipeline: snapshot fetch, enumeration,
// partitioning and rendering. Fetch failures degrade the output instead of
// failing the run; invariant violations fail it.
package sitemap

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"helpnest/internal/models"
)

// DefaultFetchTimeout bounds each provider call.
const DefaultFetchTimeout = 10 * time.Second

// RootName is the document name of the top-level sitemap.
const RootName = "sitemap.xml"

// CatalogProvider supplies the active catalog.
type CatalogProvider interface {
	ListActiveCategories(ctx context.Context) ([]models.Category, error)
	ListActiveServices(ctx context.Context) ([]models.Service, error)
}

// GeographyProvider supplies countries with nested states and cities.
type GeographyProvider interface {
	ListCountries(ctx context.Context) ([]models.Country, error)
}

// Config configures a Generator.
type Config struct {
	BaseURL      string
	Capacity     int
	Tiers        TierTable
	FetchTimeout time.Duration

	// Now returns the generation time. Defaults to time.Now.
	Now func() time.Time
}

// Document is one rendered sitemap file.
type Document struct {
	Name string // "sitemap.xml" or "sitemaps/sitemap-N.xml"
	Body []byte
	ETag string
}

// Result is the output of one generation run.
type Result struct {
	RunID       uuid.UUID
	GeneratedAt time.Time
	Duration    time.Duration
	URLCount    int
	Counts      map[Tier]int
	Warnings    []string

	Pages []Page
	Index []IndexEntry // nil when the index layer is collapsed

	Root     Document
	PageDocs []Document // PageDocs[i] renders Pages[i]; empty when collapsed
	Capacity int
	BaseURL  string
}

// HasIndex reports whether the root document is a sitemap index.
func (r *Result) HasIndex() bool {
	return r.Index != nil
}

// PageCount returns the number of pages.
func (r *Result) PageCount() int {
	return len(r.Pages)
}

// Degraded reports whether any source or slug warning was raised.
func (r *Result) Degraded() bool {
	return len(r.Warnings) > 0
}

// PageDocument returns the document for a 1-based page ordinal. Pages are
// only addressable when an index exists.
func (r *Result) PageDocument(ordinal int) (Document, error) {
	if ordinal < 1 || ordinal > len(r.PageDocs) {
		return Document{}, fmt.Errorf("%w: %d", ErrPageNotFound, ordinal)
	}
	return r.PageDocs[ordinal-1], nil
}

// Documents returns the root followed by every page document.
func (r *Result) Documents() []Document {
	docs := make([]Document, 0, len(r.PageDocs)+1)
	docs = append(docs, r.Root)
	return append(docs, r.PageDocs...)
}

// Generator derives the sitemap from fresh provider snapshots.
type Generator struct {
	catalog   CatalogProvider
	geography GeographyProvider
	cfg       Config
}

// NewGenerator validates cfg and returns a Generator.
func NewGenerator(catalog CatalogProvider, geography GeographyProvider, cfg Config) (*Generator, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("sitemap: base URL %q must be an absolute http(s) URL", cfg.BaseURL)
	}
	if cfg.Capacity == 0 {
		cfg.Capacity = DefaultCapacity
	}
	if err := CheckCapacity(cfg.Capacity); err != nil {
		return nil, err
	}
	if cfg.Tiers.Levels == nil {
		cfg.Tiers = DefaultTierTable()
	}
	if err := cfg.Tiers.Validate(); err != nil {
		return nil, fmt.Errorf("sitemap tiers: %w", err)
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Generator{catalog: catalog, geography: geography, cfg: cfg}, nil
}

// Capacity returns the configured page capacity.
func (g *Generator) Capacity() int {
	return g.cfg.Capacity
}

// Snapshot fetches categories, services and countries concurrently. A
// failing source contributes nothing and produces a warning. Only
// cancellation of ctx is returned as an error.
func (g *Generator) Snapshot(ctx context.Context) (Snapshot, []string, error) {
	var (
		snap                   Snapshot
		catErr, svcErr, geoErr error
	)
	eg, gctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		snap.Categories, catErr = fetch(gctx, g.cfg.FetchTimeout, g.catalog, CatalogProvider.ListActiveCategories)
		return ctx.Err()
	})
	eg.Go(func() error {
		snap.Services, svcErr = fetch(gctx, g.cfg.FetchTimeout, g.catalog, CatalogProvider.ListActiveServices)
		return ctx.Err()
	})
	eg.Go(func() error {
		snap.Countries, geoErr = fetch(gctx, g.cfg.FetchTimeout, g.geography, GeographyProvider.ListCountries)
		return ctx.Err()
	})
	if err := eg.Wait(); err != nil {
		return Snapshot{}, nil, err
	}

	var warnings []string
	for _, f := range []struct {
		source string
		err    error
	}{
		{"categories", catErr},
		{"services", svcErr},
		{"geography", geoErr},
	} {
		if f.err == nil {
			continue
		}
		slog.Warn("sitemap source unavailable", "source", f.source, "error", f.err)
		warnings = append(warnings, fmt.Sprintf("%s unavailable: %v", f.source, f.err))
	}
	return snap, warnings, nil
}

// fetch calls one provider method with its own timeout. Data returned
// alongside an error is discarded.
func fetch[P any, T any](ctx context.Context, timeout time.Duration, p P, list func(P, context.Context) ([]T, error)) ([]T, error) {
	if any(p) == nil {
		return nil, fmt.Errorf("no provider configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	items, err := list(p, ctx)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Generate runs the full pipeline. It fails only on cancellation or an
// internal invariant violation; no partial result is returned then.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	start := time.Now()
	generatedAt := g.cfg.Now().UTC()

	snap, warnings, err := g.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	enum, err := Enumerate(ctx, snap, EnumerateOptions{
		BaseURL:     g.cfg.BaseURL,
		Tiers:       g.cfg.Tiers,
		GeneratedAt: generatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("enumerate: %w", err)
	}

	res, err := g.assemble(ctx, enum.Entries, generatedAt)
	if err != nil {
		return nil, err
	}
	res.Counts = enum.Counts
	res.Warnings = append(warnings, enum.Warnings...)
	res.Duration = time.Since(start)

	slog.Info("sitemap generated",
		"run_id", res.RunID,
		"urls", res.URLCount,
		"pages", res.PageCount(),
		"index", res.HasIndex(),
		"warnings", len(res.Warnings),
		"duration", res.Duration.String(),
	)
	return res, nil
}

// assemble partitions entries and renders every document.
func (g *Generator) assemble(ctx context.Context, entries []Entry, generatedAt time.Time) (*Result, error) {
	pages, err := Partition(entries, g.cfg.Capacity)
	if err != nil {
		return nil, err
	}
	if err := ValidatePages(pages, g.cfg.Capacity); err != nil {
		return nil, err
	}

	res := &Result{
		RunID:       uuid.New(),
		GeneratedAt: generatedAt,
		URLCount:    len(entries),
		Pages:       pages,
		Capacity:    g.cfg.Capacity,
		BaseURL:     g.cfg.BaseURL,
	}

	if !NeedsIndex(len(entries), g.cfg.Capacity) {
		single := Page{Ordinal: 1, Entries: entries}
		body, err := RenderPage(single)
		if err != nil {
			return nil, err
		}
		res.Root = newDoc(RootName, body)
		return res, nil
	}

	res.Index = BuildIndex(pages, g.cfg.BaseURL, generatedAt)
	res.PageDocs = make([]Document, 0, len(pages))
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		body, err := RenderPage(p)
		if err != nil {
			return nil, err
		}
		res.PageDocs = append(res.PageDocs, newDoc(PagePath(p.Ordinal)[1:], body))
	}

	body, err := RenderIndex(res.Index)
	if err != nil {
		return nil, err
	}
	res.Root = newDoc(RootName, body)
	return res, nil
}

func newDoc(name string, body []byte) Document {
	return Document{Name: name, Body: body, ETag: ETag(body)}
}

// ETag returns a strong entity tag for a rendered document.
func ETag(body []byte) string {
	return fmt.Sprintf(`"%016x"`, xxhash.Sum64(body))
}
