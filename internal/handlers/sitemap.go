// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"helpnest/internal/sitemap"
)

// XMLContentType is the media type of every served sitemap document.
const XMLContentType = "application/xml; charset=utf-8"

// Generation is the part of the regeneration trigger the handlers use.
type Generation interface {
	Current() *sitemap.Result
	GenerateNow(ctx context.Context) (*sitemap.Result, error)
}

// DocumentReader reads documents of the current generation from a shared
// cache, e.g. cache.DocumentCache.
type DocumentReader interface {
	Get(ctx context.Context, name string) (sitemap.Document, bool)
}

// Sitemap serves the public sitemap documents. It answers from the
// in-memory result first, then from the shared document cache, and only
// generates on demand when neither has anything yet.
type Sitemap struct {
	gen   Generation
	cache DocumentReader
}

// NewSitemap creates the public sitemap handlers. cache may be nil.
func NewSitemap(gen Generation, cache DocumentReader) *Sitemap {
	return &Sitemap{gen: gen, cache: cache}
}

// Root serves /sitemap.xml: the index, or the only page when everything
// fits on one.
func (s *Sitemap) Root(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.lookup(r.Context(), sitemap.RootName, func(res *sitemap.Result) (sitemap.Document, bool) {
		return res.Root, true
	})
	if !ok {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}
	serveDocument(w, r, doc)
}

// Page serves /sitemaps/sitemap-{n}.xml.
func (s *Sitemap) Page(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil || n < 1 {
		http.NotFound(w, r)
		return
	}

	name := sitemap.PagePath(n)[1:]
	doc, ok := s.lookup(r.Context(), name, func(res *sitemap.Result) (sitemap.Document, bool) {
		d, err := res.PageDocument(n)
		return d, err == nil
	})
	if !ok {
		http.NotFound(w, r)
		return
	}
	serveDocument(w, r, doc)
}

// lookup resolves a document by name. pick extracts it from a result.
func (s *Sitemap) lookup(ctx context.Context, name string, pick func(*sitemap.Result) (sitemap.Document, bool)) (sitemap.Document, bool) {
	if res := s.gen.Current(); res != nil {
		return pick(res)
	}

	if s.cache != nil {
		if doc, ok := s.cache.Get(ctx, name); ok {
			return doc, true
		}
	}

	res, err := s.gen.GenerateNow(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("on-demand sitemap generation failed", "document", name, "error", err)
		}
		return sitemap.Document{}, false
	}
	return pick(res)
}

// serveDocument writes doc with its entity tag and answers conditional
// requests with 304.
func serveDocument(w http.ResponseWriter, r *http.Request, doc sitemap.Document) {
	h := w.Header()
	h.Set("Content-Type", XMLContentType)
	h.Set("Cache-Control", "public, max-age=300")
	if doc.ETag != "" {
		h.Set("ETag", doc.ETag)
		if etagMatches(r.Header.Get("If-None-Match"), doc.ETag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	h.Set("Content-Length", strconv.Itoa(len(doc.Body)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write(doc.Body)
	}
}

// etagMatches implements the weak comparison If-None-Match uses.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
