// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"helpnest/internal/models"
	"helpnest/internal/sitemap"
)

// Response headers of the generate-and-download action.
const (
	HeaderWarnings = "X-Sitemap-Warnings"
	HeaderRunID    = "X-Sitemap-Run-ID"
	HeaderURLCount = "X-Sitemap-URL-Count"
	HeaderPages    = "X-Sitemap-Pages"
	HeaderStale    = "X-Sitemap-Stale"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 100
)

// Regenerator is the trigger as seen by the operator endpoints.
type Regenerator interface {
	Generation
	Pending() int
}

// RunLister reads the generation log, e.g. store.GenerationRunStore.
type RunLister interface {
	Recent(ctx context.Context, limit int) ([]models.GenerationRun, error)
}

// CachedRunReader reports which generation the shared document cache
// serves, e.g. cache.DocumentCache.
type CachedRunReader interface {
	CurrentRun(ctx context.Context) (string, bool)
}

// Admin groups the operator endpoints: generate-and-download, status and
// the generation log.
type Admin struct {
	trigger Regenerator
	runs    RunLister
	cache   CachedRunReader
}

// NewAdmin creates the operator handlers. runs may be nil when no database
// log is kept.
func NewAdmin(trigger Regenerator, runs RunLister) *Admin {
	return &Admin{trigger: trigger, runs: runs}
}

// WithCache makes Status report the run held by the shared document cache.
// That run may come from another instance.
func (a *Admin) WithCache(c CachedRunReader) *Admin {
	a.cache = c
	return a
}

// Generate regenerates synchronously and returns the root document as a
// download. Warnings travel in the X-Sitemap-Warnings header. If the run
// fails while an earlier result exists, that result is served instead and
// marked stale; the operator always gets a usable file.
func (a *Admin) Generate(w http.ResponseWriter, r *http.Request) {
	res, err := a.trigger.GenerateNow(r.Context())
	stale := false
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		prev := a.trigger.Current()
		if prev == nil {
			slog.Error("manual sitemap generation failed", "error", err)
			writeJSONError(w, http.StatusInternalServerError, "sitemap generation failed")
			return
		}
		slog.Warn("manual sitemap generation failed, serving previous result",
			"run_id", prev.RunID,
			"error", err,
		)
		res, stale = prev, true
	}

	warnings := res.Warnings
	if stale {
		warnings = append([]string{"generation failed, serving the previous result: " + err.Error()}, warnings...)
		w.Header().Set(HeaderStale, "true")
	}

	h := w.Header()
	h.Set("Content-Type", XMLContentType)
	h.Set("Content-Disposition", `attachment; filename="`+sitemap.RootName+`"`)
	h.Set(HeaderRunID, res.RunID.String())
	h.Set(HeaderURLCount, strconv.Itoa(res.URLCount))
	h.Set(HeaderPages, strconv.Itoa(res.PageCount()))
	if len(warnings) > 0 {
		h.Set(HeaderWarnings, headerSafe(strings.Join(warnings, "; ")))
	}
	h.Set("ETag", res.Root.ETag)
	w.WriteHeader(http.StatusOK)
	w.Write(res.Root.Body)
}

// statusResponse is the JSON body of the status endpoint.
type statusResponse struct {
	Generated     bool           `json:"generated"`
	RunID         *uuid.UUID     `json:"run_id,omitempty"`
	GeneratedAt   *time.Time     `json:"generated_at,omitempty"`
	DurationMS    int64          `json:"duration_ms,omitempty"`
	URLCount      int            `json:"url_count"`
	PageCount     int            `json:"page_count"`
	Index         bool           `json:"index"`
	Capacity      int            `json:"capacity,omitempty"`
	Tiers         map[string]int `json:"tiers,omitempty"`
	Warnings      []string       `json:"warnings"`
	PendingEvents int            `json:"pending_events"`
	CachedRunID   string         `json:"cached_run_id,omitempty"`
}

// Status reports the current generation: total URLs, pages, last
// generation time and warnings. With a cache attached it also reports the
// cached run, which is all a fresh instance can show before its first
// generation.
func (a *Admin) Status(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Warnings:      []string{},
		PendingEvents: a.trigger.Pending(),
	}
	if a.cache != nil {
		if runID, ok := a.cache.CurrentRun(r.Context()); ok {
			resp.CachedRunID = runID
		}
	}
	if res := a.trigger.Current(); res != nil {
		resp.Generated = true
		resp.RunID = &res.RunID
		resp.GeneratedAt = &res.GeneratedAt
		resp.DurationMS = res.Duration.Milliseconds()
		resp.URLCount = res.URLCount
		resp.PageCount = res.PageCount()
		resp.Index = res.HasIndex()
		resp.Capacity = res.Capacity
		resp.Tiers = make(map[string]int, len(res.Counts))
		for tier, n := range res.Counts {
			resp.Tiers[string(tier)] = n
		}
		if res.Warnings != nil {
			resp.Warnings = res.Warnings
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Runs lists recent generation runs, newest first. ?limit= caps the count.
func (a *Admin) Runs(w http.ResponseWriter, r *http.Request) {
	if a.runs == nil {
		writeJSON(w, http.StatusOK, []models.GenerationRun{})
		return
	}

	limit := defaultRunsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSONError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxRunsLimit)
	}

	runs, err := a.runs.Recent(r.Context(), limit)
	if err != nil {
		slog.Error("list generation runs failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not load generation runs")
		return
	}
	if runs == nil {
		runs = []models.GenerationRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// headerSafe replaces control characters, which are not allowed in header
// values.
func headerSafe(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return ' '
		}
		return r
	}, s)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write JSON response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
