// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helpnest/internal/models"
)

type fakeRuns struct {
	runs      []models.GenerationRun
	err       error
	lastLimit int
}

func (f *fakeRuns) Recent(_ context.Context, limit int) ([]models.GenerationRun, error) {
	f.lastLimit = limit
	return f.runs, f.err
}

// statusBody runs the status handler and decodes its response.
func statusBody(t *testing.T, a *Admin) map[string]any {
	t.Helper()
	rr := httptest.NewRecorder()
	a.Status(rr, httptest.NewRequest(http.MethodGet, "/admin/sitemap/status", nil))

	var body map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	return body
}

func TestAdminGenerate(t *testing.T) {
	res := singleResult("geography unavailable: connection refused", "service 42: slug collision on \"wifi-setup\",\nusing \"wifi-setup-2\"")
	trig := &fakeTrigger{next: res}
	a := NewAdmin(trig, nil)

	rr := httptest.NewRecorder()
	a.Generate(rr, httptest.NewRequest(http.MethodPost, "/admin/sitemap/generate", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, trig.calls, "GenerateNow calls")
	assert.Equal(t, `attachment; filename="sitemap.xml"`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, XMLContentType, rr.Header().Get("Content-Type"))
	assert.Equal(t, "10", rr.Header().Get(HeaderURLCount))
	assert.Equal(t, "1", rr.Header().Get(HeaderPages))
	assert.Equal(t, res.RunID.String(), rr.Header().Get(HeaderRunID))

	warn := rr.Header().Get(HeaderWarnings)
	assert.Contains(t, warn, "geography unavailable")
	assert.Contains(t, warn, "wifi-setup-2")
	assert.NotContains(t, warn, "\n", "warnings header contains control characters")
	assert.NotContains(t, warn, "\r", "warnings header contains control characters")

	assert.Empty(t, rr.Header().Get(HeaderStale), "fresh result must not be marked stale")
	assert.Equal(t, "<urlset>static</urlset>", rr.Body.String())
}

func TestAdminGenerateNoWarnings(t *testing.T) {
	a := NewAdmin(&fakeTrigger{next: indexedResult()}, nil)

	rr := httptest.NewRecorder()
	a.Generate(rr, httptest.NewRequest(http.MethodPost, "/admin/sitemap/generate", nil))

	assert.NotContains(t, rr.Header(), HeaderWarnings)
}

func TestAdminGenerateFailure(t *testing.T) {
	t.Run("serves previous result", func(t *testing.T) {
		prev := indexedResult()
		a := NewAdmin(&fakeTrigger{current: prev, err: errBoom}, nil)

		rr := httptest.NewRecorder()
		a.Generate(rr, httptest.NewRequest(http.MethodPost, "/admin/sitemap/generate", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "true", rr.Header().Get(HeaderStale))
		assert.Contains(t, rr.Header().Get(HeaderWarnings), "boom")
		assert.Equal(t, string(prev.Root.Body), rr.Body.String())
	})

	t.Run("nothing to fall back to", func(t *testing.T) {
		a := NewAdmin(&fakeTrigger{err: errBoom}, nil)

		rr := httptest.NewRecorder()
		a.Generate(rr, httptest.NewRequest(http.MethodPost, "/admin/sitemap/generate", nil))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	})
}

func TestAdminStatus(t *testing.T) {
	t.Run("before the first generation", func(t *testing.T) {
		body := statusBody(t, NewAdmin(&fakeTrigger{pending: 3}, nil))

		assert.Equal(t, false, body["generated"])
		assert.Equal(t, float64(3), body["pending_events"])
		assert.NotContains(t, body, "generated_at")
		assert.NotContains(t, body, "cached_run_id")
	})

	t.Run("after a generation", func(t *testing.T) {
		res := indexedResult()
		a := NewAdmin(&fakeTrigger{current: res}, nil)

		rr := httptest.NewRecorder()
		a.Status(rr, httptest.NewRequest(http.MethodGet, "/admin/sitemap/status", nil))

		var body struct {
			Generated   bool           `json:"generated"`
			RunID       uuid.UUID      `json:"run_id"`
			GeneratedAt time.Time      `json:"generated_at"`
			URLCount    int            `json:"url_count"`
			PageCount   int            `json:"page_count"`
			Index       bool           `json:"index"`
			Tiers       map[string]int `json:"tiers"`
			Warnings    []string       `json:"warnings"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))

		assert.True(t, body.Generated)
		assert.Equal(t, res.RunID, body.RunID)
		assert.True(t, body.GeneratedAt.Equal(res.GeneratedAt), "generated_at = %v", body.GeneratedAt)
		assert.Equal(t, 15, body.URLCount)
		assert.Equal(t, 2, body.PageCount)
		assert.True(t, body.Index)
		assert.Equal(t, 5, body.Tiers["category"])
		assert.NotNil(t, body.Warnings, "warnings must be a list")
		assert.Empty(t, body.Warnings)
	})

	t.Run("cached run from another instance", func(t *testing.T) {
		cached := uuid.New().String()
		body := statusBody(t, NewAdmin(&fakeTrigger{}, nil).WithCache(fakeCachedRun(cached)))

		assert.Equal(t, false, body["generated"])
		assert.Equal(t, cached, body["cached_run_id"])
	})

	t.Run("empty cache", func(t *testing.T) {
		body := statusBody(t, NewAdmin(&fakeTrigger{}, nil).WithCache(fakeCachedRun("")))

		assert.NotContains(t, body, "cached_run_id")
	})
}

func TestAdminRuns(t *testing.T) {
	runs := &fakeRuns{runs: []models.GenerationRun{{ID: uuid.New(), Reason: "manual", URLCount: 35, PageCount: 4}}}
	a := NewAdmin(&fakeTrigger{}, runs)

	tests := []struct {
		query     string
		want      int
		wantLimit int
	}{
		{"", http.StatusOK, defaultRunsLimit},
		{"?limit=5", http.StatusOK, 5},
		{"?limit=1000", http.StatusOK, maxRunsLimit},
		{"?limit=0", http.StatusBadRequest, 0},
		{"?limit=abc", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			runs.lastLimit = 0
			rr := httptest.NewRecorder()
			a.Runs(rr, httptest.NewRequest(http.MethodGet, "/admin/sitemap/runs"+tt.query, nil))

			require.Equal(t, tt.want, rr.Code)
			assert.Equal(t, tt.wantLimit, runs.lastLimit)
		})
	}

	t.Run("store failure", func(t *testing.T) {
		a := NewAdmin(&fakeTrigger{}, &fakeRuns{err: errBoom})
		rr := httptest.NewRecorder()
		a.Runs(rr, httptest.NewRequest(http.MethodGet, "/admin/sitemap/runs", nil))
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})

	t.Run("no log configured", func(t *testing.T) {
		a := NewAdmin(&fakeTrigger{}, nil)
		rr := httptest.NewRecorder()
		a.Runs(rr, httptest.NewRequest(http.MethodGet, "/admin/sitemap/runs", nil))
		assert.JSONEq(t, "[]", rr.Body.String())
	})
}
