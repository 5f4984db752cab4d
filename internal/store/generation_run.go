// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// generation_run.go records sitemap generation runs in the database for
// audit and debugging purposes. Each entry captures why the run happened,
// how large the output was and which warnings it raised.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"helpnest/internal/models"
)

// GenerationRunStore handles generation log operations.
type GenerationRunStore struct {
	db *sql.DB
}

// NewGenerationRunStore creates a new GenerationRunStore.
func NewGenerationRunStore(db *sql.DB) *GenerationRunStore {
	return &GenerationRunStore{db: db}
}

// Record stores a generation run. Recording is best-effort: failures are
// logged and otherwise ignored.
func (s *GenerationRunStore) Record(ctx context.Context, run models.GenerationRun) {
	warnings := run.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	payload, err := json.Marshal(warnings)
	if err != nil {
		slog.Warn("failed to encode generation warnings", "run_id", run.ID, "error", err)
		return
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO generation_runs (id, reason, url_count, page_count, warnings, duration_ms, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, run.ID, run.Reason, run.URLCount, run.PageCount, payload, run.DurationMS, run.GeneratedAt)
	if err != nil {
		slog.Warn("failed to log generation run",
			"run_id", run.ID,
			"reason", run.Reason,
			"error", err,
		)
		return
	}
	slog.Debug("generation run logged", "run_id", run.ID, "reason", run.Reason, "degraded", run.Degraded())
}

// Recent returns the most recent generation runs, newest first.
func (s *GenerationRunStore) Recent(ctx context.Context, limit int) ([]models.GenerationRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, reason, url_count, page_count, warnings, duration_ms, generated_at
		FROM generation_runs
		ORDER BY generated_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query generation runs: %w", err)
	}
	defer rows.Close()

	var runs []models.GenerationRun
	for rows.Next() {
		var (
			r        models.GenerationRun
			warnings []byte
		)
		if err := rows.Scan(&r.ID, &r.Reason, &r.URLCount, &r.PageCount, &warnings, &r.DurationMS, &r.GeneratedAt); err != nil {
			return nil, fmt.Errorf("scan generation run: %w", err)
		}
		if err := json.Unmarshal(warnings, &r.Warnings); err != nil {
			return nil, fmt.Errorf("decode generation warnings: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
