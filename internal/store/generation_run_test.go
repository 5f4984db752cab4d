// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helpnest/internal/models"
)

func TestGenerationRunStoreRecord(t *testing.T) {
	db, mock := mockDB(t)
	s := NewGenerationRunStore(db)

	run := models.GenerationRun{
		ID: uuid.New(), Reason: "manual", URLCount: 35, PageCount: 4,
		DurationMS: 12, GeneratedAt: stamp,
	}
	mock.ExpectExec("INSERT INTO generation_runs").
		WithArgs(run.ID, "manual", 35, 4, []byte("[]"), int64(12), stamp).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s.Record(context.Background(), run)
}

func TestGenerationRunStoreRecord_FailureIsSwallowed(t *testing.T) {
	db, mock := mockDB(t)
	s := NewGenerationRunStore(db)

	mock.ExpectExec("INSERT INTO generation_runs").WillReturnError(errDB)

	// Best-effort: must not panic or block.
	s.Record(context.Background(), models.GenerationRun{ID: uuid.New(), Warnings: []string{"geography unavailable"}})
}

func TestGenerationRunStoreRecent(t *testing.T) {
	db, mock := mockDB(t)
	s := NewGenerationRunStore(db)

	id := uuid.New()
	mock.ExpectQuery("FROM generation_runs").WithArgs(5).WillReturnRows(
		sqlmock.NewRows([]string{"id", "reason", "url_count", "page_count", "warnings", "duration_ms", "generated_at"}).
			AddRow(id.String(), "catalog_change", 14, 1, []byte(`["categories unavailable: timeout"]`), int64(40), stamp))

	runs, err := s.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	r := runs[0]
	assert.Equal(t, id, r.ID)
	assert.Equal(t, "catalog_change", r.Reason)
	assert.Equal(t, 14, r.URLCount)
	assert.True(t, r.Degraded())
	assert.Equal(t, []string{"categories unavailable: timeout"}, r.Warnings)
}

// TestGenerationRunStore_Integration round-trips a run through Postgres.
func TestGenerationRunStore_Integration(t *testing.T) {
	db := testDB(t)
	s := NewGenerationRunStore(db)

	run := models.GenerationRun{
		ID: uuid.New(), Reason: "scheduled", URLCount: 10, PageCount: 1,
		Warnings: []string{"geography unavailable: timeout"}, DurationMS: 3, GeneratedAt: stamp,
	}
	s.Record(context.Background(), run)
	t.Cleanup(func() {
		db.Exec("DELETE FROM generation_runs WHERE id = $1", run.ID)
	})

	runs, err := s.Recent(context.Background(), 100)
	require.NoError(t, err)
	for _, r := range runs {
		if r.ID == run.ID {
			assert.Len(t, r.Warnings, 1)
			assert.Equal(t, "scheduled", r.Reason)
			return
		}
	}
	t.Errorf("run %s not found in recent runs", run.ID)
}
