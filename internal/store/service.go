// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"helpnest/internal/events"
	"helpnest/internal/models"
	"helpnest/internal/slug"
)

// ServiceStore manages bookable services in the database.
type ServiceStore struct {
	db       *sql.DB
	notifier Notifier
}

// NewServiceStore returns a new ServiceStore. notifier may be nil.
func NewServiceStore(db *sql.DB, notifier Notifier) *ServiceStore {
	return &ServiceStore{db: db, notifier: notifier}
}

const serviceColumns = `s.id, s.category_id, s.title, s.slug, s.description, s.price_cents,
	s.duration_minutes, s.active, s.sort_order, s.created_at, s.updated_at`

func scanService(scanner rowScanner) (*models.Service, error) {
	var s models.Service
	err := scanner.Scan(
		&s.ID, &s.CategoryID, &s.Title, &s.Slug, &s.Description, &s.PriceCents,
		&s.DurationMinutes, &s.Active, &s.SortOrder, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (st *ServiceStore) list(ctx context.Context, query string, args ...any) ([]models.Service, error) {
	rows, err := st.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var items []models.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		items = append(items, *s)
	}
	return items, rows.Err()
}

// ListActive returns active services whose category is also active.
func (st *ServiceStore) ListActive(ctx context.Context) ([]models.Service, error) {
	return st.list(ctx, `
		SELECT `+serviceColumns+`
		FROM services s
		JOIN categories c ON c.id = s.category_id
		WHERE s.active AND c.active
		ORDER BY c.sort_order, s.sort_order, s.title`)
}

// ListByCategory returns every service in a category.
func (st *ServiceStore) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Service, error) {
	return st.list(ctx, `
		SELECT `+serviceColumns+`
		FROM services s
		WHERE s.category_id = $1
		ORDER BY s.sort_order, s.title`, categoryID)
}

// FindByID retrieves a service by ID. Returns nil if not found.
func (st *ServiceStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	row := st.db.QueryRowContext(ctx, `SELECT `+serviceColumns+` FROM services s WHERE s.id = $1`, id)
	s, err := scanService(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find service by id: %w", err)
	}
	return s, nil
}

// Create inserts a new service and returns it. An empty slug is derived
// from the title.
func (st *ServiceStore) Create(ctx context.Context, s *models.Service) (*models.Service, error) {
	if s.Slug == "" {
		s.Slug = slug.Generate(s.Title)
	}
	row := st.db.QueryRowContext(ctx, `
		INSERT INTO services AS s (category_id, title, slug, description, price_cents,
			duration_minutes, active, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+serviceColumns,
		s.CategoryID, s.Title, s.Slug, s.Description, s.PriceCents,
		s.DurationMinutes, s.Active, s.SortOrder,
	)
	result, err := scanService(row)
	if err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	notify(ctx, st.notifier, events.EntityService, result.ID, events.ActionCreated)
	return result, nil
}

// Update modifies an existing service.
func (st *ServiceStore) Update(ctx context.Context, s *models.Service) error {
	_, err := st.db.ExecContext(ctx, `
		UPDATE services SET
			category_id = $1, title = $2, slug = $3, description = $4,
			price_cents = $5, duration_minutes = $6, active = $7,
			sort_order = $8, updated_at = NOW()
		WHERE id = $9
	`, s.CategoryID, s.Title, s.Slug, s.Description, s.PriceCents,
		s.DurationMinutes, s.Active, s.SortOrder, s.ID)
	if err != nil {
		return fmt.Errorf("update service: %w", err)
	}
	notify(ctx, st.notifier, events.EntityService, s.ID, events.ActionUpdated)
	return nil
}

// Delete removes a service by ID.
func (st *ServiceStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := st.db.ExecContext(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	notify(ctx, st.notifier, events.EntityService, id, events.ActionDeleted)
	return nil
}
