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

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db       *sql.DB
	notifier Notifier
}

// NewCategoryStore returns a new CategoryStore. notifier may be nil.
func NewCategoryStore(db *sql.DB, notifier Notifier) *CategoryStore {
	return &CategoryStore{db: db, notifier: notifier}
}

const categoryColumns = `id, title, slug, description, active, sort_order, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner rowScanner) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Title, &c.Slug, &c.Description,
		&c.Active, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CategoryStore) list(ctx context.Context, query string) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// ListActive returns active categories ordered by sort_order, then title.
func (s *CategoryStore) ListActive(ctx context.Context) ([]models.Category, error) {
	return s.list(ctx, `SELECT `+categoryColumns+` FROM categories WHERE active ORDER BY sort_order, title`)
}

// List returns all categories, including inactive ones.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	return s.list(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY sort_order, title`)
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// Create inserts a new category and returns it. An empty slug is derived
// from the title.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	if c.Slug == "" {
		c.Slug = slug.Generate(c.Title)
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (title, slug, description, active, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+categoryColumns,
		c.Title, c.Slug, c.Description, c.Active, c.SortOrder,
	)
	result, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	notify(ctx, s.notifier, events.EntityCategory, result.ID, events.ActionCreated)
	return result, nil
}

// Update modifies an existing category.
func (s *CategoryStore) Update(ctx context.Context, c *models.Category) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE categories SET
			title = $1, slug = $2, description = $3, active = $4,
			sort_order = $5, updated_at = NOW()
		WHERE id = $6
	`, c.Title, c.Slug, c.Description, c.Active, c.SortOrder, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	notify(ctx, s.notifier, events.EntityCategory, c.ID, events.ActionUpdated)
	return nil
}

// Delete removes a category by ID. Its services go with it (ON DELETE CASCADE).
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	notify(ctx, s.notifier, events.EntityCategory, id, events.ActionDeleted)
	return nil
}
