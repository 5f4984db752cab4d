// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"

	"helpnest/internal/models"
)

// Catalog exposes the active catalog to the sitemap generator.
type Catalog struct {
	categories *CategoryStore
	services   *ServiceStore
}

// NewCatalog combines the category and service stores.
func NewCatalog(categories *CategoryStore, services *ServiceStore) *Catalog {
	return &Catalog{categories: categories, services: services}
}

// ListActiveCategories returns active categories.
func (c *Catalog) ListActiveCategories(ctx context.Context) ([]models.Category, error) {
	return c.categories.ListActive(ctx)
}

// ListActiveServices returns active services of active categories.
func (c *Catalog) ListActiveServices(ctx context.Context) ([]models.Service, error) {
	return c.services.ListActive(ctx)
}
