// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// GenerationRun records one execution of the sitemap pipeline for the
// operator status view.
type GenerationRun struct {
	ID          uuid.UUID `json:"id"`
	Reason      string    `json:"reason"` // "manual", "catalog_change", "scheduled", "startup"
	URLCount    int       `json:"url_count"`
	PageCount   int       `json:"page_count"`
	Warnings    []string  `json:"warnings,omitempty"`
	DurationMS  int64     `json:"duration_ms"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Degraded returns true if the run completed with partial data.
func (r *GenerationRun) Degraded() bool {
	return len(r.Warnings) > 0
}
