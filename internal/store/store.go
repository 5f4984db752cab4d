// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store implements the Postgres-backed catalog and geography
// providers and the generation run log.
package store

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"helpnest/internal/events"
)

// Notifier receives a change event after every committed mutation.
// events.ValkeyPublisher and events.NATSPublisher satisfy it.
type Notifier interface {
	Publish(ctx context.Context, e events.ChangeEvent) error
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// notify publishes a change event. Publishing is best-effort: the mutation
// has already been committed, and the periodic regeneration catches up
// with anything a lost event missed.
func notify(ctx context.Context, n Notifier, entity events.Entity, id uuid.UUID, action events.Action) {
	if n == nil {
		return
	}
	e := events.NewChangeEvent(entity, id, action)
	if err := n.Publish(ctx, e); err != nil {
		slog.Warn("failed to publish change event",
			"entity", entity,
			"entity_id", id,
			"action", action,
			"error", err,
		)
	}
}
