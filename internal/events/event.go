// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package events carries catalog change notifications between the stores
// that mutate the catalog and the sitemap regeneration trigger. Delivery is
// at-least-once: consumers must tolerate duplicates and reordering.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Entity names the kind of record that changed.
type Entity string

const (
	EntityCategory  Entity = "category"
	EntityService   Entity = "service"
	EntityGeography Entity = "geography"
)

// Action names what happened to the record.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// ErrMalformed is returned by Decode for payloads that are not change events.
var ErrMalformed = errors.New("events: malformed change event")

// ChangeEvent is the wire format of a catalog change notification.
type ChangeEvent struct {
	ID       string    `json:"id"`
	Entity   Entity    `json:"entity"`
	EntityID uuid.UUID `json:"entity_id"`
	Action   Action    `json:"action"`
	At       time.Time `json:"at"`
}

// NewChangeEvent stamps a fresh event ID and the current time.
func NewChangeEvent(entity Entity, entityID uuid.UUID, action Action) ChangeEvent {
	return ChangeEvent{
		ID:       uuid.NewString(),
		Entity:   entity,
		EntityID: entityID,
		Action:   action,
		At:       time.Now().UTC(),
	}
}

// Encode returns the JSON payload of e.
func (e ChangeEvent) Encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode change event: %w", err)
	}
	return data, nil
}

// Decode parses and validates a JSON payload.
func Decode(data []byte) (ChangeEvent, error) {
	var e ChangeEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return ChangeEvent{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if e.ID == "" {
		return ChangeEvent{}, fmt.Errorf("%w: missing id", ErrMalformed)
	}
	switch e.Entity {
	case EntityCategory, EntityService, EntityGeography:
	default:
		return ChangeEvent{}, fmt.Errorf("%w: unknown entity %q", ErrMalformed, e.Entity)
	}
	switch e.Action {
	case ActionCreated, ActionUpdated, ActionDeleted:
	default:
		return ChangeEvent{}, fmt.Errorf("%w: unknown action %q", ErrMalformed, e.Action)
	}
	return e, nil
}

// Handler receives decoded events. It must not block for long.
type Handler func(ctx context.Context, e ChangeEvent)

// Source delivers change events to a handler until ctx is cancelled or the
// underlying connection fails.
type Source interface {
	Run(ctx context.Context, h Handler) error
}

// Publisher sends change events.
type Publisher interface {
	Publish(ctx context.Context, e ChangeEvent) error
}

// PublisherFunc adapts a function to Publisher. It delivers events in
// process when no broker is configured.
type PublisherFunc func(ctx context.Context, e ChangeEvent) error

// Publish calls f(ctx, e).
func (f PublisherFunc) Publish(ctx context.Context, e ChangeEvent) error {
	return f(ctx, e)
}
