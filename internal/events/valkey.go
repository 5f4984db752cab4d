// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// ValkeySource receives change events from a Valkey Pub/Sub channel.
type ValkeySource struct {
	client  *redis.Client
	channel string
}

// NewValkeySource returns a source for channel.
func NewValkeySource(client *redis.Client, channel string) *ValkeySource {
	return &ValkeySource{client: client, channel: channel}
}

// Run subscribes and dispatches messages until ctx is done. Messages
// published while no subscription is active are lost; the trigger's
// periodic schedule covers that gap.
func (s *ValkeySource) Run(ctx context.Context, h Handler) error {
	pubsub := s.client.Subscribe(ctx, s.channel)
	defer pubsub.Close()

	// Wait for the subscription confirmation so connection errors surface here.
	if _, err := pubsub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("valkey subscribe %s: %w", s.channel, err)
	}
	slog.Info("listening for catalog changes", "backend", "valkey", "channel", s.channel)

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("valkey receive %s: %w", s.channel, err)
		}
		dispatch(ctx, h, []byte(msg.Payload), "valkey")
	}
}

// ValkeyPublisher publishes change events to a Valkey channel.
type ValkeyPublisher struct {
	client  *redis.Client
	channel string
}

// NewValkeyPublisher returns a publisher for channel.
func NewValkeyPublisher(client *redis.Client, channel string) *ValkeyPublisher {
	return &ValkeyPublisher{client: client, channel: channel}
}

// Publish sends e to the channel.
func (p *ValkeyPublisher) Publish(ctx context.Context, e ChangeEvent) error {
	data, err := e.Encode()
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("valkey publish %s: %w", p.channel, err)
	}
	return nil
}

// dispatch decodes one payload and hands it to h. Malformed payloads are
// logged and dropped.
func dispatch(ctx context.Context, h Handler, payload []byte, backend string) {
	e, err := Decode(payload)
	if err != nil {
		slog.Warn("dropping change event", "backend", backend, "error", err)
		return
	}
	slog.Debug("change event received",
		"backend", backend,
		"event_id", e.ID,
		"entity", e.Entity,
		"entity_id", e.EntityID,
		"action", e.Action,
	)
	h(ctx, e)
}
