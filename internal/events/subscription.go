// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package events

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	defaultReconnectDelay = time.Second
	maxReconnectDelay     = time.Minute
)

// Subscription keeps a Source running, restarting it with exponential
// backoff when it fails. The zero value is not usable; use NewSubscription.
type Subscription struct {
	source  Source
	handler Handler

	// ReconnectDelay is the first backoff step; it doubles up to
	// MaxReconnectDelay.
	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSubscription returns a stopped subscription.
func NewSubscription(source Source, h Handler) *Subscription {
	return &Subscription{
		source:            source,
		handler:           h,
		ReconnectDelay:    defaultReconnectDelay,
		MaxReconnectDelay: maxReconnectDelay,
	}
}

// Start runs the source in the background. Calling Start on a running
// subscription does nothing.
func (s *Subscription) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true
	go s.loop(ctx, s.done)
}

// Stop cancels the source and waits for it to return.
func (s *Subscription) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done
}

// Running reports whether Start has been called without a matching Stop.
func (s *Subscription) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Subscription) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	delay := s.ReconnectDelay
	for {
		started := time.Now()
		err := s.source.Run(ctx, s.handler)
		if ctx.Err() != nil {
			return
		}
		// A source that stayed up for a while starts the backoff over.
		if time.Since(started) > s.MaxReconnectDelay {
			delay = s.ReconnectDelay
		}

		slog.Warn("change event source stopped, reconnecting", "error", err, "delay", delay.String())
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay = min(delay*2, s.MaxReconnectDelay)
	}
}
