// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// ConnectNATS opens a NATS connection that keeps reconnecting on its own.
func ConnectNATS(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("helpnest"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			slog.Info("nats connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	slog.Info("nats connected", "url", conn.ConnectedUrl())
	return conn, nil
}

// NATSSource receives change events from a core NATS subject.
type NATSSource struct {
	conn    *nats.Conn
	subject string
}

// NewNATSSource returns a source for subject.
func NewNATSSource(conn *nats.Conn, subject string) *NATSSource {
	return &NATSSource{conn: conn, subject: subject}
}

// ErrConnectionClosed is returned by NATSSource.Run when the connection is
// closed underneath it.
var ErrConnectionClosed = errors.New("events: connection closed")

// closedPollInterval is how often Run checks for a closed connection. The
// connection's closed handler belongs to whoever dialed it, so Run polls.
const closedPollInterval = time.Second

// Run subscribes and dispatches messages until ctx is done.
func (s *NATSSource) Run(ctx context.Context, h Handler) error {
	msgs := make(chan *nats.Msg, 64)
	sub, err := s.conn.ChanSubscribe(s.subject, msgs)
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", s.subject, err)
	}
	defer func() {
		if err := sub.Unsubscribe(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
			slog.Warn("nats unsubscribe failed", "subject", s.subject, "error", err)
		}
	}()
	slog.Info("listening for catalog changes", "backend", "nats", "subject", s.subject)

	tick := time.NewTicker(closedPollInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			if s.conn.IsClosed() {
				return ErrConnectionClosed
			}
		case msg := <-msgs:
			dispatch(ctx, h, msg.Data, "nats")
		}
	}
}

// NATSPublisher publishes change events to a NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher returns a publisher for subject.
func NewNATSPublisher(conn *nats.Conn, subject string) *NATSPublisher {
	return &NATSPublisher{conn: conn, subject: subject}
}

// Publish sends e to the subject.
func (p *NATSPublisher) Publish(_ context.Context, e ChangeEvent) error {
	data, err := e.Encode()
	if err != nil {
		return err
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("nats publish %s: %w", p.subject, err)
	}
	return nil
}
