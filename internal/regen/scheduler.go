// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package regen

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Requester queues a background regeneration.
type Requester interface {
	Request(reason string)
}

// Scheduler requests a full regeneration at a fixed interval, so the
// sitemap converges even when change events are lost.
type Scheduler struct {
	scheduler gocron.Scheduler
	interval  time.Duration
}

// NewScheduler creates a stopped scheduler that calls r.Request every
// interval.
func NewScheduler(r Requester, interval time.Duration) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("regen: schedule interval must be positive, got %s", interval)
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			slog.Info("scheduled sitemap regeneration", "interval", interval.String())
			r.Request(ReasonScheduled)
		}),
		gocron.WithName("sitemap-regenerate"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("schedule sitemap regeneration: %w", err)
	}

	return &Scheduler{scheduler: s, interval: interval}, nil
}

// Start begins firing the job.
func (s *Scheduler) Start() {
	slog.Info("starting sitemap scheduler", "interval", s.interval.String())
	s.scheduler.Start()
}

// Stop shuts the scheduler down and waits for a running job.
func (s *Scheduler) Stop() error {
	slog.Info("stopping sitemap scheduler")
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("stop scheduler: %w", err)
	}
	return nil
}
