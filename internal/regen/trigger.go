// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package regen decides when the sitemap is regenerated. Catalog change
// events are coalesced by a debouncer (quiet window plus max delay),
// background runs are paced by a rate limiter, and concurrent synchronous
// requests share one run.
package regen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"helpnest/internal/events"
	"helpnest/internal/sitemap"
)

// Reasons recorded for a run.
const (
	ReasonManual        = "manual"
	ReasonCatalogChange = "catalog_change"
	ReasonScheduled     = "scheduled"
	ReasonStartup       = "startup"
)

const (
	DefaultDebounce   = 5 * time.Second
	DefaultMaxDelay   = time.Minute
	DefaultRunTimeout = 2 * time.Minute
)

// Generator produces a full sitemap from a fresh snapshot.
type Generator interface {
	Generate(ctx context.Context) (*sitemap.Result, error)
}

// Config tunes the trigger. Zero durations take the defaults, except
// MinInterval where zero disables pacing.
type Config struct {
	Debounce    time.Duration
	MaxDelay    time.Duration
	MinInterval time.Duration
	RunTimeout  time.Duration
}

// Run is the outcome of one generation, handed to every Sink.
type Run struct {
	Reason string
	Result *sitemap.Result // nil when Err is set
	Err    error
}

// Sink consumes run outcomes. Sinks are called in order, after the result
// became current, and must not fail the run.
type Sink interface {
	Accept(ctx context.Context, run Run)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, run Run)

// Accept calls f.
func (f SinkFunc) Accept(ctx context.Context, run Run) { f(ctx, run) }

// batch is the set of requests waiting for the next background run.
type batch struct {
	ids       map[string]struct{}
	events    int
	reason    string
	immediate bool
	first     time.Time
	last      time.Time // latest event or request; a run must start after it
}

// outcome is what a shared run hands every caller that joined it.
type outcome struct {
	res     *sitemap.Result
	started time.Time
}

// runKey is the singleflight key shared by manual and background runs.
const runKey = "generate"

// Trigger owns regeneration. Create it with New, then Start it.
type Trigger struct {
	gen     Generator
	cfg     Config
	sinks   []Sink
	limiter *rate.Limiter
	group   singleflight.Group
	current atomic.Pointer[sitemap.Result]

	wake chan struct{}

	mu      sync.Mutex
	pending *batch
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New returns a stopped trigger.
func New(gen Generator, cfg Config, sinks ...Sink) (*Trigger, error) {
	if gen == nil {
		return nil, errors.New("regen: generator is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultMaxDelay
	}
	if cfg.MaxDelay < cfg.Debounce {
		return nil, fmt.Errorf("regen: max delay %s is shorter than debounce %s", cfg.MaxDelay, cfg.Debounce)
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = DefaultRunTimeout
	}

	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}

	return &Trigger{
		gen:     gen,
		cfg:     cfg,
		sinks:   sinks,
		limiter: rate.NewLimiter(limit, 1),
		wake:    make(chan struct{}, 1),
	}, nil
}

// Current returns the latest successful result, or nil before the first one.
func (t *Trigger) Current() *sitemap.Result {
	return t.current.Load()
}

// Pending returns the number of distinct change events waiting for the next
// background run.
func (t *Trigger) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending == nil {
		return 0
	}
	return t.pending.events
}

// OnCatalogChange records a change event and arms the debouncer. It never
// blocks. An event ID already part of the pending batch is ignored; the
// return value reports whether the event joined an existing batch.
func (t *Trigger) OnCatalogChange(_ context.Context, e events.ChangeEvent) bool {
	t.mu.Lock()
	coalesced := t.pending != nil
	if t.pending == nil {
		t.pending = &batch{ids: make(map[string]struct{}), reason: ReasonCatalogChange, first: time.Now()}
	}
	if _, dup := t.pending.ids[e.ID]; dup {
		t.mu.Unlock()
		slog.Debug("duplicate change event ignored", "event_id", e.ID)
		return true
	}
	t.pending.ids[e.ID] = struct{}{}
	t.pending.events++
	t.pending.last = time.Now()
	t.mu.Unlock()

	slog.Debug("catalog change received",
		"event_id", e.ID,
		"entity", e.Entity,
		"entity_id", e.EntityID,
		"action", e.Action,
	)
	t.signal()
	return coalesced
}

// Request asks for a background run without waiting for the quiet window.
// The run is still paced by the minimum interval.
func (t *Trigger) Request(reason string) {
	t.mu.Lock()
	if t.pending == nil {
		t.pending = &batch{ids: make(map[string]struct{}), first: time.Now()}
	}
	t.pending.reason = reason
	t.pending.immediate = true
	t.pending.last = time.Now()
	t.mu.Unlock()
	t.signal()
}

func (t *Trigger) signal() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// Start runs the debouncer in the background. Calling Start on a running
// trigger does nothing.
func (t *Trigger) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})
	t.running = true
	if t.pending != nil {
		t.signal()
	}
	go t.loop(ctx, t.done)
	slog.Info("sitemap regeneration trigger started",
		"debounce", t.cfg.Debounce.String(),
		"max_delay", t.cfg.MaxDelay.String(),
		"min_interval", t.cfg.MinInterval.String(),
	)
}

// Stop cancels the debouncer and waits for an in-flight background run to
// finish. Pending events are dropped.
func (t *Trigger) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	cancel, done := t.cancel, t.done
	t.mu.Unlock()

	cancel()
	<-done
	slog.Info("sitemap regeneration trigger stopped", "dropped_events", t.Pending())
}

func (t *Trigger) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	quiet := time.NewTimer(time.Hour)
	quiet.Stop()
	deadline := time.NewTimer(time.Hour)
	deadline.Stop()

	var quietC, deadlineC <-chan time.Time
	fire := func(cause string) {
		quiet.Stop()
		deadline.Stop()
		quietC, deadlineC = nil, nil
		t.flush(ctx, cause)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case <-t.wake:
			t.mu.Lock()
			b := t.pending
			t.mu.Unlock()
			if b == nil {
				continue
			}
			if b.immediate {
				fire("request")
				continue
			}
			quiet.Reset(t.cfg.Debounce)
			quietC = quiet.C
			if deadlineC == nil {
				deadline.Reset(max(t.cfg.MaxDelay-time.Since(b.first), 0))
				deadlineC = deadline.C
			}

		case <-quietC:
			fire("quiet")

		case <-deadlineC:
			fire("max_delay")
		}
	}
}

// flush takes the pending batch and regenerates once for all of it.
func (t *Trigger) flush(ctx context.Context, cause string) {
	if err := t.limiter.Wait(ctx); err != nil {
		return
	}

	t.mu.Lock()
	b := t.pending
	t.pending = nil
	t.mu.Unlock()
	if b == nil {
		return
	}

	slog.Info("sitemap regeneration starting",
		"reason", b.reason,
		"cause", cause,
		"events", b.events,
		"waited", time.Since(b.first).String(),
	)

	runCtx, cancel := context.WithTimeout(ctx, t.cfg.RunTimeout)
	defer cancel()
	if _, err := t.generate(runCtx, b.reason, b.last); err != nil {
		slog.Error("background sitemap regeneration failed", "reason", b.reason, "error", err)
	}
}

// GenerateNow regenerates synchronously and returns the new result.
// Concurrent callers, background runs included, share a single run. If ctx
// ends first the caller gets ctx.Err() while the shared run completes and
// still becomes current.
func (t *Trigger) GenerateNow(ctx context.Context) (*sitemap.Result, error) {
	detached := context.WithoutCancel(ctx)
	ch := t.group.DoChan(runKey, func() (any, error) {
		runCtx, cancel := context.WithTimeout(detached, t.cfg.RunTimeout)
		defer cancel()
		return t.timedRun(runCtx, ReasonManual)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(outcome).res, nil
	}
}

// generate runs for a background batch. Joining a run in flight is only
// enough when that run started after the batch's last event; an older run
// read its snapshot too early, so generate waits for it and runs again.
func (t *Trigger) generate(ctx context.Context, reason string, after time.Time) (*sitemap.Result, error) {
	for {
		v, err, shared := t.group.Do(runKey, func() (any, error) {
			return t.timedRun(ctx, reason)
		})
		out := v.(outcome)
		if shared && out.started.Before(after) {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Debug("joined run predates pending changes, regenerating", "reason", reason)
			continue
		}
		return out.res, err
	}
}

func (t *Trigger) timedRun(ctx context.Context, reason string) (any, error) {
	started := time.Now()
	res, err := t.run(ctx, reason)
	return outcome{res: res, started: started}, err
}

// run executes one generation and notifies the sinks. A failed run keeps
// the previous result current.
func (t *Trigger) run(ctx context.Context, reason string) (*sitemap.Result, error) {
	res, err := t.gen.Generate(ctx)
	if err != nil {
		res, err = nil, fmt.Errorf("generate sitemap: %w", err)
	} else {
		t.current.Store(res)
	}

	for _, s := range t.sinks {
		s.Accept(ctx, Run{Reason: reason, Result: res, Err: err})
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}
