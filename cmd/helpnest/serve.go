// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"helpnest/internal/cache"
	"helpnest/internal/config"
	"helpnest/internal/database"
	"helpnest/internal/events"
	"helpnest/internal/handlers"
	"helpnest/internal/metrics"
	"helpnest/internal/middleware"
	"helpnest/internal/regen"
	"helpnest/internal/router"
	"helpnest/internal/storage"
	"helpnest/internal/store"
)

// ServeCmd runs the HTTP server.
type ServeCmd struct {
	AdminRateLimit  int           `default:"30" help:"Admin requests allowed per client and window."`
	AdminRateWindow time.Duration `default:"1m" help:"Admin rate limit window."`
	ShutdownTimeout time.Duration `default:"30s" help:"Time active requests get to finish on shutdown."`
}

// Run executes the command.
func (c *ServeCmd) Run(env *Env) error {
	cfg := env.Cfg

	// Connect to PostgreSQL.
	db, err := database.Connect(env.Ctx, cfg.DSN())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	// Run pending migrations.
	if _, err := database.Migrate(env.Ctx, db); err != nil {
		return err
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			return fmt.Errorf("seed database: %w", err)
		}
	}

	// Connect to Valkey (document cache and, by default, change events).
	valkeyClient, err := cache.ConnectValkey(env.Ctx, cfg.ValkeyAddr(), cfg.ValkeyPassword)
	if err != nil {
		return fmt.Errorf("connect to valkey: %w", err)
	}
	defer valkeyClient.Close()
	docCache := cache.NewDocumentCache(valkeyClient, cache.DefaultDocumentTTL)

	m := metrics.New()

	// The trigger is created after the stores, which need the notifier.
	var trig *regen.Trigger
	onEvent := func(ctx context.Context, e events.ChangeEvent) {
		coalesced := trig.OnCatalogChange(ctx, e)
		m.ObserveEvent(string(e.Entity), coalesced)
	}

	var (
		notifier store.Notifier
		source   events.Source
	)
	switch cfg.EventsBackend {
	case config.EventsValkey:
		notifier = events.NewValkeyPublisher(valkeyClient, cfg.EventsChannel)
		source = events.NewValkeySource(valkeyClient, cfg.EventsChannel)
	case config.EventsNATS:
		nc, err := events.ConnectNATS(cfg.NATSURL)
		if err != nil {
			return err
		}
		defer nc.Close()
		notifier = events.NewNATSPublisher(nc, cfg.EventsChannel)
		source = events.NewNATSSource(nc, cfg.EventsChannel)
	default:
		// In-process delivery: this instance only sees its own mutations.
		notifier = events.PublisherFunc(func(ctx context.Context, e events.ChangeEvent) error {
			onEvent(ctx, e)
			return nil
		})
	}
	slog.Info("change events configured", "backend", cfg.EventsBackend, "channel", cfg.EventsChannel)

	categoryStore := store.NewCategoryStore(db, notifier)
	serviceStore := store.NewServiceStore(db, notifier)
	geographyStore := store.NewGeographyStore(db, notifier)
	runStore := store.NewGenerationRunStore(db)

	sc, err := cfg.SitemapConfig()
	if err != nil {
		return err
	}
	gen, err := sitemapGenerator(categoryStore, serviceStore, geographyStore, sc)
	if err != nil {
		return err
	}

	sinks := []regen.Sink{regen.MetricsSink(m), regen.CacheSink(docCache), regen.RecordSink(runStore)}

	// Connect to S3-compatible object storage (optional).
	if cfg.S3Enabled() {
		publisher, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			slog.Warn("failed to initialize s3 storage, publishing disabled", "error", err)
		} else {
			sinks = append(sinks, regen.PublishSink(publisher))
			slog.Info("s3 publishing enabled", "bucket", cfg.S3Bucket)
		}
	} else {
		slog.Info("s3 storage not configured, publishing disabled")
	}

	trig, err = regen.New(gen, regen.Config{
		Debounce:    cfg.SitemapDebounce,
		MaxDelay:    cfg.SitemapMaxDelay,
		MinInterval: cfg.SitemapMinInterval,
	}, sinks...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(env.Ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	trig.Start(ctx)
	defer trig.Stop()
	trig.Request(regen.ReasonStartup)

	if source != nil {
		sub := events.NewSubscription(source, onEvent)
		sub.Start(ctx)
		defer sub.Stop()
	}

	if cfg.SitemapSchedule > 0 {
		sched, err := regen.NewScheduler(trig, cfg.SitemapSchedule)
		if err != nil {
			return err
		}
		sched.Start()
		defer func() {
			if err := sched.Stop(); err != nil {
				slog.Warn("failed to stop scheduler", "error", err)
			}
		}()
	}

	if cfg.AdminTokenHash == "" {
		slog.Warn("ADMIN_TOKEN_HASH not set, admin routes disabled")
	}
	limiter := middleware.NewRateLimiter(c.AdminRateLimit, c.AdminRateWindow)
	defer limiter.Stop()

	r := router.New(router.Deps{
		Sitemap:        handlers.NewSitemap(trig, docCache),
		Admin:          handlers.NewAdmin(trig, runStore).WithCache(docCache),
		Catalog:        handlers.NewCatalog(categoryStore, serviceStore, geographyStore),
		Metrics:        m.Handler(),
		AdminTokenHash: cfg.AdminTokenHash,
		AdminLimiter:   limiter,
	})

	// Create the HTTP server with sensible timeouts. WriteTimeout covers an
	// on-demand generation when nothing is cached yet.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: regen.DefaultRunTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	select {
	case err := <-errc:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully", "pid", os.Getpid())
	return nil
}
