// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the helpnest sitemap service.
// "serve" runs the HTTP server with event-driven regeneration; the other
// commands are one-shot operator tools.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"helpnest/internal/config"
	"helpnest/internal/database"
	"helpnest/internal/middleware"
)

// CLI is the command tree.
type CLI struct {
	Serve     ServeCmd     `cmd:"" default:"1" help:"Run the HTTP server (default)."`
	Generate  GenerateCmd  `cmd:"" help:"Generate the sitemap once and write it to a directory."`
	Migrate   MigrateCmd   `cmd:"" help:"Apply pending database migrations."`
	HashToken HashTokenCmd `cmd:"" name:"hash-token" help:"Print the bcrypt hash of an admin token for ADMIN_TOKEN_HASH."`
}

// Env carries what every command receives from main.
type Env struct {
	Ctx    context.Context
	Stdout io.Writer
	Cfg    *config.Config
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("helpnest"),
		kong.Description("Sitemap generation service for the helpnest catalog."),
		kong.Writers(stdout, stderr),
	)
	if err != nil {
		return fmt.Errorf("create parser: %w", err)
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// hash-token needs no environment.
	if strings.HasPrefix(kctx.Command(), "hash-token") {
		return kctx.Run(&Env{Ctx: ctx, Stdout: stdout})
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	setupLogger(cfg, stderr)
	slog.Info("configuration loaded", "env", cfg.Env, "command", kctx.Command())

	return kctx.Run(&Env{Ctx: ctx, Stdout: stdout, Cfg: cfg})
}

// setupLogger installs the default logger: JSON in production, text with
// debug output in development.
func setupLogger(cfg *config.Config, w io.Writer) {
	var h slog.Handler
	if cfg.IsDev() {
		h = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(h))
}

// MigrateCmd applies the embedded migrations.
type MigrateCmd struct{}

// Run executes the command.
func (c *MigrateCmd) Run(env *Env) error {
	db, err := database.Connect(env.Ctx, env.Cfg.DSN())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	applied, err := database.Migrate(env.Ctx, db)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Stdout, "%d migration(s) applied\n", len(applied))
	return nil
}

// HashTokenCmd prints a bcrypt hash of an operator token.
type HashTokenCmd struct {
	Token string `arg:"" help:"Admin token to hash."`
}

// Run executes the command.
func (c *HashTokenCmd) Run(env *Env) error {
	hash, err := middleware.HashAdminToken(c.Token)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(env.Stdout, hash)
	return err
}
