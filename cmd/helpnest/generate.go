// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"helpnest/internal/database"
	"helpnest/internal/sitemap"
	"helpnest/internal/store"
)

// GenerateCmd runs one generation against the database and writes the
// documents to disk.
type GenerateCmd struct {
	Out string `short:"o" default:"public" help:"Directory to write sitemap.xml and sitemaps/ into."`
}

// Run executes the command.
func (c *GenerateCmd) Run(env *Env) error {
	db, err := database.Connect(env.Ctx, env.Cfg.DSN())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	sc, err := env.Cfg.SitemapConfig()
	if err != nil {
		return err
	}
	gen, err := sitemapGenerator(store.NewCategoryStore(db, nil), store.NewServiceStore(db, nil), store.NewGeographyStore(db, nil), sc)
	if err != nil {
		return err
	}
	res, err := gen.Generate(env.Ctx)
	if err != nil {
		return fmt.Errorf("generate sitemap: %w", err)
	}
	for _, w := range res.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}
	if err := writeDocuments(c.Out, res); err != nil {
		return err
	}
	fmt.Fprintf(env.Stdout, "%d URLs in %d page(s) written to %s\n", res.URLCount, res.PageCount(), c.Out)
	return nil
}

// sitemapGenerator builds a generator over the Postgres stores.
func sitemapGenerator(categories *store.CategoryStore, services *store.ServiceStore, geography *store.GeographyStore, sc sitemap.Config) (*sitemap.Generator, error) {
	return sitemap.NewGenerator(store.NewCatalog(categories, services), geography, sc)
}

// writeDocuments writes every document of res below dir. Page files left
// over from a larger earlier run are removed so the directory mirrors res.
func writeDocuments(dir string, res *sitemap.Result) error {
	pageDir := filepath.Join(dir, filepath.FromSlash(sitemap.PageDir))
	if err := os.RemoveAll(pageDir); err != nil {
		return fmt.Errorf("clear %s: %w", pageDir, err)
	}
	if res.HasIndex() {
		if err := os.MkdirAll(pageDir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", pageDir, err)
		}
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	for _, doc := range res.Documents() {
		path := filepath.Join(dir, filepath.FromSlash(doc.Name))
		if err := os.WriteFile(path, doc.Body, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		slog.Debug("sitemap document written", "path", path, "bytes", len(doc.Body))
	}
	return nil
}
