// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for helpnest.
// Public sitemap documents are open; operator routes sit behind the admin
// token and a rate limiter.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"helpnest/internal/handlers"
	"helpnest/internal/middleware"
)

// Deps are the handler groups and settings the router wires together.
type Deps struct {
	Sitemap *handlers.Sitemap
	Admin   *handlers.Admin
	Catalog *handlers.Catalog // nil disables the catalog API
	Metrics http.Handler      // nil disables /metrics

	AdminTokenHash string
	AdminLimiter   *middleware.RateLimiter
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecureHeaders)
	r.Use(chimw.GetHead)

	r.Get("/health", healthHandler)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	// Public sitemap documents.
	r.Get("/sitemap.xml", d.Sitemap.Root)
	r.Get("/sitemaps/sitemap-{n}.xml", d.Sitemap.Page)

	// Operator routes.
	r.Route("/admin", func(r chi.Router) {
		if d.AdminLimiter != nil {
			r.Use(d.AdminLimiter.Middleware)
		}
		r.Use(middleware.RequireAdminToken(d.AdminTokenHash))
		r.Use(middleware.NoStore)

		r.Route("/sitemap", func(r chi.Router) {
			r.Post("/generate", d.Admin.Generate)
			r.Get("/status", d.Admin.Status)
			r.Get("/runs", d.Admin.Runs)
		})

		if d.Catalog != nil {
			r.Route("/catalog", func(r chi.Router) {
				r.Get("/categories", d.Catalog.ListCategories)
				r.Post("/categories", d.Catalog.CreateCategory)
				r.Put("/categories/{id}", d.Catalog.UpdateCategory)
				r.Delete("/categories/{id}", d.Catalog.DeleteCategory)

				r.Post("/services", d.Catalog.CreateService)
				r.Put("/services/{id}", d.Catalog.UpdateService)
				r.Delete("/services/{id}", d.Catalog.DeleteService)

				r.Get("/geography", d.Catalog.ListGeography)
				r.Post("/geography/{level}", d.Catalog.CreatePlace)
				r.Delete("/geography/{level}/{id}", d.Catalog.DeletePlace)
			})
		}
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
