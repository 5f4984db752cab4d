// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"helpnest/internal/slug"
)

type seedService struct {
	title    string
	price    int64
	duration int
}

type seedCategory struct {
	title    string
	services []seedService
}

type seedState struct {
	name   string
	cities []string
}

// devCatalog is a small but complete catalog: every tier of the sitemap
// has entries.
var devCatalog = []seedCategory{
	{"Computer Repair", []seedService{
		{"Virus Removal", 8900, 60},
		{"Screen Replacement", 14900, 90},
		{"Data Recovery", 19900, 120},
	}},
	{"Home Networking", []seedService{
		{"Wi-Fi Setup", 9900, 60},
		{"Router Configuration", 7900, 45},
	}},
	{"Smart Home", []seedService{
		{"Smart Thermostat Install", 12900, 90},
		{"Video Doorbell Install", 9900, 60},
	}},
}

var devGeography = map[string][]seedState{
	"US|United States": {
		{"Texas", []string{"Austin", "Dallas", "Houston"}},
		{"California", []string{"San Diego", "San Jose"}},
	},
	"CA|Canada": {
		{"Ontario", []string{"Toronto", "Ottawa"}},
	},
}

// Seed populates the database with a development catalog. It does nothing
// when categories already exist.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin tx: %w", err)
	}
	defer tx.Rollback()

	services := 0
	for i, c := range devCatalog {
		var categoryID uuid.UUID
		err := tx.QueryRow(`
			INSERT INTO categories (title, slug, sort_order)
			VALUES ($1, $2, $3)
			RETURNING id
		`, c.title, slug.Generate(c.title), i).Scan(&categoryID)
		if err != nil {
			return fmt.Errorf("seed insert category %q: %w", c.title, err)
		}

		for j, s := range c.services {
			_, err := tx.Exec(`
				INSERT INTO services (category_id, title, slug, price_cents, duration_minutes, sort_order)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, categoryID, s.title, slug.Generate(s.title), s.price, s.duration, j)
			if err != nil {
				return fmt.Errorf("seed insert service %q: %w", s.title, err)
			}
			services++
		}
	}

	cities := 0
	for key, states := range devGeography {
		code, name := key[:2], key[3:]
		var countryID uuid.UUID
		err := tx.QueryRow(`
			INSERT INTO countries (code, name, slug) VALUES ($1, $2, $3) RETURNING id
		`, code, name, slug.Generate(name)).Scan(&countryID)
		if err != nil {
			return fmt.Errorf("seed insert country %q: %w", name, err)
		}

		for _, st := range states {
			var stateID uuid.UUID
			err := tx.QueryRow(`
				INSERT INTO states (country_id, name, slug) VALUES ($1, $2, $3) RETURNING id
			`, countryID, st.name, slug.Generate(st.name)).Scan(&stateID)
			if err != nil {
				return fmt.Errorf("seed insert state %q: %w", st.name, err)
			}

			for _, city := range st.cities {
				_, err := tx.Exec(`
					INSERT INTO cities (state_id, name, slug) VALUES ($1, $2, $3)
				`, stateID, city, slug.Generate(city))
				if err != nil {
					return fmt.Errorf("seed insert city %q: %w", city, err)
				}
				cities++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with development catalog",
		"categories", len(devCatalog),
		"services", services,
		"cities", cities,
	)
	return nil
}
