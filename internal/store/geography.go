// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"helpnest/internal/events"
	"helpnest/internal/models"
	"helpnest/internal/slug"
)

// GeographyStore manages the country > state > city hierarchy.
type GeographyStore struct {
	db       *sql.DB
	notifier Notifier
}

// NewGeographyStore returns a new GeographyStore. notifier may be nil.
func NewGeographyStore(db *sql.DB, notifier Notifier) *GeographyStore {
	return &GeographyStore{db: db, notifier: notifier}
}

// ListCountries returns every country with its states and their cities
// nested, each level ordered by name. It reads the three tables in one
// repeatable-read transaction so the levels are consistent.
func (s *GeographyStore) ListCountries(ctx context.Context) ([]models.Country, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list countries: begin tx: %w", err)
	}
	defer tx.Rollback()

	cities := make(map[uuid.UUID][]models.City)
	err = queryEach(ctx, tx, `SELECT id, state_id, name, slug, updated_at FROM cities ORDER BY name, id`,
		func(r rowScanner) error {
			var c models.City
			if err := r.Scan(&c.ID, &c.StateID, &c.Name, &c.Slug, &c.UpdatedAt); err != nil {
				return err
			}
			cities[c.StateID] = append(cities[c.StateID], c)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}

	states := make(map[uuid.UUID][]models.State)
	err = queryEach(ctx, tx, `SELECT id, country_id, name, slug, updated_at FROM states ORDER BY name, id`,
		func(r rowScanner) error {
			var st models.State
			if err := r.Scan(&st.ID, &st.CountryID, &st.Name, &st.Slug, &st.UpdatedAt); err != nil {
				return err
			}
			st.Cities = cities[st.ID]
			states[st.CountryID] = append(states[st.CountryID], st)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("list states: %w", err)
	}

	var countries []models.Country
	err = queryEach(ctx, tx, `SELECT id, code, name, slug, updated_at FROM countries ORDER BY name, id`,
		func(r rowScanner) error {
			var c models.Country
			if err := r.Scan(&c.ID, &c.Code, &c.Name, &c.Slug, &c.UpdatedAt); err != nil {
				return err
			}
			c.States = states[c.ID]
			countries = append(countries, c)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}

	return countries, tx.Commit()
}

func queryEach(ctx context.Context, tx *sql.Tx, query string, fn func(rowScanner) error) error {
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// CreateCountry inserts a country. code is an ISO 3166-1 alpha-2 code.
func (s *GeographyStore) CreateCountry(ctx context.Context, code, name string) (*models.Country, error) {
	c := models.Country{Code: strings.ToUpper(code), Name: name, Slug: slug.Generate(name)}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO countries (code, name, slug) VALUES ($1, $2, $3)
		RETURNING id, updated_at
	`, c.Code, c.Name, c.Slug).Scan(&c.ID, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create country: %w", err)
	}
	notify(ctx, s.notifier, events.EntityGeography, c.ID, events.ActionCreated)
	return &c, nil
}

// CreateState inserts a state under a country.
func (s *GeographyStore) CreateState(ctx context.Context, countryID uuid.UUID, name string) (*models.State, error) {
	st := models.State{CountryID: countryID, Name: name, Slug: slug.Generate(name)}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO states (country_id, name, slug) VALUES ($1, $2, $3)
		RETURNING id, updated_at
	`, st.CountryID, st.Name, st.Slug).Scan(&st.ID, &st.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create state: %w", err)
	}
	notify(ctx, s.notifier, events.EntityGeography, st.ID, events.ActionCreated)
	return &st, nil
}

// CreateCity inserts a city under a state.
func (s *GeographyStore) CreateCity(ctx context.Context, stateID uuid.UUID, name string) (*models.City, error) {
	c := models.City{StateID: stateID, Name: name, Slug: slug.Generate(name)}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO cities (state_id, name, slug) VALUES ($1, $2, $3)
		RETURNING id, updated_at
	`, c.StateID, c.Name, c.Slug).Scan(&c.ID, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create city: %w", err)
	}
	notify(ctx, s.notifier, events.EntityGeography, c.ID, events.ActionCreated)
	return &c, nil
}

// geoTables maps the deletable levels to their tables.
var geoTables = map[string]string{
	"country": "countries",
	"state":   "states",
	"city":    "cities",
}

// Delete removes a country, state or city by ID. Lower levels go with it
// (ON DELETE CASCADE).
func (s *GeographyStore) Delete(ctx context.Context, level string, id uuid.UUID) error {
	table, ok := geoTables[level]
	if !ok {
		return fmt.Errorf("delete geography: unknown level %q", level)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete %s: %w", level, err)
	}
	notify(ctx, s.notifier, events.EntityGeography, id, events.ActionDeleted)
	return nil
}
