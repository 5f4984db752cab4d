// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Country is the root of the service-area hierarchy.
type Country struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"` // ISO 3166-1 alpha-2
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	UpdatedAt time.Time `json:"updated_at"`
	States    []State   `json:"states,omitempty"`
}

// State is a first-level subdivision of a country (state, province, region).
type State struct {
	ID        uuid.UUID `json:"id"`
	CountryID uuid.UUID `json:"country_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	UpdatedAt time.Time `json:"updated_at"`
	Cities    []City    `json:"cities,omitempty"`
}

// City is a served locality inside a state.
type City struct {
	ID        uuid.UUID `json:"id"`
	StateID   uuid.UUID `json:"state_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CityCount returns the number of cities across all states of the country.
func (c *Country) CityCount() int {
	n := 0
	for _, s := range c.States {
		n += len(s.Cities)
	}
	return n
}
