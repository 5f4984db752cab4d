// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package sitemap enumerates every public URL of the booking site, splits
// the result into capacity-bounded pages and renders them in the sitemap
// protocol wire format.
package sitemap

import (
	"errors"
	"time"
)

// Namespace is the sitemap protocol XML namespace.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// ProtocolMaxURLs is the per-document ceiling documented by the sitemap
// protocol. The configured capacity must not exceed it.
const ProtocolMaxURLs = 50000

// DefaultCapacity is the default number of entries per page.
const DefaultCapacity = 10000

var (
	// ErrInvalidCapacity is returned when a page capacity is below 1 or
	// above ProtocolMaxURLs.
	ErrInvalidCapacity = errors.New("sitemap: invalid page capacity")

	// ErrCapacityExceeded means a page holds more entries than allowed.
	// It is an internal invariant violation and aborts generation.
	ErrCapacityExceeded = errors.New("sitemap: page exceeds capacity")

	// ErrDuplicateLocation means two entries share a location after slug
	// disambiguation. It aborts generation.
	ErrDuplicateLocation = errors.New("sitemap: duplicate location")

	// ErrPageNotFound is returned when a page ordinal is out of range.
	ErrPageNotFound = errors.New("sitemap: page not found")
)

// ChangeFreq is the <changefreq> hint of an entry.
type ChangeFreq string

const (
	Always  ChangeFreq = "always"
	Hourly  ChangeFreq = "hourly"
	Daily   ChangeFreq = "daily"
	Weekly  ChangeFreq = "weekly"
	Monthly ChangeFreq = "monthly"
	Yearly  ChangeFreq = "yearly"
	Never   ChangeFreq = "never"
)

// Valid reports whether f is one of the protocol's frequencies.
func (f ChangeFreq) Valid() bool {
	switch f {
	case Always, Hourly, Daily, Weekly, Monthly, Yearly, Never:
		return true
	}
	return false
}

// Tier is a stage of the enumeration order.
type Tier string

const (
	TierStatic       Tier = "static"
	TierCategory     Tier = "category"
	TierService      Tier = "service"
	TierCountry      Tier = "country"
	TierState        Tier = "state"
	TierCity         Tier = "city"
	TierCityCategory Tier = "city_category"
	TierCityService  Tier = "city_service"
)

// DynamicTiers lists the catalog- and geography-driven tiers from the
// shallowest to the deepest URL.
var DynamicTiers = []Tier{
	TierCategory,
	TierService,
	TierCountry,
	TierState,
	TierCity,
	TierCityCategory,
	TierCityService,
}

// Entry is one URL plus its metadata.
type Entry struct {
	Location     string
	ChangeFreq   ChangeFreq
	Priority     float64
	LastModified time.Time // date only, UTC midnight
	Tier         Tier
}

// Page is a contiguous, capacity-bounded slice of entries.
type Page struct {
	Ordinal int // 1-based
	Entries []Entry
}

// IndexEntry points at one rendered page.
type IndexEntry struct {
	Ordinal      int
	Location     string
	LastModified time.Time
}

// dateOf truncates t to its UTC calendar date, using fallback for the zero time.
func dateOf(t, fallback time.Time) time.Time {
	if t.IsZero() {
		t = fallback
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
