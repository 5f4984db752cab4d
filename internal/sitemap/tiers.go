// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package sitemap

import (
	"fmt"
	"strings"
)

// TierSetting is the priority/frequency pair assigned to a tier.
type TierSetting struct {
	Priority   float64    `yaml:"priority"`
	ChangeFreq ChangeFreq `yaml:"changefreq"`
}

// StaticRoute is a hand-listed page with its own metadata.
type StaticRoute struct {
	Path       string     `yaml:"path"`
	Priority   float64    `yaml:"priority"`
	ChangeFreq ChangeFreq `yaml:"changefreq"`
}

// TierTable is the single source of SEO metadata for every generated URL.
type TierTable struct {
	Static []StaticRoute         `yaml:"static"`
	Levels map[Tier]TierSetting `yaml:"levels"`
}

// DefaultTierTable returns the canonical table. Priorities decrease as URLs
// become more specific; frequencies loosen from weekly to monthly.
func DefaultTierTable() TierTable {
	return TierTable{
		Static: []StaticRoute{
			{Path: "/", Priority: 1.0, ChangeFreq: Daily},
			{Path: "/services", Priority: 0.9, ChangeFreq: Daily},
			{Path: "/how-it-works", Priority: 0.7, ChangeFreq: Monthly},
			{Path: "/pricing", Priority: 0.7, ChangeFreq: Weekly},
			{Path: "/faq", Priority: 0.6, ChangeFreq: Monthly},
			{Path: "/about", Priority: 0.5, ChangeFreq: Monthly},
			{Path: "/contact", Priority: 0.5, ChangeFreq: Monthly},
			{Path: "/privacy-policy", Priority: 0.3, ChangeFreq: Yearly},
			{Path: "/terms-of-service", Priority: 0.3, ChangeFreq: Yearly},
			{Path: "/refund-policy", Priority: 0.3, ChangeFreq: Yearly},
		},
		Levels: map[Tier]TierSetting{
			TierCategory:     {Priority: 0.8, ChangeFreq: Weekly},
			TierService:      {Priority: 0.7, ChangeFreq: Weekly},
			TierCountry:      {Priority: 0.6, ChangeFreq: Weekly},
			TierState:        {Priority: 0.6, ChangeFreq: Weekly},
			TierCity:         {Priority: 0.5, ChangeFreq: Monthly},
			TierCityCategory: {Priority: 0.4, ChangeFreq: Monthly},
			TierCityService:  {Priority: 0.3, ChangeFreq: Monthly},
		},
	}
}

// Setting returns the metadata for a dynamic tier.
func (t TierTable) Setting(tier Tier) TierSetting {
	return t.Levels[tier]
}

// reservedPrefixes are the path spaces owned by the dynamic tiers. A static
// route inside one could collide with a generated URL.
var reservedPrefixes = []string{"/services/", "/service/", "/locations/"}

// Validate checks every static route and dynamic tier. Dynamic tier
// priorities must be non-increasing from category down to city×service.
func (t TierTable) Validate() error {
	seen := make(map[string]bool, len(t.Static))
	for _, r := range t.Static {
		if !strings.HasPrefix(r.Path, "/") {
			return fmt.Errorf("static route %q: path must start with /", r.Path)
		}
		for _, prefix := range reservedPrefixes {
			if strings.HasPrefix(r.Path, prefix) {
				return fmt.Errorf("static route %q: %s is reserved for generated URLs", r.Path, prefix)
			}
		}
		if seen[r.Path] {
			return fmt.Errorf("static route %q: listed twice", r.Path)
		}
		seen[r.Path] = true
		if err := checkSetting(r.Priority, r.ChangeFreq); err != nil {
			return fmt.Errorf("static route %q: %w", r.Path, err)
		}
	}

	prev := 1.0
	for _, tier := range DynamicTiers {
		s, ok := t.Levels[tier]
		if !ok {
			return fmt.Errorf("tier %s: missing", tier)
		}
		if err := checkSetting(s.Priority, s.ChangeFreq); err != nil {
			return fmt.Errorf("tier %s: %w", tier, err)
		}
		if s.Priority > prev {
			return fmt.Errorf("tier %s: priority %.2f exceeds shallower tier (%.2f)", tier, s.Priority, prev)
		}
		prev = s.Priority
	}
	return nil
}

func checkSetting(priority float64, freq ChangeFreq) error {
	if priority < 0 || priority > 1 {
		return fmt.Errorf("priority %v outside [0, 1]", priority)
	}
	if !freq.Valid() {
		return fmt.Errorf("unknown changefreq %q", freq)
	}
	return nil
}
