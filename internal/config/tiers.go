// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"helpnest/internal/sitemap"
)

// LoadTierTable returns the default tier table, overridden by the YAML file
// at path when path is non-empty. A "static" list in the file replaces the
// default static routes; "levels" entries replace individual tiers.
//
//	static:
//	  - {path: /, priority: 1.0, changefreq: daily}
//	levels:
//	  city: {priority: 0.45, changefreq: weekly}
func LoadTierTable(path string) (sitemap.TierTable, error) {
	table := sitemap.DefaultTierTable()
	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return sitemap.TierTable{}, fmt.Errorf("read tier table: %w", err)
	}
	if err := yaml.Unmarshal(data, &table); err != nil {
		return sitemap.TierTable{}, fmt.Errorf("parse tier table %s: %w", path, err)
	}
	if err := table.Validate(); err != nil {
		return sitemap.TierTable{}, fmt.Errorf("tier table %s: %w", path, err)
	}
	return table, nil
}
