// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package sitemap

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"helpnest/internal/models"
	"helpnest/internal/slug"
)

// Snapshot is the read-only catalog and geography input of one run.
// A nil collection means the source contributed nothing.
type Snapshot struct {
	Categories []models.Category
	Services   []models.Service
	Countries  []models.Country
}

// EnumerateOptions configures Enumerate.
type EnumerateOptions struct {
	BaseURL     string
	Tiers       TierTable
	GeneratedAt time.Time
}

// Enumeration is the ordered URL space of one snapshot.
type Enumeration struct {
	Entries  []Entry
	Counts   map[Tier]int
	Warnings []string
}

// Enumerate builds the ordered entry list: static routes, categories,
// services, countries, states, cities, then for every city its
// city×category and city×service entries. The same snapshot always yields
// the same sequence. Enumerate never modifies snap.
func Enumerate(ctx context.Context, snap Snapshot, opts EnumerateOptions) (*Enumeration, error) {
	e := &enumerator{
		base:  strings.TrimRight(opts.BaseURL, "/"),
		tiers: opts.Tiers,
		today: dateOf(opts.GeneratedAt, time.Now()),
		out:   &Enumeration{Counts: make(map[Tier]int)},
	}

	cats := e.categories(snap.Categories)
	svcs := e.services(snap.Services, cats)
	countries := e.geography(snap.Countries)

	for _, r := range opts.Tiers.Static {
		e.add(TierStatic, r.Path, r.Priority, r.ChangeFreq, e.today)
	}
	for _, c := range cats {
		e.level(TierCategory, "/services/"+c.slug, c.updated)
	}
	for _, s := range svcs {
		e.level(TierService, "/service/"+s.slug, s.updated)
	}
	for _, c := range countries {
		e.level(TierCountry, "/locations/"+c.slug, c.updated)
	}
	for _, c := range countries {
		for _, s := range c.states {
			e.level(TierState, "/locations/"+c.slug+"/"+s.slug, s.updated)
		}
	}
	for _, c := range countries {
		for _, s := range c.states {
			for _, city := range s.cities {
				e.level(TierCity, "/locations/"+c.slug+"/"+s.slug+"/"+city.slug, city.updated)
			}
		}
	}
	for _, c := range countries {
		for _, s := range c.states {
			for _, city := range s.cities {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				prefix := "/locations/" + c.slug + "/" + s.slug + "/" + city.slug
				for _, cat := range cats {
					e.level(TierCityCategory, prefix+"/services/"+cat.slug, cat.updated)
				}
				for _, svc := range svcs {
					e.level(TierCityService, prefix+"/service/"+svc.slug, svc.updated)
				}
			}
		}
	}

	if err := checkUnique(e.out.Entries); err != nil {
		return nil, err
	}
	return e.out, nil
}

// node is a sorted, slugged collection member.
type node struct {
	id      uuid.UUID
	slug    string
	updated time.Time
}

type countryNode struct {
	node
	states []stateNode
}

type stateNode struct {
	node
	cities []node
}

type enumerator struct {
	base  string
	tiers TierTable
	today time.Time
	out   *Enumeration
}

func (e *enumerator) add(tier Tier, path string, priority float64, freq ChangeFreq, lastmod time.Time) {
	e.out.Entries = append(e.out.Entries, Entry{
		Location:     e.base + path,
		ChangeFreq:   freq,
		Priority:     priority,
		LastModified: lastmod,
		Tier:         tier,
	})
	e.out.Counts[tier]++
}

func (e *enumerator) level(tier Tier, path string, updated time.Time) {
	s := e.tiers.Setting(tier)
	e.add(tier, path, s.Priority, s.ChangeFreq, dateOf(updated, e.today))
}

func (e *enumerator) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	slog.Warn("sitemap enumeration", "warning", msg)
	e.out.Warnings = append(e.out.Warnings, msg)
}

// claim reserves a unique slug, preferring a stored slug over the title.
func (e *enumerator) claim(reg *slug.Registry, kind string, id uuid.UUID, stored, title string) string {
	source := stored
	if slug.Generate(source) == "" {
		source = title
	}
	s, changed := reg.Claim(source)
	if changed {
		if slug.Generate(source) == "" {
			e.warn("%s %s: title %q has no slug characters, using %q", kind, id, title, s)
		} else {
			e.warn("%s %s: slug collision on %q, using %q", kind, id, slug.Generate(source), s)
		}
	}
	return s
}

func (e *enumerator) categories(in []models.Category) []node {
	sorted := make([]models.Category, 0, len(in))
	for _, c := range in {
		if c.Active {
			sorted = append(sorted, c)
		}
	}
	slices.SortStableFunc(sorted, func(a, b models.Category) int {
		return cmp.Or(
			cmp.Compare(a.SortOrder, b.SortOrder),
			cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)),
			strings.Compare(a.ID.String(), b.ID.String()),
		)
	})

	reg := slug.NewRegistry()
	out := make([]node, 0, len(sorted))
	for _, c := range sorted {
		out = append(out, node{
			id:      c.ID,
			slug:    e.claim(reg, "category", c.ID, c.Slug, c.Title),
			updated: c.UpdatedAt,
		})
	}
	return out
}

// services orders active services by their category's position, then by
// their own sort order and title. Services whose category is not part of
// the snapshot are left out.
func (e *enumerator) services(in []models.Service, cats []node) []node {
	rank := make(map[uuid.UUID]int, len(cats))
	for i, c := range cats {
		rank[c.id] = i
	}

	sorted := make([]models.Service, 0, len(in))
	orphans := 0
	for _, s := range in {
		if !s.IsBookable() {
			continue
		}
		if _, ok := rank[s.CategoryID]; !ok {
			orphans++
			continue
		}
		sorted = append(sorted, s)
	}
	if orphans > 0 {
		e.warn("%d active services skipped: category not in snapshot", orphans)
	}

	slices.SortStableFunc(sorted, func(a, b models.Service) int {
		return cmp.Or(
			cmp.Compare(rank[a.CategoryID], rank[b.CategoryID]),
			cmp.Compare(a.SortOrder, b.SortOrder),
			cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)),
			strings.Compare(a.ID.String(), b.ID.String()),
		)
	})

	reg := slug.NewRegistry()
	out := make([]node, 0, len(sorted))
	for _, s := range sorted {
		out = append(out, node{
			id:      s.ID,
			slug:    e.claim(reg, "service", s.ID, s.Slug, s.Title),
			updated: s.UpdatedAt,
		})
	}
	return out
}

func byName[T any](name func(T) string, id func(T) uuid.UUID) func(a, b T) int {
	return func(a, b T) int {
		return cmp.Or(
			cmp.Compare(strings.ToLower(name(a)), strings.ToLower(name(b))),
			strings.Compare(id(a).String(), id(b).String()),
		)
	}
}

// geography sorts countries, states and cities by name and slugs each
// level within its parent.
func (e *enumerator) geography(in []models.Country) []countryNode {
	countries := slices.Clone(in)
	slices.SortStableFunc(countries, byName(
		func(c models.Country) string { return c.Name },
		func(c models.Country) uuid.UUID { return c.ID },
	))

	countryReg := slug.NewRegistry()
	out := make([]countryNode, 0, len(countries))
	for _, c := range countries {
		cn := countryNode{node: node{
			id:      c.ID,
			slug:    e.claim(countryReg, "country", c.ID, c.Slug, c.Name),
			updated: c.UpdatedAt,
		}}

		states := slices.Clone(c.States)
		slices.SortStableFunc(states, byName(
			func(s models.State) string { return s.Name },
			func(s models.State) uuid.UUID { return s.ID },
		))
		stateReg := slug.NewRegistry()
		for _, s := range states {
			sn := stateNode{node: node{
				id:      s.ID,
				slug:    e.claim(stateReg, "state", s.ID, s.Slug, s.Name),
				updated: s.UpdatedAt,
			}}

			cities := slices.Clone(s.Cities)
			slices.SortStableFunc(cities, byName(
				func(c models.City) string { return c.Name },
				func(c models.City) uuid.UUID { return c.ID },
			))
			cityReg := slug.NewRegistry()
			for _, city := range cities {
				sn.cities = append(sn.cities, node{
					id:      city.ID,
					slug:    e.claim(cityReg, "city", city.ID, city.Slug, city.Name),
					updated: city.UpdatedAt,
				})
			}
			cn.states = append(cn.states, sn)
		}
		out = append(out, cn)
	}
	return out
}

// checkUnique is the post-enumeration uniqueness pass.
func checkUnique(entries []Entry) error {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.Location]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateLocation, e.Location)
		}
		seen[e.Location] = struct{}{}
	}
	return nil
}
