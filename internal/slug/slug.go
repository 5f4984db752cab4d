// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings
// and per-collection collision handling.
package slug

import (
	"regexp"
	"strconv"
	"strings"
)

// Fallback replaces titles that normalize to an empty slug.
const Fallback = "untitled"

var (
	// disallowed matches anything outside the slug alphabet.
	disallowed = regexp.MustCompile(`[^a-z0-9-]`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Hello, World! 2026" → "hello-world-2026"
//
// Whitespace runs become a single hyphen before disallowed characters are
// stripped, so "A & B" yields "a-b". Generate is idempotent and never fails;
// the result may be empty.
func Generate(s string) string {
	result := strings.Join(strings.Fields(strings.ToLower(s)), "-")
	result = disallowed.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	return result
}

// Registry hands out unique slugs within one collection (all categories,
// the cities of one state, ...). The first claimant of a slug keeps it;
// later claimants receive "-2", "-3", ... in claim order. A Registry is not
// safe for concurrent use.
type Registry struct {
	taken map[string]bool
	next  map[string]int
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		taken: make(map[string]bool),
		next:  make(map[string]int),
	}
}

// Claim normalizes s and reserves a unique slug for it. The boolean reports
// whether the slug had to be changed (empty input or a collision).
func (r *Registry) Claim(s string) (string, bool) {
	base := Generate(s)
	changed := false
	if base == "" {
		base = Fallback
		changed = true
	}

	if !r.taken[base] {
		r.taken[base] = true
		return base, changed
	}

	n := r.next[base]
	if n < 2 {
		n = 2
	}
	candidate := base + "-" + strconv.Itoa(n)
	for r.taken[candidate] {
		n++
		candidate = base + "-" + strconv.Itoa(n)
	}
	r.next[base] = n + 1
	r.taken[candidate] = true
	return candidate, true
}
