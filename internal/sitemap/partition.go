// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package sitemap

import (
	"fmt"
	"strings"
	"time"
)

// CheckCapacity validates a configured page capacity.
func CheckCapacity(capacity int) error {
	if capacity < 1 || capacity > ProtocolMaxURLs {
		return fmt.Errorf("%w: %d (want 1..%d)", ErrInvalidCapacity, capacity, ProtocolMaxURLs)
	}
	return nil
}

// Partition slices entries into consecutive pages of at most capacity
// entries; the last page may be shorter. Pages share the backing array of
// entries. An empty input yields no pages.
func Partition(entries []Entry, capacity int) ([]Page, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}

	pages := make([]Page, 0, PageCount(len(entries), capacity))
	for start := 0; start < len(entries); start += capacity {
		end := min(start+capacity, len(entries))
		pages = append(pages, Page{
			Ordinal: len(pages) + 1,
			Entries: entries[start:end:end],
		})
	}
	return pages, nil
}

// PageCount returns ceil(n / capacity).
func PageCount(n, capacity int) int {
	if capacity < 1 {
		return 0
	}
	return (n + capacity - 1) / capacity
}

// NeedsIndex reports whether n entries need a sitemap index. When n fits in
// a single page the index layer is collapsed and that page is served as the
// root document instead.
func NeedsIndex(n, capacity int) bool {
	return n > capacity
}

// ValidatePages enforces the capacity bound and the 1-based ordinal sequence.
// A failure is an internal bug; nothing may be rendered after it.
func ValidatePages(pages []Page, capacity int) error {
	for i, p := range pages {
		if len(p.Entries) > capacity {
			return fmt.Errorf("%w: page %d has %d entries, capacity %d",
				ErrCapacityExceeded, p.Ordinal, len(p.Entries), capacity)
		}
		if p.Ordinal != i+1 {
			return fmt.Errorf("sitemap: page at position %d has ordinal %d", i, p.Ordinal)
		}
	}
	return nil
}

// PageDir is the directory page documents are served and stored under.
const PageDir = "sitemaps/"

// PagePath returns the site-relative path of a page document.
func PagePath(ordinal int) string {
	return fmt.Sprintf("/%ssitemap-%d.xml", PageDir, ordinal)
}

// BuildIndex lists every page. An index entry's lastmod is the newest
// lastmod among the page's entries, or generatedAt when none is known.
func BuildIndex(pages []Page, baseURL string, generatedAt time.Time) []IndexEntry {
	base := strings.TrimRight(baseURL, "/")
	index := make([]IndexEntry, 0, len(pages))
	for _, p := range pages {
		var newest time.Time
		for _, e := range p.Entries {
			if e.LastModified.After(newest) {
				newest = e.LastModified
			}
		}
		index = append(index, IndexEntry{
			Ordinal:      p.Ordinal,
			Location:     base + PagePath(p.Ordinal),
			LastModified: dateOf(newest, generatedAt),
		})
	}
	return index
}
