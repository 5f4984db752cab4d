// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"strings"
	"unicode/utf8"

	"helpnest/internal/slug"
)

// Validation limits for catalog and geography fields.
const (
	maxTitleLen       = 200
	maxSlugLen        = 200
	maxDescriptionLen = 5_000
	maxPlaceNameLen   = 120
)

// validateCategory checks category input and returns the first error found.
func validateCategory(in categoryInput) string {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 200 characters)."
	}
	return validateSlugAndDescription(in.Slug, in.Description)
}

// validateService checks service input and returns the first error found.
func validateService(in serviceInput) string {
	if msg := validateCategory(categoryInput{Title: in.Title, Slug: in.Slug, Description: in.Description}); msg != "" {
		return msg
	}
	if in.CategoryID == "" {
		return "Category is required."
	}
	if in.PriceCents < 0 {
		return "Price must not be negative."
	}
	if in.DurationMinutes < 0 {
		return "Duration must not be negative."
	}
	return ""
}

func validateSlugAndDescription(s, description string) string {
	if utf8.RuneCountInString(s) > maxSlugLen {
		return "Slug is too long (max 200 characters)."
	}
	if s != "" && slug.Generate(s) != s {
		return "Slug may only contain lowercase letters, digits and single hyphens."
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return "Description is too long (max 5,000 characters)."
	}
	return ""
}

// validatePlace checks a country, state or city name.
func validatePlace(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(name) > maxPlaceNameLen {
		return "Name is too long (max 120 characters)."
	}
	return ""
}

// validateCountryCode checks an ISO 3166-1 alpha-2 code.
func validateCountryCode(code string) string {
	if len(code) != 2 {
		return "Country code must have two letters."
	}
	for _, c := range code {
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return "Country code must have two letters."
		}
	}
	return ""
}
