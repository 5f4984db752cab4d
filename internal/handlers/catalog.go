// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"helpnest/internal/models"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// CategoryRepo is the category store as used by the catalog API.
type CategoryRepo interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ServiceRepo is the service store as used by the catalog API.
type ServiceRepo interface {
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Service, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Service, error)
	Create(ctx context.Context, s *models.Service) (*models.Service, error)
	Update(ctx context.Context, s *models.Service) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// GeographyRepo is the geography store as used by the catalog API.
type GeographyRepo interface {
	ListCountries(ctx context.Context) ([]models.Country, error)
	CreateCountry(ctx context.Context, code, name string) (*models.Country, error)
	CreateState(ctx context.Context, countryID uuid.UUID, name string) (*models.State, error)
	CreateCity(ctx context.Context, stateID uuid.UUID, name string) (*models.City, error)
	Delete(ctx context.Context, level string, id uuid.UUID) error
}

// Catalog is a small JSON API over the catalog and geography stores. Every
// successful mutation publishes a change event through the stores, which
// is what drives sitemap regeneration.
type Catalog struct {
	categories CategoryRepo
	services   ServiceRepo
	geography  GeographyRepo
}

// NewCatalog creates the catalog API handlers.
func NewCatalog(categories CategoryRepo, services ServiceRepo, geography GeographyRepo) *Catalog {
	return &Catalog{categories: categories, services: services, geography: geography}
}

type categoryInput struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
	SortOrder   int    `json:"sort_order"`
}

type serviceInput struct {
	CategoryID      string `json:"category_id"`
	Title           string `json:"title"`
	Slug            string `json:"slug"`
	Description     string `json:"description"`
	PriceCents      int64  `json:"price_cents"`
	DurationMinutes int    `json:"duration_minutes"`
	Active          *bool  `json:"active"`
	SortOrder       int    `json:"sort_order"`
}

type placeInput struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id"`
}

// ListCategories returns every category with its services.
func (c *Catalog) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cats, err := c.categories.List(ctx)
	if err != nil {
		slog.Error("list categories failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not load categories")
		return
	}
	for i := range cats {
		svcs, err := c.services.ListByCategory(ctx, cats[i].ID)
		if err != nil {
			slog.Error("list services failed", "category_id", cats[i].ID, "error", err)
			writeJSONError(w, http.StatusInternalServerError, "could not load services")
			return
		}
		cats[i].Services = svcs
	}
	if cats == nil {
		cats = []models.Category{}
	}
	writeJSON(w, http.StatusOK, cats)
}

// CreateCategory inserts a category.
func (c *Catalog) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in categoryInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if msg := validateCategory(in); msg != "" {
		writeJSONError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	created, err := c.categories.Create(r.Context(), &models.Category{
		Title:       strings.TrimSpace(in.Title),
		Slug:        in.Slug,
		Description: in.Description,
		Active:      in.Active == nil || *in.Active,
		SortOrder:   in.SortOrder,
	})
	if err != nil {
		slog.Error("create category failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not create category")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateCategory replaces a category's fields. Omitted "active" keeps the
// current value.
func (c *Catalog) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in categoryInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if msg := validateCategory(in); msg != "" {
		writeJSONError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	existing, err := c.categories.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("find category failed", "id", id, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not load category")
		return
	}
	if existing == nil {
		writeJSONError(w, http.StatusNotFound, "category not found")
		return
	}

	existing.Title = strings.TrimSpace(in.Title)
	if in.Slug != "" {
		existing.Slug = in.Slug
	}
	existing.Description = in.Description
	existing.SortOrder = in.SortOrder
	if in.Active != nil {
		existing.Active = *in.Active
	}
	if err := c.categories.Update(r.Context(), existing); err != nil {
		slog.Error("update category failed", "id", id, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not update category")
		return
	}
	writeJSON(w, http.StatusOK, existing)
}

// DeleteCategory removes a category and its services.
func (c *Catalog) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := c.categories.Delete(r.Context(), id); err != nil {
		slog.Error("delete category failed", "id", id, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not delete category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateService inserts a service under an existing category.
func (c *Catalog) CreateService(w http.ResponseWriter, r *http.Request) {
	var in serviceInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if msg := validateService(in); msg != "" {
		writeJSONError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	categoryID, ok := c.existingCategory(w, r, in.CategoryID)
	if !ok {
		return
	}

	created, err := c.services.Create(r.Context(), &models.Service{
		CategoryID:      categoryID,
		Title:           strings.TrimSpace(in.Title),
		Slug:            in.Slug,
		Description:     in.Description,
		PriceCents:      in.PriceCents,
		DurationMinutes: in.DurationMinutes,
		Active:          in.Active == nil || *in.Active,
		SortOrder:       in.SortOrder,
	})
	if err != nil {
		slog.Error("create service failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not create service")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateService replaces a service's fields.
func (c *Catalog) UpdateService(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in serviceInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if msg := validateService(in); msg != "" {
		writeJSONError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	categoryID, ok := c.existingCategory(w, r, in.CategoryID)
	if !ok {
		return
	}

	existing, err := c.services.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("find service failed", "id", id, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not load service")
		return
	}
	if existing == nil {
		writeJSONError(w, http.StatusNotFound, "service not found")
		return
	}

	existing.CategoryID = categoryID
	existing.Title = strings.TrimSpace(in.Title)
	if in.Slug != "" {
		existing.Slug = in.Slug
	}
	existing.Description = in.Description
	existing.PriceCents = in.PriceCents
	existing.DurationMinutes = in.DurationMinutes
	existing.SortOrder = in.SortOrder
	if in.Active != nil {
		existing.Active = *in.Active
	}
	if err := c.services.Update(r.Context(), existing); err != nil {
		slog.Error("update service failed", "id", id, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not update service")
		return
	}
	writeJSON(w, http.StatusOK, existing)
}

// DeleteService removes a service.
func (c *Catalog) DeleteService(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := c.services.Delete(r.Context(), id); err != nil {
		slog.Error("delete service failed", "id", id, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not delete service")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListGeography returns the nested country/state/city tree.
func (c *Catalog) ListGeography(w http.ResponseWriter, r *http.Request) {
	countries, err := c.geography.ListCountries(r.Context())
	if err != nil {
		slog.Error("list geography failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not load geography")
		return
	}
	if countries == nil {
		countries = []models.Country{}
	}
	writeJSON(w, http.StatusOK, countries)
}

// CreatePlace inserts a country, state or city depending on {level}.
// States and cities name their parent in parent_id.
func (c *Catalog) CreatePlace(w http.ResponseWriter, r *http.Request) {
	level := chi.URLParam(r, "level")
	var in placeInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if msg := validatePlace(in.Name); msg != "" {
		writeJSONError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	name := strings.TrimSpace(in.Name)

	var (
		created any
		err     error
	)
	switch level {
	case "countries":
		if msg := validateCountryCode(in.Code); msg != "" {
			writeJSONError(w, http.StatusUnprocessableEntity, msg)
			return
		}
		created, err = c.geography.CreateCountry(r.Context(), in.Code, name)
	case "states", "cities":
		parentID, perr := uuid.Parse(in.ParentID)
		if perr != nil {
			writeJSONError(w, http.StatusUnprocessableEntity, "parent_id must be a UUID")
			return
		}
		if level == "states" {
			created, err = c.geography.CreateState(r.Context(), parentID, name)
		} else {
			created, err = c.geography.CreateCity(r.Context(), parentID, name)
		}
	default:
		writeJSONError(w, http.StatusNotFound, "unknown geography level")
		return
	}
	if err != nil {
		slog.Error("create place failed", "level", level, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not create place")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// placeLevels maps the URL segment to the store's level name.
var placeLevels = map[string]string{
	"countries": "country",
	"states":    "state",
	"cities":    "city",
}

// DeletePlace removes a country, state or city and everything below it.
func (c *Catalog) DeletePlace(w http.ResponseWriter, r *http.Request) {
	level, ok := placeLevels[chi.URLParam(r, "level")]
	if !ok {
		writeJSONError(w, http.StatusNotFound, "unknown geography level")
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := c.geography.Delete(r.Context(), level, id); err != nil {
		slog.Error("delete place failed", "level", level, "id", id, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not delete place")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// existingCategory parses raw and checks the category exists.
func (c *Catalog) existingCategory(w http.ResponseWriter, r *http.Request, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, "category_id must be a UUID")
		return uuid.Nil, false
	}
	cat, err := c.categories.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("find category failed", "id", id, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not load category")
		return uuid.Nil, false
	}
	if cat == nil {
		writeJSONError(w, http.StatusUnprocessableEntity, "category does not exist")
		return uuid.Nil, false
	}
	return id, true
}

func idParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}
