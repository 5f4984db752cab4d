package sitemap

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"helpnest/internal/models"
)

var (
	testBase = "https://helpnest.example"
	testNow  = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	updated  = time.Date(2026, 2, 1, 8, 30, 0, 0, time.UTC)
)

// id returns a deterministic UUID for fixtures.
func id(n byte) uuid.UUID {
	var u uuid.UUID
	u[15] = n
	return u
}

// scenarioA is 2 categories (3 + 2 services) and 1 country / 1 state /
// 2 cities.
func scenarioA() Snapshot {
	computers := models.Category{ID: id(1), Title: "Computer Repair", Active: true, SortOrder: 1, UpdatedAt: updated}
	network := models.Category{ID: id(2), Title: "Home Networking", Active: true, SortOrder: 2, UpdatedAt: updated}

	return Snapshot{
		Categories: []models.Category{network, computers},
		Services: []models.Service{
			{ID: id(10), CategoryID: computers.ID, Title: "Virus Removal", Active: true, SortOrder: 1, UpdatedAt: updated},
			{ID: id(11), CategoryID: computers.ID, Title: "Screen Replacement", Active: true, SortOrder: 2, UpdatedAt: updated},
			{ID: id(12), CategoryID: computers.ID, Title: "Data Recovery", Active: true, SortOrder: 3, UpdatedAt: updated},
			{ID: id(13), CategoryID: network.ID, Title: "Wi-Fi Setup", Active: true, SortOrder: 1, UpdatedAt: updated},
			{ID: id(14), CategoryID: network.ID, Title: "Router Configuration", Active: true, SortOrder: 2, UpdatedAt: updated},
			{ID: id(15), CategoryID: network.ID, Title: "Legacy Modem Install", Active: false, SortOrder: 3, UpdatedAt: updated},
		},
		Countries: []models.Country{{
			ID:   id(20),
			Name: "United States",
			States: []models.State{{
				ID:   id(21),
				Name: "Texas",
				Cities: []models.City{
					{ID: id(23), Name: "Dallas"},
					{ID: id(22), Name: "Austin"},
				},
			}},
		}},
	}
}

func testOptions() EnumerateOptions {
	return EnumerateOptions{BaseURL: testBase, Tiers: DefaultTierTable(), GeneratedAt: testNow}
}

// fakeCatalog serves a fixed snapshot or fails.
type fakeCatalog struct {
	snap   Snapshot
	catErr error
	svcErr error
	block  bool
}

func (f *fakeCatalog) ListActiveCategories(ctx context.Context) ([]models.Category, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.catErr != nil {
		return nil, f.catErr
	}
	return f.snap.Categories, nil
}

func (f *fakeCatalog) ListActiveServices(ctx context.Context) ([]models.Service, error) {
	if f.svcErr != nil {
		return nil, f.svcErr
	}
	return f.snap.Services, nil
}

type fakeGeography struct {
	countries []models.Country
	err       error
}

func (f *fakeGeography) ListCountries(ctx context.Context) ([]models.Country, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.countries, nil
}

var errBackendDown = errors.New("connection refused")
