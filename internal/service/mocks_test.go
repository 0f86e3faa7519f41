package service_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/tripwizard/internal/cache"
	"github.com/pkordes/tripwizard/internal/domain"
	"github.com/pkordes/tripwizard/internal/provider"
	"github.com/pkordes/tripwizard/internal/repo"
	"github.com/pkordes/tripwizard/internal/service"
)

// mockDraftRepo is a hand-written test double for repo.DraftRepo.
// Each method is a function field; set only the ones a test needs.
type mockDraftRepo struct {
	create    func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	get       func(ctx context.Context, ownerID string, id uuid.UUID) (domain.Trip, error)
	listPaged func(ctx context.Context, ownerID string, p domain.PaginationParams) ([]domain.Trip, int64, error)
	save      func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
}

func (m *mockDraftRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockDraftRepo) Get(ctx context.Context, ownerID string, id uuid.UUID) (domain.Trip, error) {
	return m.get(ctx, ownerID, id)
}
func (m *mockDraftRepo) ListPaged(ctx context.Context, ownerID string, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.listPaged(ctx, ownerID, p)
}
func (m *mockDraftRepo) Save(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.save(ctx, trip)
}

var _ repo.DraftRepo = (*mockDraftRepo)(nil)

// storeRepo is a mockDraftRepo over a single in-memory trip that honours
// the version contract.
func storeRepo(stored *domain.Trip) *mockDraftRepo {
	return &mockDraftRepo{
		create: func(_ context.Context, t domain.Trip) (domain.Trip, error) {
			t.ID = uuid.New()
			t.Version = 1
			*stored = t.Clone()
			return t, nil
		},
		get: func(_ context.Context, owner string, id uuid.UUID) (domain.Trip, error) {
			if stored.ID != id || stored.OwnerID != owner {
				return domain.Trip{}, domain.ErrNotFound
			}
			return stored.Clone(), nil
		},
		save: func(_ context.Context, t domain.Trip) (domain.Trip, error) {
			if t.Version != stored.Version {
				return domain.Trip{}, domain.ErrStaleDraft
			}
			t.Version++
			*stored = t.Clone()
			return t, nil
		},
	}
}

type mockPricingRuleRepo struct {
	listActive func(ctx context.Context) ([]domain.PricingRule, error)
}

func (m *mockPricingRuleRepo) ListActive(ctx context.Context) ([]domain.PricingRule, error) {
	return m.listActive(ctx)
}
func (m *mockPricingRuleRepo) Create(context.Context, domain.PricingRule) (domain.PricingRule, error) {
	panic("not used")
}

var _ repo.PricingRuleRepo = (*mockPricingRuleRepo)(nil)

type mockSearcher struct {
	flights    func(ctx context.Context, q domain.FlightQuery) ([]domain.Flight, domain.DataSource, error)
	hotels     func(ctx context.Context, q domain.HotelQuery) ([]domain.Hotel, domain.DataSource, error)
	activities func(ctx context.Context, q domain.ActivityQuery) ([]domain.Component, domain.DataSource, error)
}

func (m *mockSearcher) Flights(ctx context.Context, q domain.FlightQuery) ([]domain.Flight, domain.DataSource, error) {
	return m.flights(ctx, q)
}
func (m *mockSearcher) Hotels(ctx context.Context, q domain.HotelQuery) ([]domain.Hotel, domain.DataSource, error) {
	return m.hotels(ctx, q)
}
func (m *mockSearcher) Activities(ctx context.Context, q domain.ActivityQuery) ([]domain.Component, domain.DataSource, error) {
	return m.activities(ctx, q)
}

var _ service.Searcher = (*mockSearcher)(nil)

// memCache is an in-memory cache.SearchCache that stores JSON like Redis does.
type memCache struct {
	entries map[string][]byte
}

func newMemCache() *memCache { return &memCache{entries: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string, dest any) (bool, error) {
	data, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (c *memCache) Set(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = data
	return nil
}

var _ cache.SearchCache = (*memCache)(nil)

type mockConverter struct {
	convert func(ctx context.Context, from, to string, amount float64) (domain.CurrencyQuote, error)
}

func (m *mockConverter) Convert(ctx context.Context, from, to string, amount float64) (domain.CurrencyQuote, error) {
	return m.convert(ctx, from, to, amount)
}

var _ provider.CurrencyConverter = (*mockConverter)(nil)

type mockVisa struct {
	requirement func(ctx context.Context, passport, destination string) (domain.VisaRequirement, error)
}

func (m *mockVisa) Requirement(ctx context.Context, passport, destination string) (domain.VisaRequirement, error) {
	return m.requirement(ctx, passport, destination)
}

var _ provider.VisaChecker = (*mockVisa)(nil)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func day(s string) time.Time {
	d, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}
