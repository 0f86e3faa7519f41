package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/tripwizard/internal/cache"
	"github.com/pkordes/tripwizard/internal/domain"
	"github.com/pkordes/tripwizard/internal/repo"
)

// Searcher is the provider surface SearchService needs. provider.Resilient
// satisfies it.
type Searcher interface {
	Flights(ctx context.Context, q domain.FlightQuery) ([]domain.Flight, domain.DataSource, error)
	Hotels(ctx context.Context, q domain.HotelQuery) ([]domain.Hotel, domain.DataSource, error)
	Activities(ctx context.Context, q domain.ActivityQuery) ([]domain.Component, domain.DataSource, error)
}

// SearchResult is one page of search results, already priced and normalized
// into planned components that can be added to a draft as they are.
type SearchResult[T any] struct {
	Items  []T
	Source domain.DataSource
	Cached bool
}

// SearchService validates searches, serves repeats from the cache, applies
// pricing rules and normalizes provider results.
type SearchService struct {
	providers Searcher
	cache     cache.SearchCache
	rules     repo.PricingRuleRepo
	log       *slog.Logger
}

// NewSearchService wires a SearchService. rules may be nil when no markup is
// configured.
func NewSearchService(p Searcher, c cache.SearchCache, rules repo.PricingRuleRepo, log *slog.Logger) *SearchService {
	return &SearchService{providers: p, cache: c, rules: rules, log: log}
}

func (s *SearchService) SearchFlights(ctx context.Context, q domain.FlightQuery) (SearchResult[domain.Flight], error) {
	if err := validateFlightQuery(&q); err != nil {
		return SearchResult[domain.Flight]{}, fmt.Errorf("service.SearchService.SearchFlights: %w", err)
	}

	items, src, hit, err := cached(ctx, s, "flights", q, func(ctx context.Context) ([]domain.Flight, domain.DataSource, error) {
		return s.providers.Flights(ctx, q)
	})
	if err != nil {
		return SearchResult[domain.Flight]{}, fmt.Errorf("service.SearchService.SearchFlights: %w", err)
	}

	rule := s.ruleFor(ctx, domain.ComponentFlight, q.Route())
	for i := range items {
		items[i] = finish(items[i], rule)
	}
	return SearchResult[domain.Flight]{Items: items, Source: src, Cached: hit}, nil
}

func (s *SearchService) SearchHotels(ctx context.Context, q domain.HotelQuery) (SearchResult[domain.Hotel], error) {
	if err := validateHotelQuery(&q); err != nil {
		return SearchResult[domain.Hotel]{}, fmt.Errorf("service.SearchService.SearchHotels: %w", err)
	}

	items, src, hit, err := cached(ctx, s, "hotels", q, func(ctx context.Context) ([]domain.Hotel, domain.DataSource, error) {
		return s.providers.Hotels(ctx, q)
	})
	if err != nil {
		return SearchResult[domain.Hotel]{}, fmt.Errorf("service.SearchService.SearchHotels: %w", err)
	}

	rule := s.ruleFor(ctx, domain.ComponentHotel, q.City)
	for i := range items {
		items[i] = finish(items[i], rule)
	}
	return SearchResult[domain.Hotel]{Items: items, Source: src, Cached: hit}, nil
}

func (s *SearchService) SearchActivities(ctx context.Context, q domain.ActivityQuery) (SearchResult[domain.Component], error) {
	if err := validateActivityQuery(&q); err != nil {
		return SearchResult[domain.Component]{}, fmt.Errorf("service.SearchService.SearchActivities: %w", err)
	}

	list, src, hit, err := cached(ctx, s, "activities", q, func(ctx context.Context) (domain.ComponentList, domain.DataSource, error) {
		items, src, err := s.providers.Activities(ctx, q)
		return domain.ComponentList(items), src, err
	})
	if err != nil {
		return SearchResult[domain.Component]{}, fmt.Errorf("service.SearchService.SearchActivities: %w", err)
	}

	rule := s.ruleFor(ctx, q.Kind, q.City)
	items := []domain.Component(list)
	for i := range items {
		items[i] = finish(items[i], rule)
	}
	return SearchResult[domain.Component]{Items: items, Source: src, Cached: hit}, nil
}

// cacheEntry is the stored form of a search result.
type cacheEntry[T any] struct {
	Items  T                 `json:"items"`
	Source domain.DataSource `json:"source"`
}

// cached serves kind/query from the cache, or calls fetch and stores a
// primary result. Cache failures are logged and never fail the search.
func cached[T any](ctx context.Context, s *SearchService, kind string, query any,
	fetch func(context.Context) (T, domain.DataSource, error)) (T, domain.DataSource, bool, error) {

	key, err := cache.Key(kind, query)
	if err != nil {
		var zero T
		return zero, "", false, err
	}

	var entry cacheEntry[T]
	hit, err := s.cache.Get(ctx, key, &entry)
	if err != nil {
		s.log.WarnContext(ctx, "search cache read failed", "key", key, "error", err)
	}
	if hit {
		return entry.Items, entry.Source, true, nil
	}

	items, src, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, "", false, err
	}
	// Fallback data is not cached so the primary is retried as soon as it
	// recovers.
	if src != domain.SourcePrimary {
		return items, src, false, nil
	}
	if err := s.cache.Set(ctx, key, cacheEntry[T]{Items: items, Source: src}); err != nil {
		s.log.WarnContext(ctx, "search cache write failed", "key", key, "error", err)
	}
	return items, src, false, nil
}

// ruleFor returns the highest-priority active rule matching kind and route,
// or nil. Rule lookup failures disable markup for the request.
func (s *SearchService) ruleFor(ctx context.Context, kind domain.ComponentType, route string) *domain.PricingRule {
	if s.rules == nil {
		return nil
	}
	rules, err := s.rules.ListActive(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "pricing rules unavailable", "error", err)
		return nil
	}
	for _, r := range rules {
		if r.Matches(kind, route) {
			return &r
		}
	}
	return nil
}

// finish gives a search result a fresh id, the planned status and the
// marked-up price.
func finish[T domain.Component](c T, rule *domain.PricingRule) T {
	base := c.Common()
	base.ID = uuid.New()
	base.Status = domain.StatusPlanned
	base.BookingDate = nil
	if base.Currency == "" {
		base.Currency = domain.DefaultCurrency
	}
	if rule != nil {
		base.Price = rule.Apply(base.Price)
	}
	base.Price = roundCents(base.Price)
	return domain.WithCommon(c, base).(T)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func validateFlightQuery(q *domain.FlightQuery) error {
	q.Origin = strings.ToUpper(strings.TrimSpace(q.Origin))
	q.Destination = strings.ToUpper(strings.TrimSpace(q.Destination))
	switch {
	case q.Origin == "":
		return fmt.Errorf("%w: origin is required", domain.ErrValidation)
	case q.Destination == "":
		return fmt.Errorf("%w: destination is required", domain.ErrValidation)
	case q.Origin == q.Destination:
		return fmt.Errorf("%w: origin and destination must differ", domain.ErrValidation)
	case q.DepartDate.IsZero():
		return fmt.Errorf("%w: depart_date is required", domain.ErrValidation)
	case !q.ReturnDate.IsZero() && q.ReturnDate.Before(q.DepartDate):
		return fmt.Errorf("%w: return_date must not be before depart_date", domain.ErrValidation)
	case q.Passengers < 0:
		return fmt.Errorf("%w: passengers must be at least 1", domain.ErrValidation)
	}
	if q.Passengers == 0 {
		q.Passengers = 1
	}
	q.DepartDate, q.ReturnDate = domain.Day(q.DepartDate), domain.Day(q.ReturnDate)
	return nil
}

func validateHotelQuery(q *domain.HotelQuery) error {
	q.City = strings.TrimSpace(q.City)
	switch {
	case q.City == "":
		return fmt.Errorf("%w: city is required", domain.ErrValidation)
	case q.CheckIn.IsZero() || q.CheckOut.IsZero():
		return fmt.Errorf("%w: check_in and check_out are required", domain.ErrValidation)
	case !domain.Day(q.CheckIn).Before(domain.Day(q.CheckOut)):
		return fmt.Errorf("%w: check_in must be before check_out", domain.ErrValidation)
	case q.Rooms < 0 || q.Guests < 0:
		return fmt.Errorf("%w: rooms and guests must be at least 1", domain.ErrValidation)
	}
	q.Rooms, q.Guests = max(q.Rooms, 1), max(q.Guests, 1)
	q.CheckIn, q.CheckOut = domain.Day(q.CheckIn), domain.Day(q.CheckOut)
	return nil
}

func validateActivityQuery(q *domain.ActivityQuery) error {
	q.City = strings.TrimSpace(q.City)
	if q.City == "" {
		return fmt.Errorf("%w: city is required", domain.ErrValidation)
	}
	switch q.Kind {
	case "":
		q.Kind = domain.ComponentActivity
	case domain.ComponentActivity, domain.ComponentPOI:
	default:
		return fmt.Errorf("%w: kind must be activity or poi", domain.ErrValidation)
	}
	q.Date = domain.Day(q.Date)
	return nil
}
