package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripwizard/internal/cache"
	"github.com/pkordes/tripwizard/internal/domain"
	"github.com/pkordes/tripwizard/internal/service"
)

func hotelSearcher(calls *int) *mockSearcher {
	return &mockSearcher{
		hotels: func(_ context.Context, q domain.HotelQuery) ([]domain.Hotel, domain.DataSource, error) {
			*calls++
			return []domain.Hotel{hotel(q.City+" Inn", q.CheckIn.Format(domain.DateLayout), q.CheckOut.Format(domain.DateLayout), 300)},
				domain.SourcePrimary, nil
		},
	}
}

func validHotelQuery() domain.HotelQuery {
	return domain.HotelQuery{City: "Kyoto", CheckIn: day("2025-04-02"), CheckOut: day("2025-04-05")}
}

func TestSearchService_SearchHotels_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.HotelQuery)
	}{
		{"missing city", func(q *domain.HotelQuery) { q.City = " " }},
		{"check-in equals check-out", func(q *domain.HotelQuery) { q.CheckOut = q.CheckIn }},
		{"check-out before check-in", func(q *domain.HotelQuery) { q.CheckOut = day("2025-04-01") }},
		{"missing dates", func(q *domain.HotelQuery) { q.CheckIn = day("0001-01-01") }},
		{"negative rooms", func(q *domain.HotelQuery) { q.Rooms = -1 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			svc := service.NewSearchService(hotelSearcher(&calls), cache.Noop{}, nil, discardLogger())
			q := validHotelQuery()
			tc.mutate(&q)

			_, err := svc.SearchHotels(context.Background(), q)

			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Zero(t, calls, "provider must not be called")
		})
	}
}

func TestSearchService_SearchHotels_CachesAndRefreshesIDs(t *testing.T) {
	calls := 0
	svc := service.NewSearchService(hotelSearcher(&calls), newMemCache(), nil, discardLogger())
	ctx := context.Background()

	first, err := svc.SearchHotels(ctx, validHotelQuery())
	require.NoError(t, err)
	second, err := svc.SearchHotels(ctx, validHotelQuery())
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, domain.SourcePrimary, second.Source)
	require.Len(t, second.Items, 1)
	assert.NotEqual(t, first.Items[0].ID, second.Items[0].ID, "every search hands out fresh ids")
	assert.Equal(t, 3, second.Items[0].Nights())
	assert.Equal(t, 1, second.Items[0].RoomQuantity)
}

func TestSearchService_SearchHotels_DoesNotCacheFallback(t *testing.T) {
	calls := 0
	src := domain.SourceFallback
	p := &mockSearcher{hotels: func(_ context.Context, q domain.HotelQuery) ([]domain.Hotel, domain.DataSource, error) {
		calls++
		return []domain.Hotel{hotel(q.City+" Inn", "2025-04-02", "2025-04-05", 300)}, src, nil
	}}
	svc := service.NewSearchService(p, newMemCache(), nil, discardLogger())
	ctx := context.Background()

	first, err := svc.SearchHotels(ctx, validHotelQuery())
	require.NoError(t, err)
	assert.Equal(t, domain.SourceFallback, first.Source)

	// The primary recovers: the next search reaches it instead of replaying
	// fallback data.
	src = domain.SourcePrimary
	second, err := svc.SearchHotels(ctx, validHotelQuery())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.False(t, second.Cached)
	assert.Equal(t, domain.SourcePrimary, second.Source)

	third, err := svc.SearchHotels(ctx, validHotelQuery())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.True(t, third.Cached)
}

func TestSearchService_SearchHotels_AppliesHighestPriorityRule(t *testing.T) {
	calls := 0
	rules := &mockPricingRuleRepo{listActive: func(context.Context) ([]domain.PricingRule, error) {
		return []domain.PricingRule{
			{AppliesTo: "flight", RoutePattern: "*", MarkupType: domain.MarkupFixed, Value: 99, Priority: 100, Active: true},
			{AppliesTo: "hotel", RoutePattern: "KYO*", MarkupType: domain.MarkupPercentage, Value: 10, Priority: 50, Active: true},
			{AppliesTo: "*", RoutePattern: "*", MarkupType: domain.MarkupFixed, Value: 5, Priority: 1, Active: true},
		}, nil
	}}
	svc := service.NewSearchService(hotelSearcher(&calls), cache.Noop{}, rules, discardLogger())

	res, err := svc.SearchHotels(context.Background(), validHotelQuery())

	require.NoError(t, err)
	assert.Equal(t, 330.0, res.Items[0].Price)
	assert.Equal(t, domain.StatusPlanned, res.Items[0].Status)
}

func TestSearchService_SearchHotels_RulesUnavailableSkipsMarkup(t *testing.T) {
	calls := 0
	rules := &mockPricingRuleRepo{listActive: func(context.Context) ([]domain.PricingRule, error) {
		return nil, errors.New("db down")
	}}
	svc := service.NewSearchService(hotelSearcher(&calls), cache.Noop{}, rules, discardLogger())

	res, err := svc.SearchHotels(context.Background(), validHotelQuery())

	require.NoError(t, err)
	assert.Equal(t, 300.0, res.Items[0].Price)
}

func TestSearchService_SearchFlights(t *testing.T) {
	var got domain.FlightQuery
	p := &mockSearcher{flights: func(_ context.Context, q domain.FlightQuery) ([]domain.Flight, domain.DataSource, error) {
		got = q
		return []domain.Flight{{
			ComponentBase: domain.ComponentBase{Title: "SK101", Price: 410},
			FlightType:    domain.FlightOneWay,
		}}, domain.SourceFallback, nil
	}}
	svc := service.NewSearchService(p, cache.Noop{}, nil, discardLogger())

	res, err := svc.SearchFlights(context.Background(), domain.FlightQuery{
		Origin: " jfk", Destination: "nrt", DepartDate: day("2025-04-01"),
	})

	require.NoError(t, err)
	assert.Equal(t, "JFK", got.Origin)
	assert.Equal(t, 1, got.Passengers, "zero passengers defaults to one")
	assert.Equal(t, domain.SourceFallback, res.Source)
	assert.Equal(t, "USD", res.Items[0].Currency)
	assert.NotEqual(t, uuid.Nil, res.Items[0].ID)
}

func TestSearchService_SearchFlights_Validation(t *testing.T) {
	svc := service.NewSearchService(&mockSearcher{}, cache.Noop{}, nil, discardLogger())
	ctx := context.Background()

	for name, q := range map[string]domain.FlightQuery{
		"no origin":       {Destination: "NRT", DepartDate: day("2025-04-01")},
		"same airports":   {Origin: "NRT", Destination: "nrt", DepartDate: day("2025-04-01")},
		"no depart date":  {Origin: "JFK", Destination: "NRT"},
		"return before":   {Origin: "JFK", Destination: "NRT", DepartDate: day("2025-04-05"), ReturnDate: day("2025-04-01")},
		"negative people": {Origin: "JFK", Destination: "NRT", DepartDate: day("2025-04-01"), Passengers: -1},
	} {
		_, err := svc.SearchFlights(ctx, q)
		assert.ErrorIs(t, err, domain.ErrValidation, name)
	}
}

func TestSearchService_SearchActivities_CachedComponentsKeepVariant(t *testing.T) {
	calls := 0
	p := &mockSearcher{activities: func(_ context.Context, q domain.ActivityQuery) ([]domain.Component, domain.DataSource, error) {
		calls++
		d := openapi_types.Date{Time: q.Date}
		return []domain.Component{domain.POI{
			ComponentBase: domain.ComponentBase{Title: "Fushimi Inari"},
			Schedule:      domain.Schedule{Date: &d, Location: q.City},
		}}, domain.SourcePrimary, nil
	}}
	svc := service.NewSearchService(p, newMemCache(), nil, discardLogger())
	q := domain.ActivityQuery{City: "Kyoto", Kind: domain.ComponentPOI, Date: day("2025-04-03")}

	_, err := svc.SearchActivities(context.Background(), q)
	require.NoError(t, err)
	res, err := svc.SearchActivities(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	require.Len(t, res.Items, 1)
	poi, ok := res.Items[0].(domain.POI)
	require.True(t, ok, "cached item decodes back to a POI")
	assert.True(t, domain.ScheduledOn(poi).Equal(day("2025-04-03")))
}

func TestSearchService_SearchActivities_BadKind(t *testing.T) {
	svc := service.NewSearchService(&mockSearcher{}, cache.Noop{}, nil, discardLogger())

	_, err := svc.SearchActivities(context.Background(), domain.ActivityQuery{City: "Kyoto", Kind: domain.ComponentHotel})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSearchService_UpstreamError(t *testing.T) {
	p := &mockSearcher{hotels: func(context.Context, domain.HotelQuery) ([]domain.Hotel, domain.DataSource, error) {
		return nil, "", domain.ErrUpstream
	}}
	svc := service.NewSearchService(p, cache.Noop{}, nil, discardLogger())

	_, err := svc.SearchHotels(context.Background(), validHotelQuery())

	assert.ErrorIs(t, err, domain.ErrUpstream)
}
