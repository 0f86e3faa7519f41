package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripwizard/internal/api"
	"github.com/pkordes/tripwizard/internal/domain"
	"github.com/pkordes/tripwizard/internal/draft"
	"github.com/pkordes/tripwizard/internal/handler"
	"github.com/pkordes/tripwizard/internal/middleware"
	"github.com/pkordes/tripwizard/internal/service"
)

const owner = "user-1"

// ---- mocks -----------------------------------------------------------------
// Set only the method fields your test needs.

type mockTripServicer struct {
	create    func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	get       func(ctx context.Context, ownerID string, id uuid.UUID) (domain.Trip, error)
	listPaged func(ctx context.Context, ownerID string, p domain.PaginationParams) ([]domain.Trip, int64, error)
	save      func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	book      func(ctx context.Context, ownerID string, id uuid.UUID) (domain.Trip, error)
}

func (m *mockTripServicer) Create(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	return m.create(ctx, t)
}
func (m *mockTripServicer) Get(ctx context.Context, ownerID string, id uuid.UUID) (domain.Trip, error) {
	return m.get(ctx, ownerID, id)
}
func (m *mockTripServicer) ListPaged(ctx context.Context, ownerID string, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.listPaged(ctx, ownerID, p)
}
func (m *mockTripServicer) Save(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	return m.save(ctx, t)
}
func (m *mockTripServicer) Book(ctx context.Context, ownerID string, id uuid.UUID) (domain.Trip, error) {
	return m.book(ctx, ownerID, id)
}

type mockDraftServicer struct {
	apply func(ctx context.Context, ownerID string, id uuid.UUID, version int, a draft.Action) (service.ApplyResult, error)
}

func (m *mockDraftServicer) Apply(ctx context.Context, ownerID string, id uuid.UUID, version int, a draft.Action) (service.ApplyResult, error) {
	return m.apply(ctx, ownerID, id, version, a)
}

type mockCostServicer struct {
	summary func(ctx context.Context, ownerID string, id uuid.UUID, currency string) (domain.CostSummary, error)
}

func (m *mockCostServicer) Summary(ctx context.Context, ownerID string, id uuid.UUID, currency string) (domain.CostSummary, error) {
	return m.summary(ctx, ownerID, id, currency)
}

type mockExportServicer struct {
	export func(ctx context.Context, ownerID string, id uuid.UUID) (domain.Trip, []domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context, ownerID string, id uuid.UUID) (domain.Trip, []domain.ExportRow, error) {
	return m.export(ctx, ownerID, id)
}

type mockSearchServicer struct {
	flights    func(ctx context.Context, q domain.FlightQuery) (service.SearchResult[domain.Flight], error)
	hotels     func(ctx context.Context, q domain.HotelQuery) (service.SearchResult[domain.Hotel], error)
	activities func(ctx context.Context, q domain.ActivityQuery) (service.SearchResult[domain.Component], error)
}

func (m *mockSearchServicer) SearchFlights(ctx context.Context, q domain.FlightQuery) (service.SearchResult[domain.Flight], error) {
	return m.flights(ctx, q)
}
func (m *mockSearchServicer) SearchHotels(ctx context.Context, q domain.HotelQuery) (service.SearchResult[domain.Hotel], error) {
	return m.hotels(ctx, q)
}
func (m *mockSearchServicer) SearchActivities(ctx context.Context, q domain.ActivityQuery) (service.SearchResult[domain.Component], error) {
	return m.activities(ctx, q)
}

type mockLookupServicer struct {
	currency func(ctx context.Context, from, to string, amount float64) (domain.CurrencyQuote, error)
	visa     func(ctx context.Context, passport, destination string) (domain.VisaRequirement, error)
}

func (m *mockLookupServicer) Currency(ctx context.Context, from, to string, amount float64) (domain.CurrencyQuote, error) {
	return m.currency(ctx, from, to, amount)
}
func (m *mockLookupServicer) Visa(ctx context.Context, passport, destination string) (domain.VisaRequirement, error) {
	return m.visa(ctx, passport, destination)
}

// compile-time checks: every mock must satisfy its handler interface.
var (
	_ handler.TripServicer   = (*mockTripServicer)(nil)
	_ handler.DraftServicer  = (*mockDraftServicer)(nil)
	_ handler.CostServicer   = (*mockCostServicer)(nil)
	_ handler.ExportServicer = (*mockExportServicer)(nil)
	_ handler.SearchServicer = (*mockSearchServicer)(nil)
	_ handler.LookupServicer = (*mockLookupServicer)(nil)
)

// ---- helpers ---------------------------------------------------------------

// fakeAuth stands in for the JWT middleware and authenticates every request
// as owner.
func fakeAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(middleware.WithOwner(r.Context(), owner)))
	})
}

// newHTTPHandler wires a Server with the given mocks the way main.go does,
// with fakeAuth in place of token verification.
func newHTTPHandler(svc handler.Services) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return handler.NewServer(svc, log).Routes(handler.RouteOptions{Auth: fakeAuth})
}

func do(h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) api.ErrorDetail {
	t.Helper()
	var resp api.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Error
}

func date(s string) time.Time {
	d, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func tripFixture() domain.Trip {
	now := time.Now().UTC()
	return domain.Trip{
		ID:           uuid.New(),
		OwnerID:      owner,
		Title:        "Japan in spring",
		Destinations: "Tokyo, Kyoto",
		StartDate:    date("2025-04-01"),
		EndDate:      date("2025-04-05"),
		BudgetAmount: 3000,
		Currency:     "USD",
		Travelers:    2,
		Status:       domain.TripDraft,
		Version:      1,
		Itinerary: []domain.ItineraryStop{
			{ID: uuid.New(), Name: "Tokyo", Day: 1, Date: date("2025-04-01"), Type: domain.StopDestination},
			{ID: uuid.New(), Name: "Kyoto", Day: 2, Type: domain.StopDestination},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
