// Package handler implements the HTTP handlers of the trip wizard API.
// All handlers are methods on Server. They are split into files by resource
// (trip.go, search.go, etc.) but share the same Server so they can reach its
// dependencies.
package handler

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/tripwizard/internal/domain"
	"github.com/pkordes/tripwizard/internal/draft"
	"github.com/pkordes/tripwizard/internal/service"
)

// TripServicer defines the draft persistence operations the trip handlers
// depend on. Defining it here, in the consumer package, lets handler tests
// inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	Get(ctx context.Context, ownerID string, id uuid.UUID) (domain.Trip, error)
	ListPaged(ctx context.Context, ownerID string, p domain.PaginationParams) ([]domain.Trip, int64, error)
	Save(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	Book(ctx context.Context, ownerID string, id uuid.UUID) (domain.Trip, error)
}

// DraftServicer applies a single reducer action to a stored draft.
type DraftServicer interface {
	Apply(ctx context.Context, ownerID string, id uuid.UUID, version int, action draft.Action) (service.ApplyResult, error)
}

type CostServicer interface {
	Summary(ctx context.Context, ownerID string, id uuid.UUID, currency string) (domain.CostSummary, error)
}

type ExportServicer interface {
	Export(ctx context.Context, ownerID string, id uuid.UUID) (domain.Trip, []domain.ExportRow, error)
}

// SearchServicer runs provider searches and returns priced components.
type SearchServicer interface {
	SearchFlights(ctx context.Context, q domain.FlightQuery) (service.SearchResult[domain.Flight], error)
	SearchHotels(ctx context.Context, q domain.HotelQuery) (service.SearchResult[domain.Hotel], error)
	SearchActivities(ctx context.Context, q domain.ActivityQuery) (service.SearchResult[domain.Component], error)
}

type LookupServicer interface {
	Currency(ctx context.Context, from, to string, amount float64) (domain.CurrencyQuote, error)
	Visa(ctx context.Context, passport, destination string) (domain.VisaRequirement, error)
}

// Services groups the dependencies of Server. Nil members are allowed in
// tests that only exercise some routes.
type Services struct {
	Trips   TripServicer
	Drafts  DraftServicer
	Costs   CostServicer
	Exports ExportServicer
	Search  SearchServicer
	Lookups LookupServicer
}

// Server implements every API endpoint. Wire it in main.go via Routes.
type Server struct {
	trips   TripServicer
	drafts  DraftServicer
	costs   CostServicer
	exports ExportServicer
	search  SearchServicer
	lookups LookupServicer
	log     *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(svc Services, log *slog.Logger) *Server {
	return &Server{
		trips:   svc.Trips,
		drafts:  svc.Drafts,
		costs:   svc.Costs,
		exports: svc.Exports,
		search:  svc.Search,
		lookups: svc.Lookups,
		log:     log,
	}
}
