// Package provider adapts third-party travel data sources: flight, hotel and
// activity search, currency conversion, and visa requirements. Each capability
// has a live HTTP client and a deterministic static fallback, combined by
// Resilient.
package provider

import (
	"context"
	"fmt"

	"github.com/pkordes/tripwizard/internal/domain"
)

type FlightSearcher interface {
	SearchFlights(ctx context.Context, q domain.FlightQuery) ([]domain.Flight, error)
}

type HotelSearcher interface {
	SearchHotels(ctx context.Context, q domain.HotelQuery) ([]domain.Hotel, error)
}

// ActivitySearcher returns Activity or POI components depending on q.Kind.
type ActivitySearcher interface {
	SearchActivities(ctx context.Context, q domain.ActivityQuery) ([]domain.Component, error)
}

type CurrencyConverter interface {
	Convert(ctx context.Context, from, to string, amount float64) (domain.CurrencyQuote, error)
}

type VisaChecker interface {
	Requirement(ctx context.Context, passport, destination string) (domain.VisaRequirement, error)
}

// Set groups one implementation of every capability. Nil fields are allowed
// in a primary Set and mean "not configured".
type Set struct {
	Flights    FlightSearcher
	Hotels     HotelSearcher
	Activities ActivitySearcher
	Currency   CurrencyConverter
	Visa       VisaChecker
}

// StatusError is returned by the HTTP clients for a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider responded %d: %s", e.Code, e.Body)
}

// Temporary reports whether a retry could succeed: rate limiting and server
// errors are temporary, other client errors are not.
func (e *StatusError) Temporary() bool {
	return e.Code == 429 || e.Code >= 500
}
