package api

import (
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/tripwizard/internal/domain"
)

// FlightSearchRequest is the body of POST /api/search/flights.
type FlightSearchRequest struct {
	Origin      string              `json:"origin" validate:"required,len=3,alpha"`
	Destination string              `json:"destination" validate:"required,len=3,alpha"`
	DepartDate  *openapi_types.Date `json:"depart_date" validate:"required"`
	ReturnDate  *openapi_types.Date `json:"return_date,omitempty"`
	Passengers  int                 `json:"passengers" validate:"gte=0,lte=9"`
	Cabin       string              `json:"cabin,omitempty" validate:"omitempty,oneof=economy premium_economy business first"`
}

func (r FlightSearchRequest) ToDomain() domain.FlightQuery {
	return domain.FlightQuery{
		Origin:      r.Origin,
		Destination: r.Destination,
		DepartDate:  fromDate(r.DepartDate),
		ReturnDate:  fromDate(r.ReturnDate),
		Passengers:  r.Passengers,
		Cabin:       r.Cabin,
	}
}

// HotelSearchRequest is the body of POST /api/hotels/search. Ordering of the
// two dates is checked by the search service.
type HotelSearchRequest struct {
	City     string              `json:"city" validate:"required,max=100"`
	CheckIn  *openapi_types.Date `json:"check_in" validate:"required"`
	CheckOut *openapi_types.Date `json:"check_out" validate:"required"`
	Rooms    int                 `json:"rooms" validate:"gte=0,lte=10"`
	Guests   int                 `json:"guests" validate:"gte=0,lte=30"`
}

func (r HotelSearchRequest) ToDomain() domain.HotelQuery {
	return domain.HotelQuery{
		City:     r.City,
		CheckIn:  fromDate(r.CheckIn),
		CheckOut: fromDate(r.CheckOut),
		Rooms:    r.Rooms,
		Guests:   r.Guests,
	}
}

// ActivitySearchParams are the query parameters of GET /api/search/activities.
type ActivitySearchParams struct {
	City string               `validate:"required,max=100"`
	Date *openapi_types.Date
	Kind domain.ComponentType `validate:"omitempty,oneof=activity poi"`
}

func (p ActivitySearchParams) ToDomain() domain.ActivityQuery {
	return domain.ActivityQuery{City: p.City, Date: fromDate(p.Date), Kind: p.Kind}
}

// SearchResponse wraps one result set. Source tells whether the live
// provider or the static fallback answered; Cached marks a cache hit.
type SearchResponse[T any] struct {
	Data   []T               `json:"data"`
	Source domain.DataSource `json:"source"`
	Cached bool              `json:"cached"`
}

// NewSearchResponse never returns a nil Data slice.
func NewSearchResponse[T any](items []T, src domain.DataSource, cached bool) SearchResponse[T] {
	if items == nil {
		items = []T{}
	}
	return SearchResponse[T]{Data: items, Source: src, Cached: cached}
}
