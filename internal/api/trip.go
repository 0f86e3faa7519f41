// Package api holds the JSON wire types of the HTTP API and their conversion
// to and from domain types. The handler and client packages share them, so
// the two sides cannot drift apart.
package api

import (
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/tripwizard/internal/domain"
)

// TripRequest is the body of POST /api/trips and PUT /api/trips/{id}.
// Version is required on PUT and ignored on POST.
type TripRequest struct {
	Title        string              `json:"title" validate:"max=200"`
	Destinations string              `json:"destinations" validate:"max=1000"`
	StartDate    *openapi_types.Date `json:"start_date,omitempty"`
	EndDate      *openapi_types.Date `json:"end_date,omitempty"`
	BudgetAmount float64             `json:"budget_amount" validate:"gte=0"`
	Currency     string              `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	Travelers    int                 `json:"number_of_travelers" validate:"gte=0,lte=50"`
	Version      int                 `json:"version" validate:"gte=0"`
	Itinerary    []Stop              `json:"itinerary,omitempty" validate:"dive"`
	Components   domain.ComponentList `json:"components,omitempty"`
}

// Stop is the wire form of domain.ItineraryStop.
type Stop struct {
	ID   uuid.UUID           `json:"id"`
	Name string              `json:"name" validate:"required,max=200"`
	Day  int                 `json:"day"`
	Date *openapi_types.Date `json:"date,omitempty"`
	Type domain.StopType     `json:"type" validate:"omitempty,oneof=destination custom"`
}

// Trip is the wire form of domain.Trip.
type Trip struct {
	ID           uuid.UUID            `json:"id"`
	Title        string               `json:"title"`
	Destinations string               `json:"destinations"`
	StartDate    *openapi_types.Date  `json:"start_date,omitempty"`
	EndDate      *openapi_types.Date  `json:"end_date,omitempty"`
	BudgetAmount float64              `json:"budget_amount"`
	Currency     string               `json:"currency"`
	Travelers    int                  `json:"number_of_travelers"`
	Status       domain.TripStatus    `json:"status"`
	Version      int                  `json:"version"`
	Itinerary    []Stop               `json:"itinerary"`
	Components   domain.ComponentList `json:"components"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// Pagination describes one page of a list response.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// TripList is the body of GET /api/trips. Itinerary and components are
// omitted from list items.
type TripList struct {
	Data       []Trip     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// ToDomain maps the request onto a trip with the given id and owner.
func (r TripRequest) ToDomain(id uuid.UUID, ownerID string) domain.Trip {
	t := domain.Trip{
		ID:           id,
		OwnerID:      ownerID,
		Title:        r.Title,
		Destinations: r.Destinations,
		StartDate:    fromDate(r.StartDate),
		EndDate:      fromDate(r.EndDate),
		BudgetAmount: r.BudgetAmount,
		Currency:     r.Currency,
		Travelers:    r.Travelers,
		Version:      r.Version,
		Components:   []domain.Component(r.Components),
	}
	for _, s := range r.Itinerary {
		t.Itinerary = append(t.Itinerary, s.toDomain())
	}
	return t
}

// NewTripRequest is the inverse of ToDomain, used by the HTTP client.
func NewTripRequest(t domain.Trip) TripRequest {
	return TripRequest{
		Title:        t.Title,
		Destinations: t.Destinations,
		StartDate:    toDate(t.StartDate),
		EndDate:      toDate(t.EndDate),
		BudgetAmount: t.BudgetAmount,
		Currency:     t.Currency,
		Travelers:    t.Travelers,
		Version:      t.Version,
		Itinerary:    stops(t.Itinerary),
		Components:   domain.ComponentList(t.Components),
	}
}

// NewTrip maps a domain trip to its wire form.
func NewTrip(t domain.Trip) Trip {
	return Trip{
		ID:           t.ID,
		Title:        t.Title,
		Destinations: t.Destinations,
		StartDate:    toDate(t.StartDate),
		EndDate:      toDate(t.EndDate),
		BudgetAmount: t.BudgetAmount,
		Currency:     t.Currency,
		Travelers:    t.Travelers,
		Status:       t.Status,
		Version:      t.Version,
		Itinerary:    stops(t.Itinerary),
		Components:   domain.ComponentList(t.Components),
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// ToDomain maps a wire trip back to a domain trip. OwnerID is left empty.
func (t Trip) ToDomain() domain.Trip {
	out := domain.Trip{
		ID:           t.ID,
		Title:        t.Title,
		Destinations: t.Destinations,
		StartDate:    fromDate(t.StartDate),
		EndDate:      fromDate(t.EndDate),
		BudgetAmount: t.BudgetAmount,
		Currency:     t.Currency,
		Travelers:    t.Travelers,
		Status:       t.Status,
		Version:      t.Version,
		Components:   []domain.Component(t.Components),
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
	for _, s := range t.Itinerary {
		out.Itinerary = append(out.Itinerary, s.toDomain())
	}
	return out
}

func stops(in []domain.ItineraryStop) []Stop {
	out := make([]Stop, 0, len(in))
	for _, s := range in {
		out = append(out, Stop{ID: s.ID, Name: s.Name, Day: s.Day, Date: toDate(s.Date), Type: s.Type})
	}
	return out
}

func (s Stop) toDomain() domain.ItineraryStop {
	id := s.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	typ := s.Type
	if typ == "" {
		typ = domain.StopCustom
	}
	return domain.ItineraryStop{ID: id, Name: s.Name, Day: s.Day, Date: fromDate(s.Date), Type: typ}
}

func toDate(t time.Time) *openapi_types.Date {
	if t.IsZero() {
		return nil
	}
	return &openapi_types.Date{Time: domain.Day(t)}
}

func fromDate(d *openapi_types.Date) time.Time {
	if d == nil {
		return time.Time{}
	}
	return domain.Day(d.Time)
}
