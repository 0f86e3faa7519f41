// Package domain contains the core data types of the trip wizard: the trip
// draft aggregate, its itinerary stops, and the bookable component variants.
// It holds no I/O; every other internal package imports it.
package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// TripStatus is the lifecycle state of a trip draft.
type TripStatus string

const (
	TripDraft  TripStatus = "draft"
	TripBooked TripStatus = "booked"
)

// DefaultCurrency is applied when a draft is created without a currency.
const DefaultCurrency = "USD"

// Trip is the aggregate root for one user's trip being planned.
// StartDate and EndDate are zero when the traveler has not picked them yet.
type Trip struct {
	ID           uuid.UUID
	OwnerID      string
	Title        string
	Destinations string
	StartDate    time.Time
	EndDate      time.Time
	BudgetAmount float64
	Currency     string
	Travelers    int
	Status       TripStatus
	// Version increments on every successful save. A save carrying an older
	// version is rejected with ErrStaleDraft.
	Version    int
	Itinerary  []ItineraryStop
	Components []Component
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Clone returns a copy of t whose itinerary and component slices can be
// modified without affecting t.
func (t Trip) Clone() Trip {
	out := t
	out.Itinerary = slices.Clone(t.Itinerary)
	out.Components = slices.Clone(t.Components)
	return out
}

// HasDates reports whether both ends of the travel window are set.
func (t Trip) HasDates() bool {
	return !t.StartDate.IsZero() && !t.EndDate.IsZero()
}

// Booked reports whether the trip has been finalized.
func (t Trip) Booked() bool {
	return t.Status == TripBooked
}
