package domain

import (
	"time"

	"github.com/google/uuid"
)

// StopType distinguishes stops parsed from the destinations string from
// stops the traveler added by hand.
type StopType string

const (
	StopDestination StopType = "destination"
	StopCustom      StopType = "custom"
)

// ItineraryStop is one day-indexed entry in the route plan.
// Day is 1-based and always equals the stop's position in the itinerary + 1.
// Date is zero when no calendar date has been assigned.
type ItineraryStop struct {
	ID   uuid.UUID
	Name string
	Day  int
	Date time.Time
	Type StopType
}

// Removable reports whether the traveler may delete the stop. Parsed
// destinations can be renamed or re-dated but not removed.
func (s ItineraryStop) Removable() bool {
	return s.Type == StopCustom
}
