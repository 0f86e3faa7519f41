package domain

import (
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FlightQuery is a flight search request.
type FlightQuery struct {
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	DepartDate  time.Time `json:"depart_date"`
	ReturnDate  time.Time `json:"return_date"`
	Passengers  int       `json:"passengers"`
	Cabin       string    `json:"cabin,omitempty"`
}

// Route is the ORIGIN-DEST key pricing rules match against.
func (q FlightQuery) Route() string {
	return strings.ToUpper(q.Origin) + "-" + strings.ToUpper(q.Destination)
}

// HotelQuery is a hotel availability search.
type HotelQuery struct {
	City     string    `json:"city"`
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
	Rooms    int       `json:"rooms"`
	Guests   int       `json:"guests"`
}

// ActivityQuery searches activities or points of interest in a city.
type ActivityQuery struct {
	City string        `json:"city"`
	Date time.Time     `json:"date"`
	Kind ComponentType `json:"kind"`
}

// DataSource records whether a result came from the live provider or from
// the static fallback.
type DataSource string

const (
	SourcePrimary  DataSource = "primary"
	SourceFallback DataSource = "fallback"
)

// CurrencyQuote is the result of a currency conversion lookup.
type CurrencyQuote struct {
	From      string     `json:"from"`
	To        string     `json:"to"`
	Rate      float64    `json:"rate"`
	Amount    float64    `json:"amount"`
	Converted float64    `json:"converted"`
	Source    DataSource `json:"source"`
}

// VisaRequirement describes entry rules for a passport/destination pair.
type VisaRequirement struct {
	Passport    string     `json:"passport"`
	Destination string     `json:"destination"`
	Requirement string     `json:"requirement"`
	MaxStayDays int        `json:"max_stay_days,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	Source      DataSource `json:"source"`
}

// MarkupType selects how a pricing rule adjusts a provider price.
type MarkupType string

const (
	MarkupPercentage MarkupType = "percentage"
	MarkupFixed      MarkupType = "fixed"
)

// PricingRule is a markup applied to search results whose route matches
// RoutePattern. AppliesTo is a component type or "*" for every type.
type PricingRule struct {
	ID           uuid.UUID
	AppliesTo    string
	RoutePattern string
	MarkupType   MarkupType
	Value        float64
	Priority     int
	Active       bool
	CreatedAt    time.Time
}

// Matches reports whether the rule covers a result of the given type on route.
// RoutePattern uses shell glob syntax, compared case-insensitively.
func (r PricingRule) Matches(kind ComponentType, route string) bool {
	if !r.Active {
		return false
	}
	if r.AppliesTo != "*" && r.AppliesTo != string(kind) {
		return false
	}
	ok, err := path.Match(strings.ToUpper(r.RoutePattern), strings.ToUpper(route))
	return err == nil && ok
}

// Apply returns price with the markup added.
func (r PricingRule) Apply(price float64) float64 {
	switch r.MarkupType {
	case MarkupPercentage:
		return roundCents(price * (1 + r.Value/100))
	case MarkupFixed:
		return roundCents(price + r.Value)
	}
	return price
}
