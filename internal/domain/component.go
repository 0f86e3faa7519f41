package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ComponentType is the discriminator carried by every bookable line item.
type ComponentType string

const (
	ComponentFlight   ComponentType = "flight"
	ComponentHotel    ComponentType = "hotel"
	ComponentActivity ComponentType = "activity"
	ComponentPOI      ComponentType = "poi"
	ComponentGuide    ComponentType = "guide"
)

// ComponentTypes lists every variant in display order.
var ComponentTypes = []ComponentType{
	ComponentFlight, ComponentHotel, ComponentActivity, ComponentPOI, ComponentGuide,
}

// Valid reports whether t names a known variant.
func (t ComponentType) Valid() bool {
	switch t {
	case ComponentFlight, ComponentHotel, ComponentActivity, ComponentPOI, ComponentGuide:
		return true
	}
	return false
}

// ComponentStatus tracks whether a line item has been booked with the provider.
type ComponentStatus string

const (
	StatusPlanned ComponentStatus = "planned"
	StatusBooked  ComponentStatus = "booked"
)

// ComponentBase holds the fields shared by every variant.
type ComponentBase struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Price       float64         `json:"price"`
	Currency    string          `json:"currency"`
	Status      ComponentStatus `json:"status"`
	BookingDate *time.Time      `json:"booking_date,omitempty"`
}

// Common returns the shared fields of a component.
func (b ComponentBase) Common() ComponentBase { return b }

func (ComponentBase) component() {}

// Component is a bookable line item attached to a trip. The set of variants
// is closed: Flight, Hotel, Activity, POI and Guide. Variants are always
// held by value.
type Component interface {
	Type() ComponentType
	Common() ComponentBase
	component()
}

// ---- variants --------------------------------------------------------------

// FlightType describes the shape of a flight booking.
type FlightType string

const (
	FlightOneWay    FlightType = "one_way"
	FlightRoundTrip FlightType = "round_trip"
	FlightMultiCity FlightType = "multi_city"
)

// FlightSegment is a single leg of a flight booking.
type FlightSegment struct {
	From         string    `json:"from"`
	To           string    `json:"to"`
	FlightNumber string    `json:"flight_number,omitempty"`
	DepartAt     time.Time `json:"depart_at"`
	ArriveAt     time.Time `json:"arrive_at"`
}

// FlightDetails carries carrier and routing information.
type FlightDetails struct {
	Carrier  string          `json:"carrier"`
	Segments []FlightSegment `json:"segments"`
	Duration string          `json:"duration,omitempty"`
}

type Flight struct {
	ComponentBase
	FlightType FlightType    `json:"flight_type"`
	Details    FlightDetails `json:"flight_details"`
}

func (Flight) Type() ComponentType { return ComponentFlight }

func (f Flight) MarshalJSON() ([]byte, error) {
	type plain Flight
	return json.Marshal(struct {
		Type ComponentType `json:"component_type"`
		plain
	}{ComponentFlight, plain(f)})
}

// Hotel is a stay over the half-open interval [CheckIn, CheckOut).
type Hotel struct {
	ComponentBase
	CheckIn      openapi_types.Date `json:"check_in_date"`
	CheckOut     openapi_types.Date `json:"check_out_date"`
	RoomQuantity int                `json:"room_quantity"`
	Location     string             `json:"location,omitempty"`
}

func (Hotel) Type() ComponentType { return ComponentHotel }

// Nights is the number of calendar days between check-in and check-out.
func (h Hotel) Nights() int {
	return DaysBetween(h.CheckIn.Time, h.CheckOut.Time)
}

func (h Hotel) MarshalJSON() ([]byte, error) {
	type plain Hotel
	return json.Marshal(struct {
		Type   ComponentType `json:"component_type"`
		Nights int           `json:"nights"`
		plain
	}{ComponentHotel, h.Nights(), plain(h)})
}

// Schedule is the when/where shared by activities and points of interest.
type Schedule struct {
	Date     *openapi_types.Date `json:"activity_date,omitempty"`
	Time     string              `json:"activity_time,omitempty"`
	Duration string              `json:"duration,omitempty"`
	Location string              `json:"location,omitempty"`
}

type Activity struct {
	ComponentBase
	Schedule
}

func (Activity) Type() ComponentType { return ComponentActivity }

func (a Activity) MarshalJSON() ([]byte, error) {
	type plain Activity
	return json.Marshal(struct {
		Type ComponentType `json:"component_type"`
		plain
	}{ComponentActivity, plain(a)})
}

// POI is a point of interest visit. It shares its fields with Activity but is
// listed and searched separately.
type POI struct {
	ComponentBase
	Schedule
}

func (POI) Type() ComponentType { return ComponentPOI }

func (p POI) MarshalJSON() ([]byte, error) {
	type plain POI
	return json.Marshal(struct {
		Type ComponentType `json:"component_type"`
		plain
	}{ComponentPOI, plain(p)})
}

// GuideDetails describes a hired local guide.
type GuideDetails struct {
	Languages   []string `json:"languages"`
	Specialties []string `json:"specialties"`
	Rating      float64  `json:"rating"`
}

type Guide struct {
	ComponentBase
	Details  GuideDetails `json:"guide_details"`
	Location string       `json:"location,omitempty"`
}

func (Guide) Type() ComponentType { return ComponentGuide }

func (g Guide) MarshalJSON() ([]byte, error) {
	type plain Guide
	return json.Marshal(struct {
		Type ComponentType `json:"component_type"`
		plain
	}{ComponentGuide, plain(g)})
}

// ---- category dispatch -----------------------------------------------------
//
// Everything that depends on the variant goes through the functions below so
// callers never switch on component_type themselves.

// WithCommon returns c with its shared fields replaced by b.
func WithCommon(c Component, b ComponentBase) Component {
	switch v := c.(type) {
	case Flight:
		v.ComponentBase = b
		return v
	case Hotel:
		v.ComponentBase = b
		return v
	case Activity:
		v.ComponentBase = b
		return v
	case POI:
		v.ComponentBase = b
		return v
	case Guide:
		v.ComponentBase = b
		return v
	}
	return c
}

// StayInterval returns the half-open [check-in, check-out) interval of a
// hotel. ok is false for every other variant.
func StayInterval(c Component) (start, end time.Time, ok bool) {
	h, ok := c.(Hotel)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	return Day(h.CheckIn.Time), Day(h.CheckOut.Time), true
}

// Overlaps reports whether two components conflict. Only hotel stays can
// conflict: [a) and [b) overlap when aStart < bEnd and aEnd > bStart, so a
// checkout and a checkin on the same day do not.
func Overlaps(a, b Component) bool {
	aStart, aEnd, ok := StayInterval(a)
	if !ok {
		return false
	}
	bStart, bEnd, ok := StayInterval(b)
	if !ok {
		return false
	}
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// ScheduledOn returns the calendar date a component is anchored to, or the
// zero time when it has none.
func ScheduledOn(c Component) time.Time {
	switch v := c.(type) {
	case Flight:
		if len(v.Details.Segments) > 0 {
			return Day(v.Details.Segments[0].DepartAt)
		}
	case Hotel:
		return Day(v.CheckIn.Time)
	case Activity:
		if v.Date != nil {
			return Day(v.Date.Time)
		}
	case POI:
		if v.Date != nil {
			return Day(v.Date.Time)
		}
	}
	return time.Time{}
}

// LocationOf returns the free-text location of a component, if any.
func LocationOf(c Component) string {
	switch v := c.(type) {
	case Flight:
		if n := len(v.Details.Segments); n > 0 {
			return v.Details.Segments[0].From + "-" + v.Details.Segments[n-1].To
		}
	case Hotel:
		return v.Location
	case Activity:
		return v.Location
	case POI:
		return v.Location
	case Guide:
		return v.Location
	}
	return ""
}

// NormalizeComponent fills defaults on a component about to be attached to a
// trip: a fresh id, planned status, the trip currency, and one hotel room.
func NormalizeComponent(c Component, currency string) Component {
	b := c.Common()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Status == "" {
		b.Status = StatusPlanned
	}
	if b.Currency == "" {
		b.Currency = currency
	}
	c = WithCommon(c, b)
	if h, ok := c.(Hotel); ok && h.RoomQuantity == 0 {
		h.RoomQuantity = 1
		c = h
	}
	return c
}

// ValidateComponent checks the invariants of a single component.
func ValidateComponent(c Component) error {
	if c == nil {
		return fmt.Errorf("%w: component is required", ErrValidation)
	}
	b := c.Common()
	if b.Title == "" {
		return fmt.Errorf("%w: component title is required", ErrValidation)
	}
	if b.Price < 0 {
		return fmt.Errorf("%w: component price must not be negative", ErrValidation)
	}
	switch b.Status {
	case "", StatusPlanned, StatusBooked:
	default:
		return fmt.Errorf("%w: unknown component status %q", ErrValidation, b.Status)
	}

	switch v := c.(type) {
	case Flight:
		switch v.FlightType {
		case "", FlightOneWay, FlightRoundTrip, FlightMultiCity:
		default:
			return fmt.Errorf("%w: unknown flight_type %q", ErrValidation, v.FlightType)
		}
	case Hotel:
		if v.CheckIn.Time.IsZero() || v.CheckOut.Time.IsZero() {
			return fmt.Errorf("%w: hotel check_in_date and check_out_date are required", ErrValidation)
		}
		if v.Nights() < 1 {
			return fmt.Errorf("%w: hotel check_out_date must be after check_in_date", ErrValidation)
		}
		if v.RoomQuantity < 0 {
			return fmt.Errorf("%w: room_quantity must not be negative", ErrValidation)
		}
	case Guide:
		if v.Details.Rating < 0 || v.Details.Rating > 5 {
			return fmt.Errorf("%w: guide rating must be between 0 and 5", ErrValidation)
		}
	}
	return nil
}

// ---- JSON ------------------------------------------------------------------

// DecodeComponent decodes a single component, selecting the variant from its
// component_type field.
func DecodeComponent(data []byte) (Component, error) {
	var head struct {
		Type ComponentType `json:"component_type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: malformed component: %v", ErrValidation, err)
	}

	switch head.Type {
	case ComponentFlight:
		return decodeAs[Flight](data)
	case ComponentHotel:
		return decodeAs[Hotel](data)
	case ComponentActivity:
		return decodeAs[Activity](data)
	case ComponentPOI:
		return decodeAs[POI](data)
	case ComponentGuide:
		return decodeAs[Guide](data)
	}
	return nil, fmt.Errorf("%w: unknown component_type %q", ErrValidation, head.Type)
}

func decodeAs[T Component](data []byte) (Component, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: malformed %s component: %v", ErrValidation, v.Type(), err)
	}
	return v, nil
}

// ComponentList is a JSON-aware list of components.
type ComponentList []Component

func (l ComponentList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Component(l))
}

func (l *ComponentList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return fmt.Errorf("%w: components must be an array", ErrValidation)
	}
	out := make(ComponentList, 0, len(raws))
	for _, raw := range raws {
		c, err := DecodeComponent(raw)
		if err != nil {
			return err
		}
		out = append(out, c)
	}
	*l = out
	return nil
}
