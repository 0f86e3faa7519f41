package provider

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/tripwizard/internal/domain"
)

// Static generates plausible, deterministic results without any network
// access. The same query always yields the same prices.
type Static struct{}

// NewStaticSet returns a Set served entirely by Static.
func NewStaticSet() Set {
	s := Static{}
	return Set{Flights: s, Hotels: s, Activities: s, Currency: s, Visa: s}
}

var (
	_ FlightSearcher    = Static{}
	_ HotelSearcher     = Static{}
	_ ActivitySearcher  = Static{}
	_ CurrencyConverter = Static{}
	_ VisaChecker       = Static{}
)

// seed maps a key to a stable value in [0, 1).
func seed(key string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToUpper(key)))
	return float64(h.Sum32()%1000) / 1000
}

func roundTo(v, step float64) float64 {
	return math.Round(v/step) * step
}

type carrierOption struct {
	name     string
	code     string
	priceMod float64
	stops    int
}

var carriers = []carrierOption{
	{"Skyline Air", "SK", 1.00, 0},
	{"Pacific Wings", "PW", 1.18, 0},
	{"Budget Jet", "BJ", 0.68, 1},
}

func (Static) SearchFlights(_ context.Context, q domain.FlightQuery) ([]domain.Flight, error) {
	base := 150 + 450*seed(q.Route())
	minutes := 90 + int(600*seed(q.Route()+"/duration"))

	flightType := domain.FlightOneWay
	if !q.ReturnDate.IsZero() {
		flightType = domain.FlightRoundTrip
		base *= 1.8
	}

	depart := domain.Day(q.DepartDate)
	flights := make([]domain.Flight, 0, len(carriers))
	for i, c := range carriers {
		dur := minutes
		if c.stops > 0 {
			dur += 90
		}
		departAt := depart.Add(time.Duration(6+i*4) * time.Hour)
		number := fmt.Sprintf("%s%d", c.code, 100+int(seed(q.Route()+c.code)*800))

		flights = append(flights, domain.Flight{
			ComponentBase: domain.ComponentBase{
				ID:       uuid.New(),
				Title:    fmt.Sprintf("%s %s %s", c.name, number, q.Route()),
				Price:    roundTo(base*c.priceMod*float64(max(q.Passengers, 1)), 5),
				Currency: domain.DefaultCurrency,
			},
			FlightType: flightType,
			Details: domain.FlightDetails{
				Carrier:  c.name,
				Duration: fmt.Sprintf("%dh %02dm", dur/60, dur%60),
				Segments: []domain.FlightSegment{{
					From:         strings.ToUpper(q.Origin),
					To:           strings.ToUpper(q.Destination),
					FlightNumber: number,
					DepartAt:     departAt,
					ArriveAt:     departAt.Add(time.Duration(dur) * time.Minute),
				}},
			},
		})
	}
	return flights, nil
}

var hotelTiers = []struct {
	suffix string
	factor float64
}{
	{"Central Inn", 0.7},
	{"Grand Hotel", 1.4},
	{"Riverside Suites", 1.0},
}

func (Static) SearchHotels(_ context.Context, q domain.HotelQuery) ([]domain.Hotel, error) {
	nightly := 60 + 140*seed(q.City)
	nights := domain.DaysBetween(q.CheckIn, q.CheckOut)

	hotels := make([]domain.Hotel, 0, len(hotelTiers))
	for _, tier := range hotelTiers {
		total := roundTo(nightly*tier.factor, 1) * float64(nights*max(q.Rooms, 1))
		hotels = append(hotels, hotelFor(q, q.City+" "+tier.suffix, q.City, total, domain.DefaultCurrency))
	}
	return hotels, nil
}

var activityNames = map[domain.ComponentType][]string{
	domain.ComponentActivity: {"Walking food tour", "Cooking class", "Day hike"},
	domain.ComponentPOI:      {"Old town", "National museum", "Botanical garden"},
}

func (Static) SearchActivities(_ context.Context, q domain.ActivityQuery) ([]domain.Component, error) {
	kind := q.Kind
	if kind != domain.ComponentPOI {
		kind = domain.ComponentActivity
	}

	var out []domain.Component
	for i, name := range activityNames[kind] {
		price := 0.0
		if kind == domain.ComponentActivity {
			price = roundTo(25+75*seed(q.City+name), 5)
		}
		out = append(out, activityFor(q, q.City+": "+name, price, domain.DefaultCurrency, domain.Schedule{
			Time:     fmt.Sprintf("%02d:00", 9+i*3),
			Duration: "2h",
		}))
	}
	return out, nil
}

// usdRates are approximate units per US dollar.
var usdRates = map[string]float64{
	"USD": 1,
	"EUR": 0.92,
	"GBP": 0.79,
	"JPY": 150,
	"CAD": 1.36,
	"AUD": 1.52,
	"CHF": 0.88,
	"MXN": 17.1,
}

func (Static) Convert(_ context.Context, from, to string, amount float64) (domain.CurrencyQuote, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	fromRate, ok := usdRates[from]
	if !ok {
		return domain.CurrencyQuote{}, fmt.Errorf("provider.Static.Convert: %w: unsupported currency %q", domain.ErrValidation, from)
	}
	toRate, ok := usdRates[to]
	if !ok {
		return domain.CurrencyQuote{}, fmt.Errorf("provider.Static.Convert: %w: unsupported currency %q", domain.ErrValidation, to)
	}

	rate := toRate / fromRate
	return domain.CurrencyQuote{
		From:      from,
		To:        to,
		Rate:      rate,
		Amount:    amount,
		Converted: math.Round(amount*rate*100) / 100,
	}, nil
}

func (Static) Requirement(_ context.Context, passport, destination string) (domain.VisaRequirement, error) {
	req := domain.VisaRequirement{
		Passport:    strings.ToUpper(passport),
		Destination: strings.ToUpper(destination),
		Requirement: "check_with_embassy",
		Notes:       "Live visa data is unavailable; confirm entry rules before travel.",
	}
	if req.Passport == req.Destination {
		req.Requirement = "not_required"
		req.Notes = ""
	}
	return req, nil
}
