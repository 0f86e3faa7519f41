package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/tripwizard/internal/domain"
)

// HTTPClient calls one JSON provider API. Every capability is served from
// its own base URL; a Client with an empty base URL is left out of the
// primary Set by NewHTTPSet.
type HTTPClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewHTTPClient builds a client for baseURL. apiKey, when non-empty, is sent
// as the X-Api-Key header.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// URLs holds the base URL of each live provider. Empty means not configured.
type URLs struct {
	Flights    string
	Hotels     string
	Activities string
	Currency   string
	Visa       string
}

// NewHTTPSet builds the primary Set. Capabilities without a URL stay nil so
// Resilient serves them from the fallback directly.
func NewHTTPSet(urls URLs, apiKey string, timeout time.Duration) Set {
	var s Set
	if urls.Flights != "" {
		s.Flights = NewHTTPClient(urls.Flights, apiKey, timeout)
	}
	if urls.Hotels != "" {
		s.Hotels = NewHTTPClient(urls.Hotels, apiKey, timeout)
	}
	if urls.Activities != "" {
		s.Activities = NewHTTPClient(urls.Activities, apiKey, timeout)
	}
	if urls.Currency != "" {
		s.Currency = NewHTTPClient(urls.Currency, apiKey, timeout)
	}
	if urls.Visa != "" {
		s.Visa = NewHTTPClient(urls.Visa, apiKey, timeout)
	}
	return s
}

var (
	_ FlightSearcher    = (*HTTPClient)(nil)
	_ HotelSearcher     = (*HTTPClient)(nil)
	_ ActivitySearcher  = (*HTTPClient)(nil)
	_ CurrencyConverter = (*HTTPClient)(nil)
	_ VisaChecker       = (*HTTPClient)(nil)
)

// getJSON issues GET baseURL+path?query and decodes the body into out.
func (c *HTTPClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

type flightOffer struct {
	Carrier      string    `json:"carrier"`
	FlightNumber string    `json:"flight_number"`
	Price        float64   `json:"price"`
	Currency     string    `json:"currency"`
	DepartAt     time.Time `json:"depart_at"`
	ArriveAt     time.Time `json:"arrive_at"`
	Duration     string    `json:"duration"`
}

func (c *HTTPClient) SearchFlights(ctx context.Context, q domain.FlightQuery) ([]domain.Flight, error) {
	query := url.Values{}
	query.Set("origin", strings.ToUpper(q.Origin))
	query.Set("destination", strings.ToUpper(q.Destination))
	query.Set("depart_date", q.DepartDate.Format(domain.DateLayout))
	if !q.ReturnDate.IsZero() {
		query.Set("return_date", q.ReturnDate.Format(domain.DateLayout))
	}
	query.Set("passengers", strconv.Itoa(q.Passengers))
	if q.Cabin != "" {
		query.Set("cabin", q.Cabin)
	}

	var body struct {
		Data []flightOffer `json:"data"`
	}
	if err := c.getJSON(ctx, "/flights", query, &body); err != nil {
		return nil, fmt.Errorf("provider.HTTPClient.SearchFlights: %w", err)
	}

	flightType := domain.FlightOneWay
	if !q.ReturnDate.IsZero() {
		flightType = domain.FlightRoundTrip
	}
	flights := make([]domain.Flight, 0, len(body.Data))
	for _, o := range body.Data {
		flights = append(flights, domain.Flight{
			ComponentBase: domain.ComponentBase{
				ID:       uuid.New(),
				Title:    fmt.Sprintf("%s %s %s", o.Carrier, o.FlightNumber, q.Route()),
				Price:    o.Price,
				Currency: o.Currency,
			},
			FlightType: flightType,
			Details: domain.FlightDetails{
				Carrier:  o.Carrier,
				Duration: o.Duration,
				Segments: []domain.FlightSegment{{
					From:         strings.ToUpper(q.Origin),
					To:           strings.ToUpper(q.Destination),
					FlightNumber: o.FlightNumber,
					DepartAt:     o.DepartAt,
					ArriveAt:     o.ArriveAt,
				}},
			},
		})
	}
	return flights, nil
}

type hotelOffer struct {
	Name          string  `json:"name"`
	PricePerNight float64 `json:"price_per_night"`
	Currency      string  `json:"currency"`
	Address       string  `json:"address"`
}

func (c *HTTPClient) SearchHotels(ctx context.Context, q domain.HotelQuery) ([]domain.Hotel, error) {
	query := url.Values{}
	query.Set("city", q.City)
	query.Set("check_in", q.CheckIn.Format(domain.DateLayout))
	query.Set("check_out", q.CheckOut.Format(domain.DateLayout))
	query.Set("rooms", strconv.Itoa(q.Rooms))
	query.Set("guests", strconv.Itoa(q.Guests))

	var body struct {
		Data []hotelOffer `json:"data"`
	}
	if err := c.getJSON(ctx, "/hotels", query, &body); err != nil {
		return nil, fmt.Errorf("provider.HTTPClient.SearchHotels: %w", err)
	}

	nights := domain.DaysBetween(q.CheckIn, q.CheckOut)
	hotels := make([]domain.Hotel, 0, len(body.Data))
	for _, o := range body.Data {
		hotels = append(hotels, hotelFor(q, o.Name, o.Address, o.PricePerNight*float64(nights*q.Rooms), o.Currency))
	}
	return hotels, nil
}

func hotelFor(q domain.HotelQuery, name, location string, total float64, currency string) domain.Hotel {
	return domain.Hotel{
		ComponentBase: domain.ComponentBase{
			ID:       uuid.New(),
			Title:    name,
			Price:    total,
			Currency: currency,
		},
		CheckIn:      openapi_types.Date{Time: domain.Day(q.CheckIn)},
		CheckOut:     openapi_types.Date{Time: domain.Day(q.CheckOut)},
		RoomQuantity: q.Rooms,
		Location:     location,
	}
}

type activityOffer struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	Time     string  `json:"time"`
	Duration string  `json:"duration"`
	Location string  `json:"location"`
}

func (c *HTTPClient) SearchActivities(ctx context.Context, q domain.ActivityQuery) ([]domain.Component, error) {
	query := url.Values{}
	query.Set("city", q.City)
	query.Set("kind", string(q.Kind))
	if !q.Date.IsZero() {
		query.Set("date", q.Date.Format(domain.DateLayout))
	}

	var body struct {
		Data []activityOffer `json:"data"`
	}
	if err := c.getJSON(ctx, "/activities", query, &body); err != nil {
		return nil, fmt.Errorf("provider.HTTPClient.SearchActivities: %w", err)
	}

	out := make([]domain.Component, 0, len(body.Data))
	for _, o := range body.Data {
		out = append(out, activityFor(q, o.Name, o.Price, o.Currency, domain.Schedule{
			Time:     o.Time,
			Duration: o.Duration,
			Location: o.Location,
		}))
	}
	return out, nil
}

// activityFor builds an Activity, or a POI when q.Kind asks for one.
func activityFor(q domain.ActivityQuery, name string, price float64, currency string, sched domain.Schedule) domain.Component {
	if !q.Date.IsZero() {
		d := openapi_types.Date{Time: domain.Day(q.Date)}
		sched.Date = &d
	}
	if sched.Location == "" {
		sched.Location = q.City
	}
	base := domain.ComponentBase{ID: uuid.New(), Title: name, Price: price, Currency: currency}
	if q.Kind == domain.ComponentPOI {
		return domain.POI{ComponentBase: base, Schedule: sched}
	}
	return domain.Activity{ComponentBase: base, Schedule: sched}
}

func (c *HTTPClient) Convert(ctx context.Context, from, to string, amount float64) (domain.CurrencyQuote, error) {
	query := url.Values{}
	query.Set("from", from)
	query.Set("to", to)
	query.Set("amount", strconv.FormatFloat(amount, 'f', -1, 64))

	var body struct {
		Rate   float64 `json:"rate"`
		Result float64 `json:"result"`
	}
	if err := c.getJSON(ctx, "/convert", query, &body); err != nil {
		return domain.CurrencyQuote{}, fmt.Errorf("provider.HTTPClient.Convert: %w", err)
	}
	if body.Rate <= 0 {
		return domain.CurrencyQuote{}, fmt.Errorf("provider.HTTPClient.Convert: no rate for %s to %s", from, to)
	}

	return domain.CurrencyQuote{
		From:      from,
		To:        to,
		Rate:      body.Rate,
		Amount:    amount,
		Converted: body.Result,
	}, nil
}

func (c *HTTPClient) Requirement(ctx context.Context, passport, destination string) (domain.VisaRequirement, error) {
	query := url.Values{}
	query.Set("passport", passport)
	query.Set("destination", destination)

	var body struct {
		Requirement string `json:"requirement"`
		MaxStayDays int    `json:"max_stay_days"`
		Notes       string `json:"notes"`
	}
	if err := c.getJSON(ctx, "/visa", query, &body); err != nil {
		return domain.VisaRequirement{}, fmt.Errorf("provider.HTTPClient.Requirement: %w", err)
	}

	return domain.VisaRequirement{
		Passport:    passport,
		Destination: destination,
		Requirement: body.Requirement,
		MaxStayDays: body.MaxStayDays,
		Notes:       body.Notes,
	}, nil
}
