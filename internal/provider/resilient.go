package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/pkordes/tripwizard/internal/domain"
)

// Resilient calls the primary provider for each capability, retrying
// temporary failures with exponential backoff, and answers from the fallback
// when the primary is missing or keeps failing. Every method also reports
// which source answered.
type Resilient struct {
	primary  Set
	fallback Set
	retries  uint64
	backoff  time.Duration
	log      *slog.Logger
}

// Options tunes the retry policy.
type Options struct {
	// Retries is the number of extra attempts after the first failure.
	Retries uint64
	// Backoff is the first delay; each further delay doubles.
	Backoff time.Duration
}

// NewResilient combines primary and fallback. Every fallback field must be
// non-nil.
func NewResilient(primary, fallback Set, opts Options, log *slog.Logger) *Resilient {
	if opts.Backoff <= 0 {
		opts.Backoff = 100 * time.Millisecond
	}
	return &Resilient{
		primary:  primary,
		fallback: fallback,
		retries:  opts.Retries,
		backoff:  opts.Backoff,
		log:      log,
	}
}

func (r *Resilient) Flights(ctx context.Context, q domain.FlightQuery) ([]domain.Flight, domain.DataSource, error) {
	var primary func(context.Context) ([]domain.Flight, error)
	if r.primary.Flights != nil {
		primary = func(ctx context.Context) ([]domain.Flight, error) { return r.primary.Flights.SearchFlights(ctx, q) }
	}
	return call(ctx, r, "flights", primary, func(ctx context.Context) ([]domain.Flight, error) {
		return r.fallback.Flights.SearchFlights(ctx, q)
	})
}

func (r *Resilient) Hotels(ctx context.Context, q domain.HotelQuery) ([]domain.Hotel, domain.DataSource, error) {
	var primary func(context.Context) ([]domain.Hotel, error)
	if r.primary.Hotels != nil {
		primary = func(ctx context.Context) ([]domain.Hotel, error) { return r.primary.Hotels.SearchHotels(ctx, q) }
	}
	return call(ctx, r, "hotels", primary, func(ctx context.Context) ([]domain.Hotel, error) {
		return r.fallback.Hotels.SearchHotels(ctx, q)
	})
}

func (r *Resilient) Activities(ctx context.Context, q domain.ActivityQuery) ([]domain.Component, domain.DataSource, error) {
	var primary func(context.Context) ([]domain.Component, error)
	if r.primary.Activities != nil {
		primary = func(ctx context.Context) ([]domain.Component, error) {
			return r.primary.Activities.SearchActivities(ctx, q)
		}
	}
	return call(ctx, r, "activities", primary, func(ctx context.Context) ([]domain.Component, error) {
		return r.fallback.Activities.SearchActivities(ctx, q)
	})
}

func (r *Resilient) Convert(ctx context.Context, from, to string, amount float64) (domain.CurrencyQuote, error) {
	var primary func(context.Context) (domain.CurrencyQuote, error)
	if r.primary.Currency != nil {
		primary = func(ctx context.Context) (domain.CurrencyQuote, error) {
			return r.primary.Currency.Convert(ctx, from, to, amount)
		}
	}
	quote, src, err := call(ctx, r, "currency", primary, func(ctx context.Context) (domain.CurrencyQuote, error) {
		return r.fallback.Currency.Convert(ctx, from, to, amount)
	})
	quote.Source = src
	return quote, err
}

func (r *Resilient) Requirement(ctx context.Context, passport, destination string) (domain.VisaRequirement, error) {
	var primary func(context.Context) (domain.VisaRequirement, error)
	if r.primary.Visa != nil {
		primary = func(ctx context.Context) (domain.VisaRequirement, error) {
			return r.primary.Visa.Requirement(ctx, passport, destination)
		}
	}
	req, src, err := call(ctx, r, "visa", primary, func(ctx context.Context) (domain.VisaRequirement, error) {
		return r.fallback.Visa.Requirement(ctx, passport, destination)
	})
	req.Source = src
	return req, err
}

var (
	_ CurrencyConverter = (*Resilient)(nil)
	_ VisaChecker       = (*Resilient)(nil)
)

// call runs primary under the retry policy and falls back on failure.
// A cancelled ctx is returned as is, without consulting the fallback.
func call[T any](ctx context.Context, r *Resilient, op string, primary, fallback func(context.Context) (T, error)) (T, domain.DataSource, error) {
	var zero T

	if primary != nil {
		var result T
		b := retry.WithMaxRetries(r.retries, retry.NewExponential(r.backoff))
		err := retry.Do(ctx, b, func(ctx context.Context) error {
			v, err := primary(ctx)
			if err != nil {
				if retryable(err) {
					return retry.RetryableError(err)
				}
				return err
			}
			result = v
			return nil
		})
		if err == nil {
			return result, domain.SourcePrimary, nil
		}
		if ctx.Err() != nil {
			return zero, "", fmt.Errorf("provider.%s: %w", op, ctx.Err())
		}
		r.log.WarnContext(ctx, "primary provider failed, using fallback",
			"provider", op,
			"error", err,
		)
	}

	v, err := fallback(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return zero, "", err
		}
		return zero, "", fmt.Errorf("provider.%s: fallback: %w: %v", op, domain.ErrUpstream, err)
	}
	return v, domain.SourceFallback, nil
}

// retryable reports whether another attempt at the primary could succeed.
// Client errors other than rate limiting are final.
func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return true
}
