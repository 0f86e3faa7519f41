package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkordes/tripwizard/internal/domain"
	"github.com/pkordes/tripwizard/internal/draft"
	"github.com/pkordes/tripwizard/internal/provider"
)

// LookupService answers reference lookups used while planning.
type LookupService struct {
	currency provider.CurrencyConverter
	visa     provider.VisaChecker
}

func NewLookupService(c provider.CurrencyConverter, v provider.VisaChecker) *LookupService {
	return &LookupService{currency: c, visa: v}
}

// Currency converts amount between two currency codes.
func (s *LookupService) Currency(ctx context.Context, from, to string, amount float64) (domain.CurrencyQuote, error) {
	f, err := draft.NormalizeCurrency(from)
	if err != nil {
		return domain.CurrencyQuote{}, fmt.Errorf("service.LookupService.Currency: from: %w", err)
	}
	t, err := draft.NormalizeCurrency(to)
	if err != nil {
		return domain.CurrencyQuote{}, fmt.Errorf("service.LookupService.Currency: to: %w", err)
	}
	if amount < 0 {
		return domain.CurrencyQuote{}, fmt.Errorf("service.LookupService.Currency: %w: amount must not be negative", domain.ErrValidation)
	}

	q, err := s.currency.Convert(ctx, f, t, amount)
	if err != nil {
		return domain.CurrencyQuote{}, fmt.Errorf("service.LookupService.Currency: %w", err)
	}
	return q, nil
}

// Visa returns the entry requirement for holders of passport visiting
// destination. Both are ISO 3166 alpha-2 country codes.
func (s *LookupService) Visa(ctx context.Context, passport, destination string) (domain.VisaRequirement, error) {
	passport = strings.ToUpper(strings.TrimSpace(passport))
	destination = strings.ToUpper(strings.TrimSpace(destination))
	if len(passport) != 2 || len(destination) != 2 {
		return domain.VisaRequirement{}, fmt.Errorf("service.LookupService.Visa: %w: passport and destination must be two-letter country codes", domain.ErrValidation)
	}

	req, err := s.visa.Requirement(ctx, passport, destination)
	if err != nil {
		return domain.VisaRequirement{}, fmt.Errorf("service.LookupService.Visa: %w", err)
	}
	return req, nil
}
