package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/tripwizard/internal/domain"
	"github.com/pkordes/tripwizard/internal/draft"
	"github.com/pkordes/tripwizard/internal/provider"
	"github.com/pkordes/tripwizard/internal/repo"
)

// CostService derives the cost summary of a stored draft.
type CostService struct {
	repo     repo.DraftRepo
	currency provider.CurrencyConverter
}

// NewCostService constructs a CostService. converter may be nil, in which
// case only summaries in the trip's own currency are available.
func NewCostService(r repo.DraftRepo, converter provider.CurrencyConverter) *CostService {
	return &CostService{repo: r, currency: converter}
}

// Summary returns the cost summary of the trip. With an empty currency, or
// the trip's own currency, prices are summed as stored. Otherwise every
// component is converted from its own currency, and the budget from the
// trip currency, before summing.
func (s *CostService) Summary(ctx context.Context, ownerID string, id uuid.UUID, currency string) (domain.CostSummary, error) {
	trip, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return domain.CostSummary{}, fmt.Errorf("service.CostService.Summary: %w", err)
	}

	if strings.TrimSpace(currency) == "" {
		return domain.Summarize(trip), nil
	}
	target, err := draft.NormalizeCurrency(currency)
	if err != nil {
		return domain.CostSummary{}, fmt.Errorf("service.CostService.Summary: %w", err)
	}
	if target == trip.Currency && allIn(trip.Components, target) {
		return domain.Summarize(trip), nil
	}
	if s.currency == nil {
		return domain.CostSummary{}, fmt.Errorf("service.CostService.Summary: %w: currency conversion is not available", domain.ErrUpstream)
	}

	rates := map[string]float64{target: 1}
	rate := func(from string) (float64, error) {
		if r, ok := rates[from]; ok {
			return r, nil
		}
		q, err := s.currency.Convert(ctx, from, target, 1)
		if err != nil {
			return 0, err
		}
		rates[from] = q.Rate
		return q.Rate, nil
	}

	converted := make(map[uuid.UUID]float64, len(trip.Components))
	for _, c := range trip.Components {
		base := c.Common()
		from := base.Currency
		if from == "" {
			from = trip.Currency
		}
		r, err := rate(from)
		if err != nil {
			return domain.CostSummary{}, fmt.Errorf("service.CostService.Summary: convert %s: %w", from, err)
		}
		converted[base.ID] = base.Price * r
	}
	budgetRate, err := rate(trip.Currency)
	if err != nil {
		return domain.CostSummary{}, fmt.Errorf("service.CostService.Summary: convert budget: %w", err)
	}

	trip.Currency = target
	trip.BudgetAmount *= budgetRate
	sum := domain.SummarizeWith(trip, func(c domain.Component) float64 { return converted[c.Common().ID] })
	sum.BudgetAmount = roundCents(sum.BudgetAmount)
	return sum, nil
}

func allIn(components []domain.Component, currency string) bool {
	for _, c := range components {
		if cur := c.Common().Currency; cur != "" && cur != currency {
			return false
		}
	}
	return true
}
