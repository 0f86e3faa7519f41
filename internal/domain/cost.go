package domain

import "math"

// CostSummary is a derived view over a trip's components. It is never stored.
type CostSummary struct {
	Total           float64
	PerPerson       float64
	Currency        string
	ByType          map[ComponentType]float64
	ComponentCount  int
	BudgetAmount    float64
	BudgetRemaining float64
}

// Summarize totals every component price regardless of type, status or
// currency. PerPerson divides by the traveler count, or equals Total when the
// count is not positive.
func Summarize(t Trip) CostSummary {
	return SummarizeWith(t, func(c Component) float64 { return c.Common().Price })
}

// SummarizeWith is Summarize with a caller-supplied price, used when
// component prices are converted to another currency first.
func SummarizeWith(t Trip, price func(Component) float64) CostSummary {
	s := CostSummary{
		Currency:       t.Currency,
		ByType:         make(map[ComponentType]float64),
		ComponentCount: len(t.Components),
		BudgetAmount:   t.BudgetAmount,
	}
	for _, c := range t.Components {
		p := price(c)
		s.Total += p
		s.ByType[c.Type()] += p
	}
	for k, v := range s.ByType {
		s.ByType[k] = roundCents(v)
	}
	s.Total = roundCents(s.Total)

	s.PerPerson = s.Total
	if t.Travelers > 0 {
		s.PerPerson = roundCents(s.Total / float64(t.Travelers))
	}
	s.BudgetRemaining = roundCents(t.BudgetAmount - s.Total)
	return s
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
