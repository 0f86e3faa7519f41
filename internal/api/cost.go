package api

import "github.com/pkordes/tripwizard/internal/domain"

// CostSummary is the body of GET /api/trips/{id}/cost.
type CostSummary struct {
	Total           float64                          `json:"total"`
	PerPerson       float64                          `json:"per_person"`
	Currency        string                           `json:"currency"`
	ByType          map[domain.ComponentType]float64 `json:"by_type"`
	ComponentCount  int                              `json:"component_count"`
	BudgetAmount    float64                          `json:"budget_amount"`
	BudgetRemaining float64                          `json:"budget_remaining"`
	OverBudget      bool                             `json:"over_budget"`
}

func NewCostSummary(s domain.CostSummary) CostSummary {
	byType := s.ByType
	if byType == nil {
		byType = map[domain.ComponentType]float64{}
	}
	return CostSummary{
		Total:           s.Total,
		PerPerson:       s.PerPerson,
		Currency:        s.Currency,
		ByType:          byType,
		ComponentCount:  s.ComponentCount,
		BudgetAmount:    s.BudgetAmount,
		BudgetRemaining: s.BudgetRemaining,
		OverBudget:      s.BudgetAmount > 0 && s.BudgetRemaining < 0,
	}
}

// ExportRow is one row of a JSON export.
type ExportRow struct {
	TripID         string  `json:"trip_id"`
	TripTitle      string  `json:"trip_title"`
	Day            int     `json:"day,omitempty"`
	Date           string  `json:"date,omitempty"`
	StopName       string  `json:"stop_name,omitempty"`
	ComponentType  string  `json:"component_type,omitempty"`
	ComponentTitle string  `json:"component_title,omitempty"`
	Location       string  `json:"location,omitempty"`
	Price          float64 `json:"price"`
	Currency       string  `json:"currency,omitempty"`
	Status         string  `json:"status,omitempty"`
}

func NewExportRows(rows []domain.ExportRow) []ExportRow {
	out := make([]ExportRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, ExportRow(r))
	}
	return out
}
