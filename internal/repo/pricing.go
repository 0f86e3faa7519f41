package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/tripwizard/internal/domain"
)

// PricingRuleRepo reads the markup rules applied to search results.
type PricingRuleRepo interface {
	// ListActive returns active rules, highest priority first.
	ListActive(ctx context.Context) ([]domain.PricingRule, error)
	Create(ctx context.Context, rule domain.PricingRule) (domain.PricingRule, error)
}

type pgPricingRuleRepo struct {
	db db
}

// NewPricingRuleRepo constructs a PricingRuleRepo backed by the provided db connection.
func NewPricingRuleRepo(db db) PricingRuleRepo {
	return &pgPricingRuleRepo{db: db}
}

func (r *pgPricingRuleRepo) ListActive(ctx context.Context) ([]domain.PricingRule, error) {
	const q = `
		SELECT id, applies_to, route_pattern, markup_type, value, priority, active, created_at
		FROM pricing_rules
		WHERE active
		ORDER BY priority DESC, created_at`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.PricingRuleRepo.ListActive: %w", err)
	}
	defer rows.Close()

	rules := []domain.PricingRule{}
	for rows.Next() {
		rule, err := scanPricingRule(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.PricingRuleRepo.ListActive: scan: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.PricingRuleRepo.ListActive: rows: %w", err)
	}
	return rules, nil
}

func (r *pgPricingRuleRepo) Create(ctx context.Context, rule domain.PricingRule) (domain.PricingRule, error) {
	const q = `
		INSERT INTO pricing_rules (applies_to, route_pattern, markup_type, value, priority, active)
		VALUES (@applies_to, @route_pattern, @markup_type, @value, @priority, @active)
		RETURNING id, applies_to, route_pattern, markup_type, value, priority, active, created_at`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"applies_to":    rule.AppliesTo,
		"route_pattern": rule.RoutePattern,
		"markup_type":   string(rule.MarkupType),
		"value":         rule.Value,
		"priority":      rule.Priority,
		"active":        rule.Active,
	})
	created, err := scanPricingRule(row)
	if err != nil {
		return domain.PricingRule{}, fmt.Errorf("repo.PricingRuleRepo.Create: %w", err)
	}
	return created, nil
}

func scanPricingRule(s scanner) (domain.PricingRule, error) {
	var (
		rule       domain.PricingRule
		id         pgtype.UUID
		markupType string
	)
	err := s.Scan(&id, &rule.AppliesTo, &rule.RoutePattern, &markupType,
		&rule.Value, &rule.Priority, &rule.Active, &rule.CreatedAt)
	if err != nil {
		return domain.PricingRule{}, err
	}
	rule.ID = uuid.UUID(id.Bytes)
	rule.MarkupType = domain.MarkupType(markupType)
	return rule, nil
}
