package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pkordes/tripwizard/internal/domain"
)

// ComponentRepo persists the bookable components of a trip. Each row stores
// the full component JSON in payload; the variant is restored from its
// component_type discriminator on read.
type ComponentRepo interface {
	// ListByTripID returns the components of a trip in insertion order.
	ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Component, error)

	// ReplaceForTrip deletes every component of the trip and inserts
	// components in order. Call it inside a transaction.
	ReplaceForTrip(ctx context.Context, tripID uuid.UUID, components []domain.Component) error
}

type pgComponentRepo struct {
	db db
}

// NewComponentRepo constructs a ComponentRepo backed by the provided db connection.
func NewComponentRepo(db db) ComponentRepo {
	return &pgComponentRepo{db: db}
}

func (r *pgComponentRepo) ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Component, error) {
	const q = `
		SELECT payload
		FROM trip_components
		WHERE trip_id = @trip_id
		ORDER BY position`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.ComponentRepo.ListByTripID: %w", err)
	}
	defer rows.Close()

	components := []domain.Component{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("repo.ComponentRepo.ListByTripID: scan: %w", err)
		}
		c, err := domain.DecodeComponent(payload)
		if err != nil {
			return nil, fmt.Errorf("repo.ComponentRepo.ListByTripID: decode: %w", err)
		}
		components = append(components, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ComponentRepo.ListByTripID: rows: %w", err)
	}
	return components, nil
}

func (r *pgComponentRepo) ReplaceForTrip(ctx context.Context, tripID uuid.UUID, components []domain.Component) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM trip_components WHERE trip_id = @trip_id`,
		pgx.NamedArgs{"trip_id": tripID}); err != nil {
		return fmt.Errorf("repo.ComponentRepo.ReplaceForTrip: delete: %w", err)
	}

	const q = `
		INSERT INTO trip_components (trip_id, id, position, component_type, title,
		                             price, currency, status, payload)
		VALUES (@trip_id, @id, @position, @component_type, @title,
		        @price, @currency, @status, @payload)`

	for i, c := range components {
		payload, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("repo.ComponentRepo.ReplaceForTrip: encode component %d: %w", i, err)
		}
		base := c.Common()
		_, err = r.db.Exec(ctx, q, pgx.NamedArgs{
			"trip_id":        tripID,
			"id":             base.ID,
			"position":       i,
			"component_type": string(c.Type()),
			"title":          base.Title,
			"price":          base.Price,
			"currency":       base.Currency,
			"status":         string(base.Status),
			"payload":        payload,
		})
		if err != nil {
			return fmt.Errorf("repo.ComponentRepo.ReplaceForTrip: insert component %d: %w", i, err)
		}
	}
	return nil
}
