package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/tripwizard/internal/domain"
)

// StopRepo persists the itinerary of a trip. The itinerary is always written
// as a whole, matching the wholesale draft save.
type StopRepo interface {
	// ListByTripID returns the stops of a trip in itinerary order.
	ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.ItineraryStop, error)

	// ReplaceForTrip deletes every stop of the trip and inserts stops in order.
	// Call it inside a transaction.
	ReplaceForTrip(ctx context.Context, tripID uuid.UUID, stops []domain.ItineraryStop) error
}

type pgStopRepo struct {
	db db
}

// NewStopRepo constructs a StopRepo backed by the provided db connection.
func NewStopRepo(db db) StopRepo {
	return &pgStopRepo{db: db}
}

func (r *pgStopRepo) ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.ItineraryStop, error) {
	const q = `
		SELECT id, name, day, stop_date, stop_type
		FROM itinerary_stops
		WHERE trip_id = @trip_id
		ORDER BY position`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.StopRepo.ListByTripID: %w", err)
	}
	defer rows.Close()

	stops := []domain.ItineraryStop{}
	for rows.Next() {
		var (
			s        domain.ItineraryStop
			id       pgtype.UUID
			date     pgtype.Date
			stopType string
		)
		if err := rows.Scan(&id, &s.Name, &s.Day, &date, &stopType); err != nil {
			return nil, fmt.Errorf("repo.StopRepo.ListByTripID: scan: %w", err)
		}
		s.ID = uuid.UUID(id.Bytes)
		s.Date = dateOf(date)
		s.Type = domain.StopType(stopType)
		stops = append(stops, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.StopRepo.ListByTripID: rows: %w", err)
	}
	return stops, nil
}

func (r *pgStopRepo) ReplaceForTrip(ctx context.Context, tripID uuid.UUID, stops []domain.ItineraryStop) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM itinerary_stops WHERE trip_id = @trip_id`,
		pgx.NamedArgs{"trip_id": tripID}); err != nil {
		return fmt.Errorf("repo.StopRepo.ReplaceForTrip: delete: %w", err)
	}

	const q = `
		INSERT INTO itinerary_stops (trip_id, id, position, name, day, stop_date, stop_type)
		VALUES (@trip_id, @id, @position, @name, @day, @stop_date, @stop_type)`

	for i, s := range stops {
		_, err := r.db.Exec(ctx, q, pgx.NamedArgs{
			"trip_id":   tripID,
			"id":        s.ID,
			"position":  i,
			"name":      s.Name,
			"day":       s.Day,
			"stop_date": nullDate(s.Date),
			"stop_type": string(s.Type),
		})
		if err != nil {
			return fmt.Errorf("repo.StopRepo.ReplaceForTrip: insert stop %d: %w", i, err)
		}
	}
	return nil
}
