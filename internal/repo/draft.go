package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pkordes/tripwizard/internal/domain"
)

// DraftRepo reads and writes the whole trip aggregate: the custom_trips row,
// its itinerary stops, and its components. Writes run in one transaction so
// a failed save leaves the stored draft untouched.
type DraftRepo interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	Get(ctx context.Context, ownerID string, id uuid.UUID) (domain.Trip, error)

	// ListPaged returns trip headers only; Itinerary and Components are nil.
	ListPaged(ctx context.Context, ownerID string, p domain.PaginationParams) ([]domain.Trip, int64, error)

	// Save replaces the stored draft with trip under optimistic concurrency.
	// See TripRepo.Update for the version contract.
	Save(ctx context.Context, trip domain.Trip) (domain.Trip, error)
}

type pgDraftRepo struct {
	db db
}

// NewDraftRepo constructs a DraftRepo backed by the provided db connection.
func NewDraftRepo(db db) DraftRepo {
	return &pgDraftRepo{db: db}
}

func (r *pgDraftRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	var out domain.Trip
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		created, err := NewTripRepo(tx).Create(ctx, trip)
		if err != nil {
			return err
		}
		out, err = writeChildren(ctx, tx, created, trip)
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.DraftRepo.Create: %w", err)
	}
	return out, nil
}

func (r *pgDraftRepo) Get(ctx context.Context, ownerID string, id uuid.UUID) (domain.Trip, error) {
	trip, err := NewTripRepo(r.db).GetByID(ctx, ownerID, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.DraftRepo.Get: %w", err)
	}
	trip.Itinerary, err = NewStopRepo(r.db).ListByTripID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.DraftRepo.Get: %w", err)
	}
	trip.Components, err = NewComponentRepo(r.db).ListByTripID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.DraftRepo.Get: %w", err)
	}
	return trip, nil
}

func (r *pgDraftRepo) ListPaged(ctx context.Context, ownerID string, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	trips, total, err := NewTripRepo(r.db).ListPaged(ctx, ownerID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.DraftRepo.ListPaged: %w", err)
	}
	return trips, total, nil
}

func (r *pgDraftRepo) Save(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	var out domain.Trip
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		updated, err := NewTripRepo(tx).Update(ctx, trip)
		if err != nil {
			return err
		}
		out, err = writeChildren(ctx, tx, updated, trip)
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.DraftRepo.Save: %w", err)
	}
	return out, nil
}

// writeChildren stores src's stops and components under header.ID and
// returns header carrying them.
func writeChildren(ctx context.Context, tx pgx.Tx, header, src domain.Trip) (domain.Trip, error) {
	if err := NewStopRepo(tx).ReplaceForTrip(ctx, header.ID, src.Itinerary); err != nil {
		return domain.Trip{}, err
	}
	if err := NewComponentRepo(tx).ReplaceForTrip(ctx, header.ID, src.Components); err != nil {
		return domain.Trip{}, err
	}
	header.Itinerary = src.Clone().Itinerary
	header.Components = src.Clone().Components
	if header.Itinerary == nil {
		header.Itinerary = []domain.ItineraryStop{}
	}
	if header.Components == nil {
		header.Components = []domain.Component{}
	}
	return header, nil
}
