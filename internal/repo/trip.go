// Package repo contains all database access logic for the trip wizard.
// Each table has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/tripwizard/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Integration tests pass a transaction that is rolled back after each test.
// Begin on a pgx.Tx opens a savepoint, so DraftRepo's transactions nest
// inside a test transaction.
type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TripRepo persists the header row of a trip draft (custom_trips).
// Every read and write is scoped by owner.
type TripRepo interface {
	// Create inserts a new trip and returns it with id, version 1 and
	// timestamps populated.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID returns domain.ErrNotFound when the trip does not exist or
	// belongs to another owner.
	GetByID(ctx context.Context, ownerID string, id uuid.UUID) (domain.Trip, error)

	// ListPaged returns one page of the owner's trips, most recently updated
	// first, together with the owner's total trip count.
	ListPaged(ctx context.Context, ownerID string, p domain.PaginationParams) ([]domain.Trip, int64, error)

	// Update overwrites the mutable fields when trip.Version matches the
	// stored version, and increments the version. A mismatch returns
	// domain.ErrStaleDraft; a missing trip returns domain.ErrNotFound.
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, owner_id, title, destinations, start_date, end_date,
	budget_amount, currency, travelers, status, version, created_at, updated_at`

func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	q := `
		INSERT INTO custom_trips (owner_id, title, destinations, start_date, end_date,
		                          budget_amount, currency, travelers, status)
		VALUES (@owner_id, @title, @destinations, @start_date, @end_date,
		        @budget_amount, @currency, @travelers, @status)
		RETURNING ` + tripColumns

	row := r.db.QueryRow(ctx, q, tripArgs(trip))
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (domain.Trip, error) {
	q := `SELECT ` + tripColumns + `
		FROM custom_trips
		WHERE id = @id AND owner_id = @owner_id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "owner_id": ownerID})
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) ListPaged(ctx context.Context, ownerID string, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	var total int64
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM custom_trips WHERE owner_id = @owner_id`,
		pgx.NamedArgs{"owner_id": ownerID},
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: count: %w", err)
	}

	q := `SELECT ` + tripColumns + `
		FROM custom_trips
		WHERE owner_id = @owner_id
		ORDER BY updated_at DESC, id
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"owner_id": ownerID,
		"limit":    p.Limit,
		"offset":   p.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: rows: %w", err)
	}
	return trips, total, nil
}

func (r *pgTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	q := `
		UPDATE custom_trips
		SET title         = @title,
		    destinations  = @destinations,
		    start_date    = @start_date,
		    end_date      = @end_date,
		    budget_amount = @budget_amount,
		    currency      = @currency,
		    travelers     = @travelers,
		    status        = @status,
		    version       = version + 1,
		    updated_at    = now()
		WHERE id = @id AND owner_id = @owner_id AND version = @version
		RETURNING ` + tripColumns

	args := tripArgs(trip)
	args["id"] = trip.ID
	args["version"] = trip.Version

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if errors.Is(err, domain.ErrNotFound) {
		// Either the trip is gone or someone saved a newer version first.
		var current int
		lookupErr := r.db.QueryRow(ctx,
			`SELECT version FROM custom_trips WHERE id = @id AND owner_id = @owner_id`,
			pgx.NamedArgs{"id": trip.ID, "owner_id": trip.OwnerID},
		).Scan(&current)
		switch {
		case errors.Is(lookupErr, pgx.ErrNoRows):
			return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", domain.ErrNotFound)
		case lookupErr != nil:
			return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: check version: %w", lookupErr)
		}
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: have version %d, stored %d: %w",
			trip.Version, current, domain.ErrStaleDraft)
	}
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}
	return result, nil
}

func tripArgs(t domain.Trip) pgx.NamedArgs {
	return pgx.NamedArgs{
		"owner_id":      t.OwnerID,
		"title":         t.Title,
		"destinations":  t.Destinations,
		"start_date":    nullDate(t.StartDate),
		"end_date":      nullDate(t.EndDate),
		"budget_amount": t.BudgetAmount,
		"currency":      t.Currency,
		"travelers":     t.Travelers,
		"status":        string(t.Status),
	}
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a custom_trips row into a domain.Trip header (no itinerary
// or components).
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t         domain.Trip
		id        pgtype.UUID
		startDate pgtype.Date
		endDate   pgtype.Date
		status    string
	)

	err := s.Scan(&id, &t.OwnerID, &t.Title, &t.Destinations, &startDate, &endDate,
		&t.BudgetAmount, &t.Currency, &t.Travelers, &status, &t.Version, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.Status = domain.TripStatus(status)
	t.StartDate = dateOf(startDate)
	t.EndDate = dateOf(endDate)
	return t, nil
}

// nullDate maps a zero time to SQL NULL.
func nullDate(t time.Time) pgtype.Date {
	return pgtype.Date{Time: domain.Day(t), Valid: !t.IsZero()}
}

func dateOf(d pgtype.Date) time.Time {
	if !d.Valid {
		return time.Time{}
	}
	return domain.Day(d.Time)
}
