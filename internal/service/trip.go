// Package service contains the business logic of the trip wizard.
// Services validate inputs, enforce business rules, and orchestrate repo and
// provider calls. No SQL lives here; services depend on interfaces.
package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/tripwizard/internal/domain"
	"github.com/pkordes/tripwizard/internal/draft"
	"github.com/pkordes/tripwizard/internal/itinerary"
	"github.com/pkordes/tripwizard/internal/repo"
)

// TripService creates, loads, saves and books trip drafts. It satisfies
// draft.Backend, so a Session can run in-process against it.
type TripService struct {
	repo repo.DraftRepo
	now  func() time.Time
}

// NewTripService constructs a TripService backed by the provided DraftRepo.
func NewTripService(r repo.DraftRepo) *TripService {
	return &TripService{repo: r, now: time.Now}
}

var _ draft.Backend = (*TripService)(nil)

// Create validates and persists a new draft. A draft that arrives without
// an itinerary gets one parsed from its destinations.
func (s *TripService) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	if err := normalizeTrip(&trip); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	if err := normalizeContents(&trip, domain.Trip{}); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	trip.Status = domain.TripDraft
	if len(trip.Itinerary) == 0 {
		trip.Itinerary = itinerary.ParseDestinations(trip.Destinations, trip.StartDate)
	}

	created, err := s.repo.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return created, nil
}

// Get returns the full draft, or domain.ErrNotFound when ownerID does not own it.
func (s *TripService) Get(ctx context.Context, ownerID string, id uuid.UUID) (domain.Trip, error) {
	trip, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Get: %w", err)
	}
	return trip, nil
}

// ListPaged returns one page of the owner's trips and the total count.
func (s *TripService) ListPaged(ctx context.Context, ownerID string, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	trips, total, err := s.repo.ListPaged(ctx, ownerID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.ListPaged: %w", err)
	}
	return trips, total, nil
}

// Save replaces the stored draft with trip. trip.Version must match the
// stored version. Stops and components are held to the same rules the
// reducer enforces; overlapping hotel stays are rejected with an
// *draft.OverlapError. Booked trips cannot be saved, and the status of a trip can
// only change through Book.
func (s *TripService) Save(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	if err := normalizeTrip(&trip); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Save: %w", err)
	}

	current, err := s.repo.Get(ctx, trip.OwnerID, trip.ID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Save: %w", err)
	}
	if current.Booked() {
		return domain.Trip{}, fmt.Errorf("service.TripService.Save: %w", domain.ErrBooked)
	}
	if err := normalizeContents(&trip, current); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Save: %w", err)
	}
	trip.Status = current.Status

	saved, err := s.repo.Save(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Save: %w", err)
	}
	return saved, nil
}

// Book finalizes a draft: the trip and every component become booked and
// no further changes are accepted.
func (s *TripService) Book(ctx context.Context, ownerID string, id uuid.UUID) (domain.Trip, error) {
	trip, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Book: %w", err)
	}
	if trip.Booked() {
		return domain.Trip{}, fmt.Errorf("service.TripService.Book: %w", domain.ErrBooked)
	}
	if len(trip.Components) == 0 {
		return domain.Trip{}, fmt.Errorf("service.TripService.Book: %w: add at least one component before booking", domain.ErrValidation)
	}

	bookedAt := s.now().UTC()
	for i, c := range trip.Components {
		base := c.Common()
		base.Status = domain.StatusBooked
		base.BookingDate = &bookedAt
		trip.Components[i] = domain.WithCommon(c, base)
	}
	trip.Status = domain.TripBooked

	booked, err := s.repo.Save(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Book: %w", err)
	}
	return booked, nil
}

// normalizeTrip trims and defaults the header fields and validates them.
func normalizeTrip(t *domain.Trip) error {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if t.OwnerID == "" {
		return fmt.Errorf("%w: owner is required", domain.ErrValidation)
	}
	t.Destinations = strings.TrimSpace(t.Destinations)
	t.StartDate, t.EndDate = domain.Day(t.StartDate), domain.Day(t.EndDate)
	t.Itinerary = itinerary.Reindex(t.Itinerary)
	if t.HasDates() && t.EndDate.Before(t.StartDate) {
		return fmt.Errorf("%w: end date must not be before start date", domain.ErrValidation)
	}
	if t.BudgetAmount < 0 {
		return fmt.Errorf("%w: budget_amount must not be negative", domain.ErrValidation)
	}
	switch {
	case t.Travelers == 0:
		t.Travelers = 1
	case t.Travelers < 0:
		return fmt.Errorf("%w: number_of_travelers must be at least 1", domain.ErrValidation)
	}
	if t.Currency == "" {
		t.Currency = domain.DefaultCurrency
	}
	cur, err := draft.NormalizeCurrency(t.Currency)
	if err != nil {
		return err
	}
	t.Currency = cur
	return nil
}

// normalizeContents applies the reducer's invariants to a wholesale itinerary
// and component list: ids are unique and assigned when missing, manually set
// stop dates fall within the trip dates, components are normalized and
// valid, and no two hotel stays overlap.
//
// A stop date outside the trip is accepted when it is the date its position
// implies (what parsing and AUTO_ASSIGN_DATES produce; those surface as
// warnings) or when stored already carries it unchanged.
func normalizeContents(t *domain.Trip, stored domain.Trip) error {
	storedDates := make(map[uuid.UUID]time.Time, len(stored.Itinerary))
	for _, s := range stored.Itinerary {
		storedDates[s.ID] = s.Date
	}

	t.Itinerary = slices.Clone(t.Itinerary)
	stopIDs := make(map[uuid.UUID]bool, len(t.Itinerary))
	for i, s := range t.Itinerary {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		if stopIDs[s.ID] {
			return fmt.Errorf("%w: duplicate stop id %s", domain.ErrValidation, s.ID)
		}
		stopIDs[s.ID] = true
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("%w: stop name is required", domain.ErrValidation)
		}
		if manualDateOutOfRange(*t, s, storedDates) {
			return fmt.Errorf("%w: stop date %s is outside the trip dates", domain.ErrValidation, s.Date.Format(domain.DateLayout))
		}
		t.Itinerary[i] = s
	}

	t.Components = slices.Clone(t.Components)
	componentIDs := make(map[uuid.UUID]bool, len(t.Components))
	for i, c := range t.Components {
		if c == nil {
			return fmt.Errorf("%w: component is required", domain.ErrValidation)
		}
		c = domain.NormalizeComponent(c, t.Currency)
		if err := domain.ValidateComponent(c); err != nil {
			return err
		}
		id := c.Common().ID
		if componentIDs[id] {
			return fmt.Errorf("%w: duplicate component id %s", domain.ErrValidation, id)
		}
		componentIDs[id] = true
		t.Components[i] = c
	}

	var conflicts []uuid.UUID
	for i, a := range t.Components {
		for _, b := range t.Components[i+1:] {
			if !domain.Overlaps(a, b) {
				continue
			}
			for _, id := range []uuid.UUID{a.Common().ID, b.Common().ID} {
				if !slices.Contains(conflicts, id) {
					conflicts = append(conflicts, id)
				}
			}
		}
	}
	if len(conflicts) > 0 {
		return &draft.OverlapError{Conflicts: conflicts}
	}
	return nil
}

func manualDateOutOfRange(t domain.Trip, s domain.ItineraryStop, storedDates map[uuid.UUID]time.Time) bool {
	if s.Date.IsZero() || domain.WithinRange(s.Date, t.StartDate, t.EndDate) {
		return false
	}
	if !t.StartDate.IsZero() && s.Date.Equal(domain.AddDays(t.StartDate, s.Day-1)) {
		return false
	}
	prev, ok := storedDates[s.ID]
	return !ok || !prev.Equal(s.Date)
}
