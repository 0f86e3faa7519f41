package draft

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/pkordes/tripwizard/internal/domain"
)

// Backend persists drafts. service.TripService satisfies it in-process and
// client.Client satisfies it over HTTP.
type Backend interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	Save(ctx context.Context, trip domain.Trip) (domain.Trip, error)
}

// Session owns one in-memory draft and synchronizes it with a Backend.
// Dispatch applies actions locally and synchronously; EnsureTrip and
// SaveProgress talk to the backend. A Session is safe for concurrent use.
type Session struct {
	backend Backend

	// syncMu serializes backend calls so a second save never races the
	// first with the same version.
	syncMu sync.Mutex

	mu    sync.Mutex
	trip  domain.Trip
	saved bool
}

// NewSession starts a session for trip. A trip with an id is treated as
// already created.
func NewSession(backend Backend, trip domain.Trip) *Session {
	return &Session{backend: backend, trip: trip.Clone()}
}

// Draft returns a copy of the current local state.
func (s *Session) Draft() domain.Trip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trip.Clone()
}

// Dispatch applies a to the local draft. Errors leave the draft unchanged;
// ErrNoStartDate is returned as a warning in the same way.
func (s *Session) Dispatch(a Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := Reduce(s.trip, a)
	if err != nil {
		return err
	}
	s.trip = next
	return nil
}

// EnsureTrip creates the trip on the backend the first time an id is needed.
// It is idempotent: once the draft has an id no backend call is made.
func (s *Session) EnsureTrip(ctx context.Context) (uuid.UUID, error) {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()
	return s.ensureTrip(ctx)
}

func (s *Session) ensureTrip(ctx context.Context) (uuid.UUID, error) {
	s.mu.Lock()
	snapshot := s.trip.Clone()
	s.mu.Unlock()

	if snapshot.ID != uuid.Nil {
		return snapshot.ID, nil
	}
	if strings.TrimSpace(snapshot.Title) == "" {
		return uuid.Nil, fmt.Errorf("draft.Session.EnsureTrip: %w: title is required before the trip can be saved", domain.ErrValidation)
	}

	created, err := s.backend.Create(ctx, snapshot)
	if err != nil {
		return uuid.Nil, fmt.Errorf("draft.Session.EnsureTrip: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.adoptIdentity(created)
	// The backend parses destinations into stops when the draft has none.
	// Keep them locally, or the next wholesale save would erase them.
	if len(snapshot.Itinerary) == 0 && len(s.trip.Itinerary) == 0 {
		s.trip.Itinerary = slices.Clone(created.Itinerary)
	}
	return created.ID, nil
}

// SaveProgress sends a snapshot of the whole draft to the backend, creating
// the trip first if needed. Actions dispatched while the save is in flight
// stay local until the next save. On failure the local draft is untouched.
func (s *Session) SaveProgress(ctx context.Context) error {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	if _, err := s.ensureTrip(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	snapshot := s.trip.Clone()
	s.mu.Unlock()

	saved, err := s.backend.Save(ctx, snapshot)
	if err != nil {
		return fmt.Errorf("draft.Session.SaveProgress: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.adoptIdentity(saved)
	s.saved = true
	return nil
}

// Saved reports whether at least one SaveProgress call has succeeded.
func (s *Session) Saved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved
}

// adoptIdentity copies the server-owned fields of a persisted trip into the
// local draft without discarding local edits. Caller holds s.mu.
func (s *Session) adoptIdentity(persisted domain.Trip) {
	s.trip.ID = persisted.ID
	s.trip.OwnerID = persisted.OwnerID
	s.trip.Version = persisted.Version
	s.trip.Status = persisted.Status
	s.trip.CreatedAt = persisted.CreatedAt
	s.trip.UpdatedAt = persisted.UpdatedAt
}
