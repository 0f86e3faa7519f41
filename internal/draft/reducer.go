package draft

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/tripwizard/internal/domain"
	"github.com/pkordes/tripwizard/internal/itinerary"
)

// ErrNoStartDate is returned by Reduce for AutoAssignDates on a trip without
// a start date. The returned trip is the unchanged input; callers surface the
// error as a warning.
var ErrNoStartDate = itinerary.ErrNoStartDate

// OverlapError reports the hotels a new stay conflicts with. It wraps
// domain.ErrConflict.
type OverlapError struct {
	Conflicts []uuid.UUID
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("hotel stay overlaps %d existing stay(s); confirm replacement to continue", len(e.Conflicts))
}

func (e *OverlapError) Unwrap() error { return domain.ErrConflict }

// Reduce applies a to t and returns the next state. t itself is never
// modified; on error the returned trip is t.
func Reduce(t domain.Trip, a Action) (domain.Trip, error) {
	if t.Booked() {
		return t, domain.ErrBooked
	}

	next := t.Clone()
	var err error

	switch a := a.(type) {
	case SetDetails:
		err = applyDetails(&next, a)
	case SetDates:
		if !a.Start.IsZero() && !a.End.IsZero() && a.End.Before(a.Start) {
			err = fmt.Errorf("%w: end date must not be before start date", domain.ErrValidation)
			break
		}
		next.StartDate, next.EndDate = domain.Day(a.Start), domain.Day(a.End)
	case SetDestinations:
		next.Destinations = strings.TrimSpace(a.Destinations)
		next.Itinerary = reparse(next.Itinerary, next.Destinations, next.StartDate)
	case AddStop:
		next.Itinerary, err = itinerary.AddCustom(next.Itinerary, a.Name, a.Date, next.StartDate, next.EndDate)
	case RenameStop:
		next.Itinerary, err = itinerary.Rename(next.Itinerary, a.StopID, a.Name)
	case SetStopDate:
		next.Itinerary, err = itinerary.UpdateDate(next.Itinerary, a.StopID, a.Date, next.StartDate, next.EndDate)
	case ReorderStop:
		next.Itinerary, err = itinerary.Reorder(next.Itinerary, a.From, a.To)
	case RemoveStop:
		next.Itinerary, err = itinerary.Remove(next.Itinerary, a.StopID)
	case AutoAssignDates:
		next.Itinerary, err = itinerary.AutoAssignDates(next.Itinerary, next.StartDate)
	case AddComponent:
		next.Components, err = addComponent(next.Components, a.Component, a.ReplaceOverlapping, next.Currency)
	case RemoveComponent:
		next.Components, err = removeComponent(next.Components, a.ComponentID)
	case ReplaceComponent:
		next.Components, err = replaceComponent(next.Components, a.Component, a.ReplaceOverlapping, next.Currency)
	case ClearComponents:
		next.Components = slices.DeleteFunc(next.Components, func(c domain.Component) bool {
			return a.Type == "" || c.Type() == a.Type
		})
	default:
		err = fmt.Errorf("%w: unsupported action %T", domain.ErrValidation, a)
	}

	if err != nil {
		return t, err
	}
	return next, nil
}

// Warnings lists advisory problems with a draft that do not block editing.
func Warnings(t domain.Trip) []string {
	var out []string
	for _, s := range itinerary.OutOfRange(t.Itinerary, t.StartDate, t.EndDate) {
		out = append(out, fmt.Sprintf("day %d (%s) is dated %s, outside the trip dates",
			s.Day, s.Name, s.Date.Format(domain.DateLayout)))
	}
	return out
}

func applyDetails(t *domain.Trip, a SetDetails) error {
	if a.Title != nil {
		title := strings.TrimSpace(*a.Title)
		if title == "" {
			return fmt.Errorf("%w: title must not be empty", domain.ErrValidation)
		}
		t.Title = title
	}
	if a.BudgetAmount != nil {
		if *a.BudgetAmount < 0 {
			return fmt.Errorf("%w: budget_amount must not be negative", domain.ErrValidation)
		}
		t.BudgetAmount = *a.BudgetAmount
	}
	if a.Currency != nil {
		cur, err := NormalizeCurrency(*a.Currency)
		if err != nil {
			return err
		}
		t.Currency = cur
	}
	if a.Travelers != nil {
		if *a.Travelers < 1 {
			return fmt.Errorf("%w: number_of_travelers must be at least 1", domain.ErrValidation)
		}
		t.Travelers = *a.Travelers
	}
	return nil
}

// NormalizeCurrency upper-cases a three-letter currency code.
func NormalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", fmt.Errorf("%w: currency must be a three-letter code", domain.ErrValidation)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("%w: currency must be a three-letter code", domain.ErrValidation)
		}
	}
	return code, nil
}

// reparse replaces the destination stops with a fresh parse, keeping custom
// stops after them.
func reparse(current []domain.ItineraryStop, destinations string, start time.Time) []domain.ItineraryStop {
	stops := itinerary.ParseDestinations(destinations, start)
	for _, s := range current {
		if s.Type == domain.StopCustom {
			stops = append(stops, s)
		}
	}
	return itinerary.Reindex(stops)
}

func addComponent(list []domain.Component, c domain.Component, replace bool, currency string) ([]domain.Component, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: component is required", domain.ErrValidation)
	}
	c = domain.NormalizeComponent(c, currency)
	if err := domain.ValidateComponent(c); err != nil {
		return nil, err
	}
	id := c.Common().ID
	if slices.ContainsFunc(list, func(x domain.Component) bool { return x.Common().ID == id }) {
		return nil, fmt.Errorf("%w: component %s is already on the trip", domain.ErrValidation, id)
	}

	var conflicts []uuid.UUID
	for _, existing := range list {
		if domain.Overlaps(c, existing) {
			conflicts = append(conflicts, existing.Common().ID)
		}
	}
	if len(conflicts) > 0 && !replace {
		return nil, &OverlapError{Conflicts: conflicts}
	}

	out := slices.DeleteFunc(slices.Clone(list), func(x domain.Component) bool {
		return slices.Contains(conflicts, x.Common().ID)
	})
	return append(out, c), nil
}

func removeComponent(list []domain.Component, id uuid.UUID) ([]domain.Component, error) {
	i := slices.IndexFunc(list, func(c domain.Component) bool { return c.Common().ID == id })
	if i < 0 {
		return nil, fmt.Errorf("component %s: %w", id, domain.ErrNotFound)
	}
	return slices.Delete(slices.Clone(list), i, i+1), nil
}

func replaceComponent(list []domain.Component, c domain.Component, replace bool, currency string) ([]domain.Component, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: component is required", domain.ErrValidation)
	}
	rest, err := removeComponent(list, c.Common().ID)
	if err != nil {
		return nil, err
	}
	return addComponent(rest, c, replace, currency)
}
