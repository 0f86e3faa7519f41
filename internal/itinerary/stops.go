package itinerary

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/tripwizard/internal/domain"
)

// ErrNoStartDate is returned by AutoAssignDates when the trip has no start
// date. It is a warning: the stops are returned unchanged.
var ErrNoStartDate = errors.New("start date is not set; dates were not assigned")

// Reindex renumbers every stop so that Day equals position + 1.
func Reindex(stops []domain.ItineraryStop) []domain.ItineraryStop {
	out := slices.Clone(stops)
	for i := range out {
		out[i].Day = i + 1
	}
	return out
}

// Reorder moves the stop at from to position to and renumbers all days.
func Reorder(stops []domain.ItineraryStop, from, to int) ([]domain.ItineraryStop, error) {
	n := len(stops)
	if from < 0 || from >= n || to < 0 || to >= n {
		return nil, fmt.Errorf("%w: reorder indexes %d to %d out of range for %d stops", domain.ErrValidation, from, to, n)
	}

	out := slices.Clone(stops)
	moved := out[from]
	out = slices.Delete(out, from, from+1)
	out = slices.Insert(out, to, moved)
	return Reindex(out), nil
}

// AutoAssignDates dates every stop start + (day-1) days, overwriting any date
// set by hand. Stops may end up past the trip end date when there are more
// stops than days; callers decide whether to warn about that.
func AutoAssignDates(stops []domain.ItineraryStop, start time.Time) ([]domain.ItineraryStop, error) {
	if start.IsZero() {
		return stops, ErrNoStartDate
	}
	out := Reindex(stops)
	for i := range out {
		out[i].Date = domain.AddDays(start, out[i].Day-1)
	}
	return out, nil
}

// UpdateDate sets the date of a single stop. Several stops may share a date.
// The date must fall inside [start, end]; zero bounds are not enforced.
func UpdateDate(stops []domain.ItineraryStop, id uuid.UUID, date, start, end time.Time) ([]domain.ItineraryStop, error) {
	i := indexOf(stops, id)
	if i < 0 {
		return nil, fmt.Errorf("stop %s: %w", id, domain.ErrNotFound)
	}
	if !date.IsZero() && !domain.WithinRange(date, start, end) {
		return nil, fmt.Errorf("%w: stop date %s is outside the trip dates", domain.ErrValidation, date.Format(domain.DateLayout))
	}

	out := slices.Clone(stops)
	out[i].Date = domain.Day(date)
	return out, nil
}

// AddCustom appends a traveler-defined stop at the end of the itinerary.
func AddCustom(stops []domain.ItineraryStop, name string, date, start, end time.Time) ([]domain.ItineraryStop, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: stop name is required", domain.ErrValidation)
	}
	if !date.IsZero() && !domain.WithinRange(date, start, end) {
		return nil, fmt.Errorf("%w: stop date %s is outside the trip dates", domain.ErrValidation, date.Format(domain.DateLayout))
	}

	out := append(slices.Clone(stops), domain.ItineraryStop{
		ID:   uuid.New(),
		Name: name,
		Date: domain.Day(date),
		Type: domain.StopCustom,
	})
	return Reindex(out), nil
}

// Rename changes the label of any stop, parsed or custom.
func Rename(stops []domain.ItineraryStop, id uuid.UUID, name string) ([]domain.ItineraryStop, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: stop name is required", domain.ErrValidation)
	}
	i := indexOf(stops, id)
	if i < 0 {
		return nil, fmt.Errorf("stop %s: %w", id, domain.ErrNotFound)
	}

	out := slices.Clone(stops)
	out[i].Name = name
	return out, nil
}

// Remove deletes a custom stop and renumbers the remaining days.
func Remove(stops []domain.ItineraryStop, id uuid.UUID) ([]domain.ItineraryStop, error) {
	i := indexOf(stops, id)
	if i < 0 {
		return nil, fmt.Errorf("stop %s: %w", id, domain.ErrNotFound)
	}
	if !stops[i].Removable() {
		return nil, fmt.Errorf("%w: destination stops cannot be removed, only renamed or re-dated", domain.ErrValidation)
	}

	out := slices.Delete(slices.Clone(stops), i, i+1)
	return Reindex(out), nil
}

// OutOfRange returns the stops dated outside [start, end].
func OutOfRange(stops []domain.ItineraryStop, start, end time.Time) []domain.ItineraryStop {
	var out []domain.ItineraryStop
	for _, s := range stops {
		if !s.Date.IsZero() && !domain.WithinRange(s.Date, start, end) {
			out = append(out, s)
		}
	}
	return out
}

func indexOf(stops []domain.ItineraryStop, id uuid.UUID) int {
	return slices.IndexFunc(stops, func(s domain.ItineraryStop) bool { return s.ID == id })
}
