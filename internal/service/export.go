package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/tripwizard/internal/domain"
	"github.com/pkordes/tripwizard/internal/repo"
)

// ExportService flattens a trip into export rows.
type ExportService struct {
	repo repo.DraftRepo
}

// NewExportService constructs an ExportService backed by the provided DraftRepo.
func NewExportService(r repo.DraftRepo) *ExportService {
	return &ExportService{repo: r}
}

// Export returns the trip and its rows: itinerary order first, one row per
// component scheduled on a stop's date (or one empty row for a stop with
// none), then components that match no stop.
func (s *ExportService) Export(ctx context.Context, ownerID string, id uuid.UUID) (domain.Trip, []domain.ExportRow, error) {
	trip, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return domain.Trip{}, nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	return trip, ExportRows(trip), nil
}

// ExportRows builds the rows for trip without any I/O.
func ExportRows(trip domain.Trip) []domain.ExportRow {
	rows := []domain.ExportRow{}
	used := make([]bool, len(trip.Components))

	for _, stop := range trip.Itinerary {
		matched := false
		if !stop.Date.IsZero() {
			for i, c := range trip.Components {
				if used[i] || !domain.ScheduledOn(c).Equal(stop.Date) {
					continue
				}
				used[i] = true
				matched = true
				rows = append(rows, componentRow(trip, &stop, c))
			}
		}
		if !matched {
			rows = append(rows, stopRow(trip, stop))
		}
	}

	var rest []domain.Component
	for i, c := range trip.Components {
		if !used[i] {
			rest = append(rest, c)
		}
	}
	slices.SortStableFunc(rest, func(a, b domain.Component) int {
		return domain.ScheduledOn(a).Compare(domain.ScheduledOn(b))
	})
	for _, c := range rest {
		rows = append(rows, componentRow(trip, nil, c))
	}
	return rows
}

func stopRow(trip domain.Trip, stop domain.ItineraryStop) domain.ExportRow {
	return domain.ExportRow{
		TripID:    trip.ID.String(),
		TripTitle: trip.Title,
		Day:       stop.Day,
		Date:      formatDate(stop.Date),
		StopName:  stop.Name,
	}
}

func componentRow(trip domain.Trip, stop *domain.ItineraryStop, c domain.Component) domain.ExportRow {
	base := c.Common()
	row := domain.ExportRow{
		TripID:         trip.ID.String(),
		TripTitle:      trip.Title,
		Date:           formatDate(domain.ScheduledOn(c)),
		ComponentType:  string(c.Type()),
		ComponentTitle: base.Title,
		Location:       domain.LocationOf(c),
		Price:          base.Price,
		Currency:       base.Currency,
		Status:         string(base.Status),
	}
	if stop != nil {
		row.Day = stop.Day
		row.StopName = stop.Name
	}
	return row
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.DateLayout)
}
