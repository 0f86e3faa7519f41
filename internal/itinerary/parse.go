// Package itinerary maintains the day-indexed route plan of a trip: parsing
// the free-text destinations field into stops, reordering them, and assigning
// calendar dates. Every function returns a new slice and leaves its input
// untouched.
package itinerary

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/tripwizard/internal/domain"
)

// multiSeparator separates explicit entries in the destinations field.
const multiSeparator = ";;"

// ParseDestinations converts a destinations string into an ordered list of
// destination stops. Days are numbered from 1; when start is set each stop is
// dated start + index days.
//
// With ";;" present every segment is one stop, used verbatim after trimming.
// Otherwise the string is read as comma-separated "City, Country" pairs and
// only the city tokens are kept. Input that does not alternate city and
// country produces the wrong cities; the traveler fixes those afterwards.
func ParseDestinations(destinations string, start time.Time) []domain.ItineraryStop {
	names := destinationNames(destinations)
	stops := make([]domain.ItineraryStop, 0, len(names))
	for i, name := range names {
		s := domain.ItineraryStop{
			ID:   uuid.New(),
			Name: name,
			Day:  i + 1,
			Type: domain.StopDestination,
		}
		if !start.IsZero() {
			s.Date = domain.AddDays(start, i)
		}
		stops = append(stops, s)
	}
	return stops
}

func destinationNames(s string) []string {
	if strings.Contains(s, multiSeparator) {
		return nonEmpty(strings.Split(s, multiSeparator))
	}

	parts := nonEmpty(strings.Split(s, ","))
	switch {
	case len(parts) == 2:
		return parts[:1]
	case len(parts) > 2:
		cities := make([]string, 0, (len(parts)+1)/2)
		for i := 0; i < len(parts); i += 2 {
			cities = append(cities, parts[i])
		}
		return cities
	}
	return parts
}

// nonEmpty trims every part and drops the ones left empty.
func nonEmpty(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
