package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripwizard/internal/api"
	"github.com/pkordes/tripwizard/internal/domain"
	"github.com/pkordes/tripwizard/internal/handler"
	"github.com/pkordes/tripwizard/internal/repo"
	"github.com/pkordes/tripwizard/internal/service"
)

// memDraftRepo keeps one trip in memory so the real TripService can run
// behind the router.
type memDraftRepo struct {
	stored domain.Trip
	writes int
}

var _ repo.DraftRepo = (*memDraftRepo)(nil)

func (m *memDraftRepo) Create(_ context.Context, t domain.Trip) (domain.Trip, error) {
	t.ID = uuid.New()
	t.Version = 1
	m.stored = t.Clone()
	m.writes++
	return t, nil
}

func (m *memDraftRepo) Get(_ context.Context, ownerID string, id uuid.UUID) (domain.Trip, error) {
	if m.stored.ID != id || m.stored.OwnerID != ownerID {
		return domain.Trip{}, domain.ErrNotFound
	}
	return m.stored.Clone(), nil
}

func (m *memDraftRepo) ListPaged(context.Context, string, domain.PaginationParams) ([]domain.Trip, int64, error) {
	return nil, 0, nil
}

func (m *memDraftRepo) Save(_ context.Context, t domain.Trip) (domain.Trip, error) {
	if t.Version != m.stored.Version {
		return domain.Trip{}, domain.ErrStaleDraft
	}
	t.Version++
	m.stored = t.Clone()
	m.writes++
	return t, nil
}

func hotelJSON(id, in, out string) map[string]any {
	h := map[string]any{
		"component_type": "hotel",
		"title":          "Hotel " + in,
		"price":          300,
		"check_in_date":  in,
		"check_out_date": out,
	}
	if id != "" {
		h["id"] = id
	}
	return h
}

func TestCreateTrip_NormalizesComponents(t *testing.T) {
	r := &memDraftRepo{}
	h := newHTTPHandler(handler.Services{Trips: service.NewTripService(r)})

	rec := do(h, http.MethodPost, "/api/trips", jsonBody(t, map[string]any{
		"title":      "Japan",
		"start_date": "2025-07-01",
		"end_date":   "2025-07-10",
		"components": []any{hotelJSON("", "2025-07-01", "2025-07-03"), hotelJSON("", "2025-07-03", "2025-07-05")},
	}))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp api.Trip
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Components, 2)
	a, b := resp.Components[0].Common(), resp.Components[1].Common()
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, domain.StatusPlanned, a.Status)
	assert.Equal(t, "USD", b.Currency)
}

func TestCreateTrip_409_OverlappingHotels(t *testing.T) {
	r := &memDraftRepo{}
	h := newHTTPHandler(handler.Services{Trips: service.NewTripService(r)})
	first, second := uuid.NewString(), uuid.NewString()

	rec := do(h, http.MethodPost, "/api/trips", jsonBody(t, map[string]any{
		"title":      "Japan",
		"components": []any{hotelJSON(first, "2025-07-01", "2025-07-04"), hotelJSON(second, "2025-07-03", "2025-07-05")},
	}))

	require.Equal(t, http.StatusConflict, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, "hotel_overlap", e.Code)
	assert.ElementsMatch(t, []string{first, second}, e.Conflicts)
	assert.Zero(t, r.writes)
}

func TestUpdateTrip_422_InvalidContents(t *testing.T) {
	dup := uuid.NewString()
	tests := map[string]map[string]any{
		"duplicate component id": {
			"components": []any{hotelJSON(dup, "2025-07-01", "2025-07-02"), hotelJSON(dup, "2025-07-05", "2025-07-06")},
		},
		"duplicate stop id": {
			"itinerary": []any{map[string]any{"id": dup, "name": "Tokyo"}, map[string]any{"id": dup, "name": "Kyoto"}},
		},
		"stop outside trip dates": {
			"itinerary": []any{map[string]any{"name": "Tokyo", "date": "2025-08-01"}},
		},
	}
	for name, extra := range tests {
		t.Run(name, func(t *testing.T) {
			r := &memDraftRepo{}
			svc := service.NewTripService(r)
			created, err := svc.Create(context.Background(), domain.Trip{
				OwnerID: owner, Title: "Japan", StartDate: date("2025-07-01"), EndDate: date("2025-07-10"),
			})
			require.NoError(t, err)

			body := map[string]any{
				"title": "Japan", "version": created.Version,
				"start_date": "2025-07-01", "end_date": "2025-07-10",
			}
			for k, v := range extra {
				body[k] = v
			}
			rec := do(newHTTPHandler(handler.Services{Trips: svc}), http.MethodPut, "/api/trips/"+created.ID.String(), jsonBody(t, body))

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Equal(t, "validation_error", decodeError(t, rec).Code)
			assert.Equal(t, 1, r.writes, "only the create was written")
		})
	}
}
