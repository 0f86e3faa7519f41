package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripwizard/internal/domain"
)

func date(s string) openapi_types.Date {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return openapi_types.Date{Time: t}
}

func hotel(in, out string) domain.Hotel {
	return domain.Hotel{
		ComponentBase: domain.ComponentBase{ID: uuid.New(), Title: "Hotel " + in, Price: 100},
		CheckIn:       date(in),
		CheckOut:      date(out),
		RoomQuantity:  1,
	}
}

func TestOverlaps_SharedBoundaryIsNotOverlap(t *testing.T) {
	a := hotel("2025-07-01", "2025-07-03")
	b := hotel("2025-07-03", "2025-07-05")

	assert.False(t, domain.Overlaps(a, b))
	assert.False(t, domain.Overlaps(b, a))
}

func TestOverlaps_IntersectingStays(t *testing.T) {
	a := hotel("2025-07-01", "2025-07-04")
	b := hotel("2025-07-03", "2025-07-05")

	assert.True(t, domain.Overlaps(a, b))
	assert.True(t, domain.Overlaps(b, a))
}

func TestOverlaps_ContainedStay(t *testing.T) {
	outer := hotel("2025-07-01", "2025-07-10")
	inner := hotel("2025-07-04", "2025-07-05")

	assert.True(t, domain.Overlaps(outer, inner))
}

func TestOverlaps_NonHotelsNeverConflict(t *testing.T) {
	d := date("2025-07-01")
	a := domain.Activity{ComponentBase: domain.ComponentBase{Title: "Tour"}, Schedule: domain.Schedule{Date: &d}}
	b := domain.Activity{ComponentBase: domain.ComponentBase{Title: "Museum"}, Schedule: domain.Schedule{Date: &d}}

	assert.False(t, domain.Overlaps(a, b))
	assert.False(t, domain.Overlaps(a, hotel("2025-06-30", "2025-07-02")))
}

func TestHotel_Nights(t *testing.T) {
	assert.Equal(t, 3, hotel("2025-07-01", "2025-07-04").Nights())
}

func TestValidateComponent(t *testing.T) {
	cases := []struct {
		name string
		c    domain.Component
		ok   bool
	}{
		{"valid hotel", hotel("2025-07-01", "2025-07-02"), true},
		{"checkout before checkin", hotel("2025-07-05", "2025-07-02"), false},
		{"same day stay", hotel("2025-07-05", "2025-07-05"), false},
		{"missing title", domain.Guide{}, false},
		{"negative price", domain.Flight{ComponentBase: domain.ComponentBase{Title: "JL1", Price: -1}}, false},
		{"rating out of range", domain.Guide{
			ComponentBase: domain.ComponentBase{Title: "Kyoto walk"},
			Details:       domain.GuideDetails{Rating: 6},
		}, false},
		{"valid poi", domain.POI{ComponentBase: domain.ComponentBase{Title: "Fushimi Inari"}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := domain.ValidateComponent(tc.c)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domain.ErrValidation)
			}
		})
	}
}

func TestNormalizeComponent_FillsDefaults(t *testing.T) {
	h := hotel("2025-07-01", "2025-07-02")
	h.ID = uuid.Nil
	h.RoomQuantity = 0

	got := domain.NormalizeComponent(h, "JPY")

	base := got.Common()
	assert.NotEqual(t, uuid.Nil, base.ID)
	assert.Equal(t, domain.StatusPlanned, base.Status)
	assert.Equal(t, "JPY", base.Currency)
	require.IsType(t, domain.Hotel{}, got)
	assert.Equal(t, 1, got.(domain.Hotel).RoomQuantity)
}

func TestComponentList_JSONCarriesDiscriminator(t *testing.T) {
	list := domain.ComponentList{
		hotel("2025-07-01", "2025-07-03"),
		domain.Guide{
			ComponentBase: domain.ComponentBase{ID: uuid.New(), Title: "Tea ceremony guide", Price: 80},
			Details:       domain.GuideDetails{Languages: []string{"en", "ja"}, Rating: 4.8},
			Location:      "Kyoto",
		},
	}

	data, err := json.Marshal(list)
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 2)
	assert.Equal(t, "hotel", raw[0]["component_type"])
	assert.Equal(t, "2025-07-01", raw[0]["check_in_date"])
	assert.EqualValues(t, 2, raw[0]["nights"])
	assert.Equal(t, "guide", raw[1]["component_type"])

	var back domain.ComponentList
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back, 2)
	assert.Equal(t, list[0], back[0])
	assert.Equal(t, domain.ComponentGuide, back[1].Type())
}

func TestDecodeComponent_UnknownType(t *testing.T) {
	_, err := domain.DecodeComponent([]byte(`{"component_type":"cruise","title":"x"}`))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestScheduledOn(t *testing.T) {
	d := date("2025-09-03")
	assert.True(t, domain.ScheduledOn(domain.POI{Schedule: domain.Schedule{Date: &d}}).Equal(d.Time))
	assert.True(t, domain.ScheduledOn(hotel("2025-09-01", "2025-09-02")).Equal(date("2025-09-01").Time))
	assert.True(t, domain.ScheduledOn(domain.Guide{}).IsZero())
}
