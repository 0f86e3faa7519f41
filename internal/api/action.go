package api

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/tripwizard/internal/domain"
	"github.com/pkordes/tripwizard/internal/draft"
)

// ActionRequest is the body of POST /api/trips/{id}/actions. Type selects
// the transition and decides which of the remaining fields are read.
type ActionRequest struct {
	Type    draft.ActionKind `json:"type" validate:"required"`
	Version int              `json:"version,omitempty" validate:"gte=0"`

	// SET_DETAILS
	Title        *string  `json:"title,omitempty" validate:"omitempty,max=200"`
	BudgetAmount *float64 `json:"budget_amount,omitempty" validate:"omitempty,gte=0"`
	Currency     *string  `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	Travelers    *int     `json:"number_of_travelers,omitempty" validate:"omitempty,gte=1,lte=50"`

	// SET_DATES
	StartDate *openapi_types.Date `json:"start_date,omitempty"`
	EndDate   *openapi_types.Date `json:"end_date,omitempty"`

	// SET_DESTINATIONS
	Destinations string `json:"destinations,omitempty" validate:"max=1000"`

	// stop actions
	StopID uuid.UUID           `json:"stop_id,omitempty"`
	Name   string              `json:"name,omitempty" validate:"max=200"`
	Date   *openapi_types.Date `json:"date,omitempty"`
	From   int                 `json:"from,omitempty"`
	To     int                 `json:"to,omitempty"`

	// component actions
	Component          json.RawMessage      `json:"component,omitempty"`
	ComponentID        uuid.UUID            `json:"component_id,omitempty"`
	ComponentType      domain.ComponentType `json:"component_type,omitempty"`
	ReplaceOverlapping bool                 `json:"replace_overlapping,omitempty"`
}

// ActionResponse is the draft after an action and any date warnings.
type ActionResponse struct {
	Trip     Trip     `json:"trip"`
	Warnings []string `json:"warnings"`
}

// ToAction builds the typed reducer action. Unknown types and missing
// required fields are validation errors.
func (r ActionRequest) ToAction() (draft.Action, error) {
	switch r.Type {
	case draft.KindSetDetails:
		return draft.SetDetails{Title: r.Title, BudgetAmount: r.BudgetAmount, Currency: r.Currency, Travelers: r.Travelers}, nil
	case draft.KindSetDates:
		return draft.SetDates{Start: fromDate(r.StartDate), End: fromDate(r.EndDate)}, nil
	case draft.KindSetDestinations:
		return draft.SetDestinations{Destinations: r.Destinations}, nil
	case draft.KindAddStop:
		return draft.AddStop{Name: r.Name, Date: fromDate(r.Date)}, nil
	case draft.KindRenameStop:
		if r.StopID == uuid.Nil {
			return nil, missing("stop_id")
		}
		return draft.RenameStop{StopID: r.StopID, Name: r.Name}, nil
	case draft.KindSetStopDate:
		if r.StopID == uuid.Nil {
			return nil, missing("stop_id")
		}
		return draft.SetStopDate{StopID: r.StopID, Date: fromDate(r.Date)}, nil
	case draft.KindReorderStop:
		return draft.ReorderStop{From: r.From, To: r.To}, nil
	case draft.KindRemoveStop:
		if r.StopID == uuid.Nil {
			return nil, missing("stop_id")
		}
		return draft.RemoveStop{StopID: r.StopID}, nil
	case draft.KindAutoAssignDates:
		return draft.AutoAssignDates{}, nil
	case draft.KindAddComponent, draft.KindReplaceComponent:
		c, err := r.component()
		if err != nil {
			return nil, err
		}
		if r.Type == draft.KindAddComponent {
			return draft.AddComponent{Component: c, ReplaceOverlapping: r.ReplaceOverlapping}, nil
		}
		return draft.ReplaceComponent{Component: c, ReplaceOverlapping: r.ReplaceOverlapping}, nil
	case draft.KindRemoveComponent:
		if r.ComponentID == uuid.Nil {
			return nil, missing("component_id")
		}
		return draft.RemoveComponent{ComponentID: r.ComponentID}, nil
	case draft.KindClearComponents:
		if r.ComponentType != "" && !r.ComponentType.Valid() {
			return nil, fmt.Errorf("%w: unknown component_type %q", domain.ErrValidation, r.ComponentType)
		}
		return draft.ClearComponents{Type: r.ComponentType}, nil
	}
	return nil, fmt.Errorf("%w: unknown action type %q", domain.ErrValidation, r.Type)
}

func (r ActionRequest) component() (domain.Component, error) {
	if len(r.Component) == 0 || string(r.Component) == "null" {
		return nil, missing("component")
	}
	return domain.DecodeComponent(r.Component)
}

func missing(field string) error {
	return fmt.Errorf("%w: %s is required", domain.ErrValidation, field)
}
