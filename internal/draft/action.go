// Package draft holds the trip-draft state machine. Every mutation of a draft
// is a typed Action applied by Reduce, so each transition can be inspected and
// tested on its own. Session layers lazy creation and wholesale saving on top.
package draft

import (
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/tripwizard/internal/domain"
)

// ActionKind names a draft transition. The values double as the wire names.
type ActionKind string

const (
	KindSetDetails       ActionKind = "SET_DETAILS"
	KindSetDates         ActionKind = "SET_DATES"
	KindSetDestinations  ActionKind = "SET_DESTINATIONS"
	KindAddStop          ActionKind = "ADD_STOP"
	KindRenameStop       ActionKind = "RENAME_STOP"
	KindSetStopDate      ActionKind = "SET_STOP_DATE"
	KindReorderStop      ActionKind = "REORDER_STOP"
	KindRemoveStop       ActionKind = "REMOVE_STOP"
	KindAutoAssignDates  ActionKind = "AUTO_ASSIGN_DATES"
	KindAddComponent     ActionKind = "ADD_COMPONENT"
	KindRemoveComponent  ActionKind = "REMOVE_COMPONENT"
	KindReplaceComponent ActionKind = "REPLACE_COMPONENT"
	KindClearComponents  ActionKind = "CLEAR_COMPONENTS"
)

// Action is a single typed mutation of a trip draft.
type Action interface {
	Kind() ActionKind
}

// SetDetails updates trip metadata. Nil fields are left unchanged.
type SetDetails struct {
	Title        *string
	BudgetAmount *float64
	Currency     *string
	Travelers    *int
}

// SetDates replaces the travel window. Zero values clear a bound.
type SetDates struct {
	Start time.Time
	End   time.Time
}

// SetDestinations replaces the destinations text and re-parses the
// destination stops. Custom stops are kept after the parsed ones.
type SetDestinations struct {
	Destinations string
}

// AddStop appends a custom stop.
type AddStop struct {
	Name string
	Date time.Time
}

type RenameStop struct {
	StopID uuid.UUID
	Name   string
}

type SetStopDate struct {
	StopID uuid.UUID
	Date   time.Time
}

// ReorderStop moves the stop at index From to index To.
type ReorderStop struct {
	From int
	To   int
}

type RemoveStop struct {
	StopID uuid.UUID
}

type AutoAssignDates struct{}

// AddComponent attaches a component. When the component is a hotel whose stay
// overlaps existing hotels, the add is rejected with an *OverlapError unless
// ReplaceOverlapping is set, in which case the overlapping hotels are removed.
type AddComponent struct {
	Component          domain.Component
	ReplaceOverlapping bool
}

type RemoveComponent struct {
	ComponentID uuid.UUID
}

// ReplaceComponent is the edit flow: the component with the same id is
// removed and the new version inserted, with the same overlap rules as
// AddComponent checked against the remaining components.
type ReplaceComponent struct {
	Component          domain.Component
	ReplaceOverlapping bool
}

// ClearComponents removes every component, or only those of Type when set.
type ClearComponents struct {
	Type domain.ComponentType
}

func (SetDetails) Kind() ActionKind       { return KindSetDetails }
func (SetDates) Kind() ActionKind         { return KindSetDates }
func (SetDestinations) Kind() ActionKind  { return KindSetDestinations }
func (AddStop) Kind() ActionKind          { return KindAddStop }
func (RenameStop) Kind() ActionKind       { return KindRenameStop }
func (SetStopDate) Kind() ActionKind      { return KindSetStopDate }
func (ReorderStop) Kind() ActionKind      { return KindReorderStop }
func (RemoveStop) Kind() ActionKind       { return KindRemoveStop }
func (AutoAssignDates) Kind() ActionKind  { return KindAutoAssignDates }
func (AddComponent) Kind() ActionKind     { return KindAddComponent }
func (RemoveComponent) Kind() ActionKind  { return KindRemoveComponent }
func (ReplaceComponent) Kind() ActionKind { return KindReplaceComponent }
func (ClearComponents) Kind() ActionKind  { return KindClearComponents }
