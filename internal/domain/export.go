package domain

// ExportRow is a single row in a trip export: a flat, denormalized view with
// one row per component, joined to the itinerary stop scheduled on the same
// date. Stops with no components yield one row with empty component fields.
type ExportRow struct {
	TripID    string
	TripTitle string

	// Day and StopName are zero values when the component's date matches no stop.
	Day      int
	Date     string // "2006-01-02", empty when unscheduled
	StopName string

	ComponentType  string
	ComponentTitle string
	Location       string
	Price          float64
	Currency       string
	Status         string
}
