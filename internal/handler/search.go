package handler

import (
	"net/http"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/tripwizard/internal/api"
	"github.com/pkordes/tripwizard/internal/domain"
)

// SearchFlights handles POST /api/search/flights.
func (s *Server) SearchFlights(w http.ResponseWriter, r *http.Request) {
	var req api.FlightSearchRequest
	if !decode(w, r, &req, http.StatusBadRequest) {
		return
	}
	res, err := s.search.SearchFlights(r.Context(), req.ToDomain())
	if err != nil {
		s.fail(w, r, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, api.NewSearchResponse(res.Items, res.Source, res.Cached))
}

// SearchHotels handles POST /api/hotels/search. check_in must be before
// check_out; the service rejects anything else with 400.
func (s *Server) SearchHotels(w http.ResponseWriter, r *http.Request) {
	var req api.HotelSearchRequest
	if !decode(w, r, &req, http.StatusBadRequest) {
		return
	}
	res, err := s.search.SearchHotels(r.Context(), req.ToDomain())
	if err != nil {
		s.fail(w, r, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, api.NewSearchResponse(res.Items, res.Source, res.Cached))
}

// SearchActivities handles GET /api/search/activities?city=&date=&kind=.
func (s *Server) SearchActivities(w http.ResponseWriter, r *http.Request) {
	var (
		params api.ActivitySearchParams
		date   *openapi_types.Date
		kind   *string
	)
	if !queryParam(w, r, "city", true, &params.City) ||
		!queryParam(w, r, "date", false, &date) ||
		!queryParam(w, r, "kind", false, &kind) {
		return
	}
	params.Date = date
	params.Kind = domain.ComponentType(deref(kind))
	if err := api.Validate(params); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", unwrapMessage(err))
		return
	}

	res, err := s.search.SearchActivities(r.Context(), params.ToDomain())
	if err != nil {
		s.fail(w, r, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, api.NewSearchResponse(res.Items, res.Source, res.Cached))
}
