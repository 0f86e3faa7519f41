package handler

import (
	"net/http"

	"github.com/pkordes/tripwizard/internal/api"
)

// GetCost handles GET /api/trips/{id}/cost. ?currency= converts every
// component into that currency before summing.
func (s *Server) GetCost(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := tripParams(w, r)
	if !ok {
		return
	}
	var currency *string
	if !queryParam(w, r, "currency", false, &currency) {
		return
	}

	summary, err := s.costs.Summary(r.Context(), owner, id, deref(currency))
	if err != nil {
		s.fail(w, r, err, http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, api.NewCostSummary(summary))
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
