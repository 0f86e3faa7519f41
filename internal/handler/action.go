package handler

import (
	"net/http"

	"github.com/pkordes/tripwizard/internal/api"
)

// ApplyAction handles POST /api/trips/{id}/actions. A hotel whose stay
// overlaps existing hotels is answered with 409 and the conflicting ids;
// the client confirms by resending with replace_overlapping set.
func (s *Server) ApplyAction(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := tripParams(w, r)
	if !ok {
		return
	}
	var req api.ActionRequest
	if !decode(w, r, &req, http.StatusUnprocessableEntity) {
		return
	}
	action, err := req.ToAction()
	if err != nil {
		s.fail(w, r, err, http.StatusUnprocessableEntity)
		return
	}

	res, err := s.drafts.Apply(r.Context(), owner, id, req.Version, action)
	if err != nil {
		s.fail(w, r, err, http.StatusUnprocessableEntity)
		return
	}
	warnings := res.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	writeJSON(w, http.StatusOK, api.ActionResponse{Trip: api.NewTrip(res.Trip), Warnings: warnings})
}
