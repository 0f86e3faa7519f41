package handler

import (
	"net/http"
)

// LookupCurrency handles GET /api/lookups/currency?from=&to=&amount=.
func (s *Server) LookupCurrency(w http.ResponseWriter, r *http.Request) {
	var (
		from, to string
		amount   *float64
	)
	if !queryParam(w, r, "from", true, &from) ||
		!queryParam(w, r, "to", true, &to) ||
		!queryParam(w, r, "amount", false, &amount) {
		return
	}
	value := 1.0
	if amount != nil {
		value = *amount
	}

	quote, err := s.lookups.Currency(r.Context(), from, to, value)
	if err != nil {
		s.fail(w, r, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// LookupVisa handles GET /api/lookups/visa?passport=&destination=.
func (s *Server) LookupVisa(w http.ResponseWriter, r *http.Request) {
	var passport, destination string
	if !queryParam(w, r, "passport", true, &passport) ||
		!queryParam(w, r, "destination", true, &destination) {
		return
	}

	req, err := s.lookups.Visa(r.Context(), passport, destination)
	if err != nil {
		s.fail(w, r, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, req)
}
