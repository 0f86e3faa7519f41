package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/pkordes/tripwizard/internal/api"
	"github.com/pkordes/tripwizard/internal/domain"
)

// CreateTrip handles POST /api/trips. The draft is created lazily by the
// wizard once it has a title, so an empty title is a 422.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerOf(w, r)
	if !ok {
		return
	}
	var req api.TripRequest
	if !decode(w, r, &req, http.StatusUnprocessableEntity) {
		return
	}

	created, err := s.trips.Create(r.Context(), req.ToDomain(uuid.Nil, owner))
	if err != nil {
		s.fail(w, r, err, http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusCreated, api.NewTrip(created))
}

// ListTrips handles GET /api/trips.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerOf(w, r)
	if !ok {
		return
	}
	var page, limit *int
	if !queryParam(w, r, "page", false, &page) || !queryParam(w, r, "limit", false, &limit) {
		return
	}
	params := domain.NewPaginationParams(page, limit)

	trips, total, err := s.trips.ListPaged(r.Context(), owner, params)
	if err != nil {
		s.fail(w, r, err, http.StatusUnprocessableEntity)
		return
	}

	data := make([]api.Trip, len(trips))
	for i, t := range trips {
		data[i] = api.NewTrip(t)
	}
	writeJSON(w, http.StatusOK, api.TripList{
		Data:       data,
		Pagination: api.Pagination{Page: params.Page, Limit: params.Limit, Total: total},
	})
}

// GetTrip handles GET /api/trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := tripParams(w, r)
	if !ok {
		return
	}
	trip, err := s.trips.Get(r.Context(), owner, id)
	if err != nil {
		s.fail(w, r, err, http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, api.NewTrip(trip))
}

// UpdateTrip handles PUT /api/trips/{id}: a wholesale save of the draft.
// The body must carry the version it was loaded at.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := tripParams(w, r)
	if !ok {
		return
	}
	var req api.TripRequest
	if !decode(w, r, &req, http.StatusUnprocessableEntity) {
		return
	}
	if req.Version == 0 {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "version is required")
		return
	}

	saved, err := s.trips.Save(r.Context(), req.ToDomain(id, owner))
	if err != nil {
		s.fail(w, r, err, http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, api.NewTrip(saved))
}

// BookTrip handles POST /api/trips/{id}/book.
func (s *Server) BookTrip(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := tripParams(w, r)
	if !ok {
		return
	}
	booked, err := s.trips.Book(r.Context(), owner, id)
	if err != nil {
		s.fail(w, r, err, http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, api.NewTrip(booked))
}
