package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/tripwizard/internal/api"
	"github.com/pkordes/tripwizard/internal/domain"
	"github.com/pkordes/tripwizard/internal/draft"
	"github.com/pkordes/tripwizard/internal/middleware"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, api.ErrorResponse{Error: api.ErrorDetail{Code: code, Message: message}})
}

// fail maps a service error onto a status code and error body.
// validationStatus is 422 on trip routes and 400 on search and lookups.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, validationStatus int) {
	var overlap *draft.OverlapError
	switch {
	case errors.As(err, &overlap):
		ids := make([]string, 0, len(overlap.Conflicts))
		for _, id := range overlap.Conflicts {
			ids = append(ids, id.String())
		}
		writeJSON(w, http.StatusConflict, api.ErrorResponse{Error: api.ErrorDetail{
			Code: "hotel_overlap", Message: overlap.Error(), Conflicts: ids,
		}})
	case errors.Is(err, domain.ErrValidation):
		writeError(w, validationStatus, "validation_error", unwrapMessage(err))
	case errors.Is(err, domain.ErrNotFound):
		msg := unwrapMessage(err)
		if msg == domain.ErrNotFound.Error() {
			msg = "trip not found"
		}
		writeError(w, http.StatusNotFound, "not_found", msg)
	case errors.Is(err, domain.ErrStaleDraft):
		writeError(w, http.StatusConflict, "stale_draft", "trip was saved elsewhere; reload it and try again")
	case errors.Is(err, domain.ErrBooked):
		writeError(w, http.StatusConflict, "booked", "trip is already booked")
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", unwrapMessage(err))
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
	case errors.Is(err, domain.ErrUpstream):
		s.log.WarnContext(r.Context(), "provider failure", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadGateway, "upstream_error", "travel provider unavailable")
	case errors.Is(err, context.Canceled):
		// The client is gone; nothing useful can be written.
	default:
		s.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// unwrapMessage extracts the human-readable part of a wrapped error.
// e.g. "service.TripService.Create: validation error: title is required" → "title is required"
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for {
		head, rest, ok := strings.Cut(msg, ": ")
		if !ok || !isLayerPrefix(head) {
			break
		}
		msg = rest
	}
	return strings.TrimPrefix(msg, domain.ErrValidation.Error()+": ")
}

// isLayerPrefix reports whether s looks like "layer.Type.Method".
func isLayerPrefix(s string) bool {
	return strings.Count(s, ".") == 2 && !strings.ContainsAny(s, " \t")
}

// decode reads a JSON body into dst and validates its struct tags. On
// failure it writes the response and returns false.
func decode(w http.ResponseWriter, r *http.Request, dst any, validationStatus int) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")
		case errors.Is(err, io.EOF):
			writeError(w, http.StatusBadRequest, "bad_request", "request body is required")
		case errors.Is(err, domain.ErrValidation):
			writeError(w, validationStatus, "validation_error", unwrapMessage(err))
		default:
			writeError(w, http.StatusBadRequest, "bad_request", "malformed JSON body")
		}
		return false
	}
	if err := api.Validate(dst); err != nil {
		writeError(w, validationStatus, "validation_error", unwrapMessage(err))
		return false
	}
	return true
}

// tripParams resolves the owner and the {id} path parameter of a trip route.
func tripParams(w http.ResponseWriter, r *http.Request) (string, uuid.UUID, bool) {
	owner, ok := ownerOf(w, r)
	if !ok {
		return "", uuid.Nil, false
	}
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid trip id")
		return "", uuid.Nil, false
	}
	return owner, id, true
}

func ownerOf(w http.ResponseWriter, r *http.Request) (string, bool) {
	owner, ok := middleware.OwnerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
	}
	return owner, ok
}

// queryParam binds a form-style query parameter into dest. Optional
// parameters need a pointer-to-pointer dest, as in generated oapi-codegen code.
func queryParam(w http.ResponseWriter, r *http.Request, name string, required bool, dest any) bool {
	if err := runtime.BindQueryParameter("form", true, required, name, r.URL.Query(), dest); err != nil {
		msg := "invalid query parameter " + name
		if required && !r.URL.Query().Has(name) {
			msg = "query parameter " + name + " is required"
		}
		writeError(w, http.StatusBadRequest, "validation_error", msg)
		return false
	}
	return true
}
