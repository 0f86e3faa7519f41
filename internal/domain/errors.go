package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist (or is not owned by the caller).
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing title, end date before start date).
// Handlers map this to HTTP 422 on trip endpoints and 400 on search endpoints.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when a new hotel stay overlaps an existing one and
// the caller did not confirm replacement.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrStaleDraft is returned when a save carries a version older than the
// stored draft. The caller must reload before saving again.
var ErrStaleDraft = errors.New("stale draft")

// ErrBooked is returned for any mutation attempted on a finalized trip.
var ErrBooked = errors.New("trip already booked")

// ErrUpstream is returned when a third-party provider failed and no fallback
// could answer. Handlers should map this to HTTP 502.
var ErrUpstream = errors.New("upstream provider error")

// ErrUnauthorized is returned when a bearer token is missing or invalid.
var ErrUnauthorized = errors.New("unauthorized")
