package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RouteOptions carries the per-group middleware. Nil entries are skipped.
type RouteOptions struct {
	// Auth authenticates every /api/trips route and puts the owner id in
	// the request context.
	Auth func(http.Handler) http.Handler
	// Idempotency guards POST /api/trips/{id}/book.
	Idempotency func(http.Handler) http.Handler
}

// Routes returns the chi router serving the whole API. Global middleware
// (request id, logging, CORS, body limit) is added by the caller.
func (s *Server) Routes(opts RouteOptions) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/api", func(r chi.Router) {
		r.Post("/search/flights", s.SearchFlights)
		r.Post("/hotels/search", s.SearchHotels)
		r.Get("/search/activities", s.SearchActivities)
		r.Get("/lookups/currency", s.LookupCurrency)
		r.Get("/lookups/visa", s.LookupVisa)

		r.Route("/trips", func(r chi.Router) {
			r.Use(optional(opts.Auth))
			r.Post("/", s.CreateTrip)
			r.Get("/", s.ListTrips)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.GetTrip)
				r.Put("/", s.UpdateTrip)
				r.Post("/actions", s.ApplyAction)
				r.Get("/cost", s.GetCost)
				r.Get("/export", s.ExportTrip)
				r.With(optional(opts.Idempotency)).Post("/book", s.BookTrip)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
	return r
}

func optional(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if mw == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return mw
}
