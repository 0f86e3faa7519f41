package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// NewRelic returns a middleware that records every request as a New Relic
// web transaction. The transaction is stored in the request context so
// datastore segments, such as the Redis hook, attach to it. A nil app
// disables instrumentation.
func NewRelic(app *newrelic.Application) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if app == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			txn := app.StartTransaction(r.Method + " " + r.URL.Path)
			defer txn.End()

			txn.SetWebRequestHTTP(r)
			w = txn.SetWebResponse(w)
			r = newrelic.RequestWithTransactionContext(r, txn)

			next.ServeHTTP(w, r)

			// The route pattern is only known once chi has matched it.
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				txn.SetName(r.Method + " " + rc.RoutePattern())
			}
		})
	}
}
