package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
)

const (
	// IdempotencyHeader carries the client-chosen key of a retryable request.
	IdempotencyHeader = "Idempotency-Key"
	// IdempotentReplayHeader is set to "true" on a response served from the store.
	IdempotentReplayHeader = "Idempotent-Replayed"

	idempotencyTTL = 24 * time.Hour
	// idempotencyPendingTTL bounds how long a crashed request holds its key.
	idempotencyPendingTTL = time.Minute
)

type storedResponse struct {
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
}

// pending reports whether this is the reservation marker of a request that
// has not finished. Stored responses always carry a status.
func (r storedResponse) pending() bool { return r.StatusCode == 0 }

// NewIdempotencyHandler returns a middleware that replays the stored
// response of a mutating request retried with the same Idempotency-Key.
// Keys are scoped to the authenticated owner and the request path, and kept
// for 24 hours. The key is reserved before the handler runs, so a duplicate
// arriving while the first request is in flight gets 409
// idempotency_in_progress instead of running twice. Server errors release
// the key, so they can be retried. A nil client, or a Redis failure, lets
// requests through unprotected.
func NewIdempotencyHandler(client redis.Cmdable, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if client == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyHeader)
			if key == "" || (r.Method != http.MethodPost && r.Method != http.MethodPut) {
				next.ServeHTTP(w, r)
				return
			}
			owner, _ := OwnerFromContext(r.Context())
			storeKey := "idempotency:" + owner + ":" + r.URL.Path + ":" + key
			ctx := r.Context()

			reserved, err := reserve(ctx, client, storeKey)
			if err != nil {
				log.WarnContext(ctx, "idempotency reserve failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !reserved {
				replay(ctx, w, client, storeKey, log)
				return
			}

			var buf bytes.Buffer
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&buf)

			next.ServeHTTP(ww, r)

			// The request context may already be cancelled once the client
			// has its response; the store update must still happen.
			storeCtx := context.WithoutCancel(ctx)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if status >= http.StatusInternalServerError {
				if err := client.Del(storeCtx, storeKey).Err(); err != nil {
					log.WarnContext(ctx, "idempotency release failed", "error", err)
				}
				return
			}
			resp := storedResponse{StatusCode: status, ContentType: ww.Header().Get("Content-Type"), Body: buf.Bytes()}
			if err := saveResponse(storeCtx, client, storeKey, resp); err != nil {
				log.WarnContext(ctx, "idempotency store failed", "error", err)
			}
		})
	}
}

// reserve claims key with a pending marker. It reports false when the key
// is already held by a finished or in-flight request.
func reserve(ctx context.Context, client redis.Cmdable, key string) (bool, error) {
	data, err := json.Marshal(storedResponse{})
	if err != nil {
		return false, err
	}
	return client.SetNX(ctx, key, data, idempotencyPendingTTL).Result()
}

// replay writes the stored response for key, or 409 while the request
// holding it has not finished.
func replay(ctx context.Context, w http.ResponseWriter, client redis.Cmdable, key string, log *slog.Logger) {
	stored, err := loadResponse(ctx, client, key)
	switch {
	case errors.Is(err, redis.Nil) || (err == nil && stored.pending()):
		// redis.Nil: the holder failed and released the key after our SetNX.
		writeError(w, http.StatusConflict, "idempotency_in_progress",
			"a request with this Idempotency-Key is still being processed; retry later")
		return
	case err != nil:
		log.WarnContext(ctx, "idempotency lookup failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "idempotency_unavailable",
			"could not read the stored response; retry later")
		return
	}
	if stored.ContentType != "" {
		w.Header().Set("Content-Type", stored.ContentType)
	}
	w.Header().Set(IdempotentReplayHeader, "true")
	w.WriteHeader(stored.StatusCode)
	_, _ = w.Write(stored.Body)
}

func loadResponse(ctx context.Context, client redis.Cmdable, key string) (storedResponse, error) {
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return storedResponse{}, err
	}
	var resp storedResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return storedResponse{}, err
	}
	return resp, nil
}

func saveResponse(ctx context.Context, client redis.Cmdable, key string, resp storedResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, data, idempotencyTTL).Err()
}
