package middleware_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripwizard/internal/middleware"
	"github.com/pkordes/tripwizard/testutil"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// countingHandler returns 201 with the call number, so a replay is visible.
func countingHandler(calls *int, status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"call":` + strconv.Itoa(*calls) + `}`))
	})
}

func postWithKey(h http.Handler, owner, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	if key != "" {
		req.Header.Set(middleware.IdempotencyHeader, key)
	}
	req = req.WithContext(middleware.WithOwner(req.Context(), owner))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIdempotencyHandler_NilClientPassesThrough(t *testing.T) {
	calls := 0
	h := middleware.NewIdempotencyHandler(nil, discard)(countingHandler(&calls, http.StatusCreated))

	postWithKey(h, "user-1", "/api/trips/1/book", "k")
	postWithKey(h, "user-1", "/api/trips/1/book", "k")

	assert.Equal(t, 2, calls)
}

func TestIdempotencyHandler_ReplaysStoredResponse(t *testing.T) {
	client := testutil.NewRedis(t)
	calls := 0
	h := middleware.NewIdempotencyHandler(client, discard)(countingHandler(&calls, http.StatusCreated))
	key := uuid.NewString()

	first := postWithKey(h, "user-1", "/api/trips/1/book", key)
	second := postWithKey(h, "user-1", "/api/trips/1/book", key)

	require.Equal(t, 1, calls)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "application/json", second.Header().Get("Content-Type"))
	assert.Equal(t, "true", second.Header().Get(middleware.IdempotentReplayHeader))
	assert.Empty(t, first.Header().Get(middleware.IdempotentReplayHeader))
}

func TestIdempotencyHandler_KeysAreScoped(t *testing.T) {
	client := testutil.NewRedis(t)
	calls := 0
	h := middleware.NewIdempotencyHandler(client, discard)(countingHandler(&calls, http.StatusOK))
	key := uuid.NewString()

	postWithKey(h, "user-1", "/api/trips/1/book", key)
	postWithKey(h, "user-2", "/api/trips/1/book", key)
	postWithKey(h, "user-1", "/api/trips/2/book", key)
	postWithKey(h, "user-1", "/api/trips/1/book", "")

	assert.Equal(t, 4, calls)
}

func TestIdempotencyHandler_ServerErrorsAreNotStored(t *testing.T) {
	client := testutil.NewRedis(t)
	calls := 0
	h := middleware.NewIdempotencyHandler(client, discard)(countingHandler(&calls, http.StatusBadGateway))
	key := uuid.NewString()

	postWithKey(h, "user-1", "/api/trips/1/book", key)
	postWithKey(h, "user-1", "/api/trips/1/book", key)

	assert.Equal(t, 2, calls)
}

func TestIdempotencyHandler_ConcurrentDuplicateIsRejected(t *testing.T) {
	client := testutil.NewRedis(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	h := middleware.NewIdempotencyHandler(client, discard)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		close(entered)
		<-release
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"booked":true}`))
	}))
	key := uuid.NewString()

	firstDone := make(chan *httptest.ResponseRecorder)
	go func() { firstDone <- postWithKey(h, "user-1", "/api/trips/1/book", key) }()
	<-entered

	dup := postWithKey(h, "user-1", "/api/trips/1/book", key)
	assert.Equal(t, http.StatusConflict, dup.Code)
	assert.Contains(t, dup.Body.String(), "idempotency_in_progress")

	close(release)
	first := <-firstDone
	require.Equal(t, http.StatusCreated, first.Code)

	retry := postWithKey(h, "user-1", "/api/trips/1/book", key)
	assert.Equal(t, http.StatusCreated, retry.Code)
	assert.Equal(t, `{"booked":true}`, retry.Body.String())
	assert.Equal(t, "true", retry.Header().Get(middleware.IdempotentReplayHeader))
	assert.Equal(t, int32(1), calls.Load())
}

func TestIdempotencyHandler_ServerErrorReleasesKey(t *testing.T) {
	client := testutil.NewRedis(t)
	status := http.StatusBadGateway
	calls := 0
	h := middleware.NewIdempotencyHandler(client, discard)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		countingHandler(&calls, status).ServeHTTP(w, r)
	}))
	key := uuid.NewString()

	failed := postWithKey(h, "user-1", "/api/trips/1/book", key)
	require.Equal(t, http.StatusBadGateway, failed.Code)

	status = http.StatusCreated
	ok := postWithKey(h, "user-1", "/api/trips/1/book", key)
	replayed := postWithKey(h, "user-1", "/api/trips/1/book", key)

	assert.Equal(t, http.StatusCreated, ok.Code)
	assert.Empty(t, ok.Header().Get(middleware.IdempotentReplayHeader))
	assert.Equal(t, "true", replayed.Header().Get(middleware.IdempotentReplayHeader))
	assert.Equal(t, 2, calls)
}
