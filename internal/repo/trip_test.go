package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripwizard/internal/domain"
	"github.com/pkordes/tripwizard/internal/repo"
	"github.com/pkordes/tripwizard/testutil"
)

const testOwner = "user-1"

// newTestTx opens a transaction against the test database. The transaction is
// rolled back when the test finishes, giving free per-test isolation.
func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})
	return tx
}

// tripFixture returns a draft with sensible defaults. Callers override fields
// after calling it.
func tripFixture() domain.Trip {
	return domain.Trip{
		OwnerID:      testOwner,
		Title:        "Japan Trip",
		Destinations: "Tokyo;;Kyoto;;Osaka",
		StartDate:    time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
		BudgetAmount: 5000,
		Currency:     "USD",
		Travelers:    2,
		Status:       domain.TripDraft,
	}
}

func TestTripRepo_Create(t *testing.T) {
	r := repo.NewTripRepo(newTestTx(t))
	ctx := context.Background()

	input := tripFixture()
	got, err := r.Create(ctx, input)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID, "ID should be DB-generated")
	assert.Equal(t, input.Title, got.Title)
	assert.Equal(t, input.Destinations, got.Destinations)
	assert.True(t, got.StartDate.Equal(input.StartDate), "StartDate mismatch")
	assert.True(t, got.EndDate.Equal(input.EndDate), "EndDate mismatch")
	assert.Equal(t, 5000.0, got.BudgetAmount)
	assert.Equal(t, 1, got.Version)
	assert.Equal(t, domain.TripDraft, got.Status)
	assert.False(t, got.CreatedAt.IsZero(), "CreatedAt should be set by DB")
}

func TestTripRepo_Create_NoDates(t *testing.T) {
	r := repo.NewTripRepo(newTestTx(t))

	input := tripFixture()
	input.StartDate = time.Time{}
	input.EndDate = time.Time{}

	got, err := r.Create(context.Background(), input)

	require.NoError(t, err)
	assert.True(t, got.StartDate.IsZero())
	assert.True(t, got.EndDate.IsZero())
}

func TestTripRepo_GetByID_OtherOwnerIsNotFound(t *testing.T) {
	r := repo.NewTripRepo(newTestTx(t))
	ctx := context.Background()

	created, err := r.Create(ctx, tripFixture())
	require.NoError(t, err)

	_, err = r.GetByID(ctx, "someone-else", created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := r.GetByID(ctx, testOwner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestTripRepo_ListPaged(t *testing.T) {
	r := repo.NewTripRepo(newTestTx(t))
	ctx := context.Background()

	for _, title := range []string{"A", "B", "C"} {
		in := tripFixture()
		in.Title = title
		_, err := r.Create(ctx, in)
		require.NoError(t, err)
	}

	page, total, err := r.ListPaged(ctx, testOwner, domain.PaginationParams{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 2)

	page, _, err = r.ListPaged(ctx, testOwner, domain.PaginationParams{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestTripRepo_Update_IncrementsVersion(t *testing.T) {
	r := repo.NewTripRepo(newTestTx(t))
	ctx := context.Background()

	created, err := r.Create(ctx, tripFixture())
	require.NoError(t, err)

	created.Title = "Japan in spring"
	updated, err := r.Update(ctx, created)

	require.NoError(t, err)
	assert.Equal(t, "Japan in spring", updated.Title)
	assert.Equal(t, 2, updated.Version)
}

func TestTripRepo_Update_StaleVersion(t *testing.T) {
	r := repo.NewTripRepo(newTestTx(t))
	ctx := context.Background()

	created, err := r.Create(ctx, tripFixture())
	require.NoError(t, err)
	_, err = r.Update(ctx, created)
	require.NoError(t, err)

	// Second save still carries version 1.
	_, err = r.Update(ctx, created)
	assert.ErrorIs(t, err, domain.ErrStaleDraft)
}

func TestTripRepo_Update_NotFound(t *testing.T) {
	r := repo.NewTripRepo(newTestTx(t))

	missing := tripFixture()
	missing.ID = uuid.New()
	missing.Version = 1

	_, err := r.Update(context.Background(), missing)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
