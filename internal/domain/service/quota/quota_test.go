package quota

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dealradar/internal/infrastructure/kv"
)

func testLimiter(t *testing.T, limit int) (*Limiter, *kv.FileStore) {
	t.Helper()

	store, err := kv.NewFileStore(t.TempDir())
	require.NoError(t, err)

	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	return NewLimiter(store, limit, loc), store
}

func TestTryAcquireCountsUpToLimit(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	limiter, _ := testLimiter(t, 3)

	for i := 1; i <= 3; i++ {
		decision, err := limiter.TryAcquire(ctx)
		rq.NoError(err)
		rq.True(decision.Allowed)
		rq.Equal(i, decision.Used)
		rq.Equal(3-i, decision.Remaining)
	}

	decision, err := limiter.TryAcquire(ctx)
	rq.NoError(err)
	rq.False(decision.Allowed)
	rq.Equal(3, decision.Used)
	rq.Zero(decision.Remaining)
}

func TestDeniedCarriesNextMidnightInReferenceTimezone(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	limiter, store := testLimiter(t, 20)

	frozen := time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)
	limiter.now = func() time.Time { return frozen }

	today := frozen.In(limiter.location).Format(dateLayout)
	state := fmt.Sprintf(`{"date":%q,"run_count":20,"last_updated":""}`, today)
	rq.NoError(store.CompareAndSwap(ctx, stateKey, nil, []byte(state)))

	decision, err := limiter.TryAcquire(ctx)
	rq.NoError(err)
	rq.False(decision.Allowed)

	wantReset := time.Date(2026, 3, 16, 0, 0, 0, 0, limiter.location)
	// 18:30 UTC is already past midnight of the 15th in Asia/Kolkata.
	rq.True(decision.NextResetAt.Equal(wantReset), "got %s", decision.NextResetAt)
	rq.Zero(decision.NextResetAt.Hour())
}

func TestDayRolloverResetsCount(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	limiter, _ := testLimiter(t, 2)

	day := time.Date(2026, 3, 14, 10, 0, 0, 0, limiter.location)
	limiter.now = func() time.Time { return day }

	for i := 0; i < 2; i++ {
		decision, err := limiter.TryAcquire(ctx)
		rq.NoError(err)
		rq.True(decision.Allowed)
	}

	decision, err := limiter.TryAcquire(ctx)
	rq.NoError(err)
	rq.False(decision.Allowed, "budget for the day is spent")

	limiter.now = func() time.Time { return day.AddDate(0, 0, 1) }

	decision, err = limiter.TryAcquire(ctx)
	rq.NoError(err)
	rq.True(decision.Allowed)
	rq.Equal(1, decision.Used, "rollover resets the count to 1 on first acquire")
}

func TestCorruptStateCountsFromZero(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	limiter, store := testLimiter(t, 2)

	rq.NoError(store.CompareAndSwap(ctx, stateKey, nil, []byte("{not json")))

	decision, err := limiter.TryAcquire(ctx)
	rq.NoError(err)
	rq.True(decision.Allowed)
	rq.Equal(1, decision.Used)
}

func TestRemainingDoesNotConsume(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	limiter, _ := testLimiter(t, 5)

	_, err := limiter.TryAcquire(ctx)
	rq.NoError(err)

	for i := 0; i < 3; i++ {
		decision, err := limiter.Remaining(ctx)
		rq.NoError(err)
		rq.True(decision.Allowed)
		rq.Equal(1, decision.Used)
		rq.Equal(4, decision.Remaining)
	}
}

// conflictOnce injects a single CAS conflict, as if another trigger raced the
// read-modify-write window.
type conflictOnce struct {
	kv.Store
	fired bool
}

func (c *conflictOnce) CompareAndSwap(ctx context.Context, key string, expected, next []byte) error {
	if !c.fired {
		c.fired = true
		return kv.ErrConflict
	}

	return c.Store.CompareAndSwap(ctx, key, expected, next)
}

func TestTryAcquireRetriesOnConflict(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	fileStore, err := kv.NewFileStore(t.TempDir())
	rq.NoError(err)

	loc, err := time.LoadLocation("Asia/Kolkata")
	rq.NoError(err)

	limiter := NewLimiter(&conflictOnce{Store: fileStore}, 5, loc)

	decision, err := limiter.TryAcquire(ctx)
	rq.NoError(err)
	rq.True(decision.Allowed)
	rq.Equal(1, decision.Used)
}
