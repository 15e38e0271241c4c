package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"

	"dealradar/internal/domain"
	"dealradar/internal/infrastructure/kv"
	"dealradar/pkg/contextx"
	"dealradar/pkg/errcodes"
	"dealradar/pkg/logx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const (
	stateKey   = "quota"
	dateLayout = "2006-01-02"

	// casAttempts bounds the retry loop under contention; each retry rereads
	// fresh state so losing the race never double-spends the quota.
	casAttempts = 5
)

type stateDTO struct {
	Date        string `json:"date"`
	RunCount    int    `json:"run_count"`
	LastUpdated string `json:"last_updated"`
}

// Decision is the outcome of a quota check.
type Decision struct {
	Allowed     bool
	Used        int
	Remaining   int
	NextResetAt time.Time
}

// Limiter tracks the daily run budget against a backing store. The calendar
// day is defined in a fixed reference timezone; a stored date behind today
// means the counter reads as zero.
type Limiter struct {
	store    kv.Store
	limit    int
	location *time.Location

	now func() time.Time
}

func NewLimiter(store kv.Store, limit int, location *time.Location) *Limiter {
	return &Limiter{
		store:    store,
		limit:    limit,
		location: location,
		now:      time.Now,
	}
}

// TryAcquire spends one run from today's budget. The read-modify-write is a
// compare-and-swap on the backing store: two concurrent callers at the
// boundary cannot both observe the same count and both succeed.
func (l *Limiter) TryAcquire(ctx context.Context) (Decision, error) {
	for attempt := 0; attempt < casAttempts; attempt++ {
		raw, state, err := l.read(ctx)
		if err != nil {
			return Decision{}, err
		}

		if state.RunCount >= l.limit {
			return l.denied(state), nil
		}

		next := stateDTO{
			Date:        state.Date,
			RunCount:    state.RunCount + 1,
			LastUpdated: l.now().In(l.location).Format(time.RFC3339),
		}

		nextRaw, err := json.Marshal(next)
		if err != nil {
			return Decision{}, fmt.Errorf("json.Marshal: %w", err)
		}

		err = l.store.CompareAndSwap(ctx, stateKey, raw, nextRaw)
		if err == nil {
			return Decision{
				Allowed:     true,
				Used:        next.RunCount,
				Remaining:   l.limit - next.RunCount,
				NextResetAt: l.nextReset(),
			}, nil
		}

		if errors.Is(err, kv.ErrConflict) {
			continue
		}

		return Decision{}, fmt.Errorf("store.CompareAndSwap: %w", err)
	}

	return Decision{}, domain.NewError(errcodes.PersistenceConflict, "quota state is contended")
}

// Remaining reports today's budget without consuming a run.
func (l *Limiter) Remaining(ctx context.Context) (Decision, error) {
	_, state, err := l.read(ctx)
	if err != nil {
		return Decision{}, err
	}

	if state.RunCount >= l.limit {
		return l.denied(state), nil
	}

	return Decision{
		Allowed:     true,
		Used:        state.RunCount,
		Remaining:   l.limit - state.RunCount,
		NextResetAt: l.nextReset(),
	}, nil
}

func (l *Limiter) Limit() int {
	return l.limit
}

// read returns the raw stored bytes (nil when absent, for the CAS) and the
// effective state for today. A stored date that is not today is stale: the
// rollover implicitly resets the count.
func (l *Limiter) read(ctx context.Context) ([]byte, stateDTO, error) {
	today := l.now().In(l.location).Format(dateLayout)

	raw, err := l.store.Get(ctx, stateKey)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, stateDTO{Date: today}, nil //nolint:exhaustruct
		}

		return nil, stateDTO{}, fmt.Errorf("store.Get: %w", err)
	}

	var state stateDTO
	if err := json.Unmarshal(raw, &state); err != nil {
		logger(ctx).Warn("quota state is corrupt, counting from zero", logx.Error(err))

		return raw, stateDTO{Date: today}, nil //nolint:exhaustruct
	}

	if state.Date != today {
		return raw, stateDTO{Date: today}, nil //nolint:exhaustruct
	}

	if state.RunCount > l.limit {
		state.RunCount = l.limit
	}

	return raw, state, nil
}

func (l *Limiter) denied(state stateDTO) Decision {
	return Decision{
		Allowed:     false,
		Used:        state.RunCount,
		Remaining:   0,
		NextResetAt: l.nextReset(),
	}
}

// nextReset is midnight of tomorrow in the reference timezone.
func (l *Limiter) nextReset() time.Time {
	now := l.now().In(l.location)

	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, l.location)
}
