package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"dealradar/internal/domain/entity"
	"dealradar/internal/domain/service/discovery"
	"dealradar/internal/domain/service/quota"
	"dealradar/pkg/rest"
	"dealradar/pkg/tests"
)

type stubDiscovery struct {
	result discovery.CycleResult
	err    error
}

func (s stubDiscovery) RunCycle(context.Context) (discovery.CycleResult, error) {
	return s.result, s.err
}

type stubQuota struct {
	decision quota.Decision
	limit    int
}

func (s stubQuota) Remaining(context.Context) (quota.Decision, error) {
	return s.decision, nil
}

func (s stubQuota) Limit() int { return s.limit }

type stubDealStore struct {
	memory   entity.Memory
	trimKeep int
}

func (s *stubDealStore) Load(context.Context) (entity.Memory, error) {
	return s.memory, nil
}

func (s *stubDealStore) Trim(_ context.Context, keep int) (entity.Memory, error) {
	s.trimKeep = keep
	trimmed := s.memory.Clone()
	trimmed.Trim(keep)
	s.memory = trimmed
	return trimmed, nil
}

func newTestAPI(
	t *testing.T,
	discoveryService discoveryService,
	quotaService quotaService,
	store dealStore,
) tests.APIClient {
	t.Helper()

	router := chi.NewRouter()
	NewServer(NewDiscoveryServer(discoveryService, quotaService, store)).RegisterRoutes(router)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return tests.NewAPIClient(srv.URL, srv.Client())
}

func someOpportunity(id string, discount float64) entity.Opportunity {
	return entity.Opportunity{
		Deal: entity.Deal{
			ID:        id,
			Title:     "Widget " + id,
			Price:     10,
			URL:       "https://x.example/" + id,
			FetchedAt: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		},
		Estimate: entity.PriceEstimate{Value: 10 + discount},
		Discount: discount,
		AddedAt:  time.Date(2026, 3, 14, 12, 0, 1, 0, time.UTC),
	}
}

func TestServer_PostV1Cycles(t *testing.T) {
	t.Run("completed cycle", func(t *testing.T) {
		rq := require.New(t)

		api := newTestAPI(t,
			stubDiscovery{result: discovery.CycleResult{
				Outcome:       discovery.OutcomeCompleted,
				Opportunities: []entity.Opportunity{someOpportunity("a", 60)},
				Attempted:     2,
				Skipped:       1,
			}},
			stubQuota{limit: 20},
			&stubDealStore{memory: entity.NewMemory()},
		)

		var result rest.CycleResult
		resp, err := api.Post(context.Background(), "/v1/cycles", nil, nil, &result, nil)
		rq.NoError(err)

		rq.Equal(http.StatusOK, resp.StatusCode)
		rq.Equal("completed", result.Outcome)
		rq.Len(result.Opportunities, 1)
		rq.InDelta(60.0, result.Opportunities[0].Discount, 1e-9)
		rq.Equal(2, result.Attempted)
		rq.Nil(result.NextResetAt)
	})

	t.Run("quota exceeded maps to 429", func(t *testing.T) {
		rq := require.New(t)

		resetAt := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
		api := newTestAPI(t,
			stubDiscovery{result: discovery.CycleResult{
				Outcome:     discovery.OutcomeQuotaExceeded,
				NextResetAt: resetAt,
			}},
			stubQuota{limit: 20},
			&stubDealStore{memory: entity.NewMemory()},
		)

		var result rest.CycleResult
		resp, err := api.Post(context.Background(), "/v1/cycles", nil, nil, nil, &result)
		rq.NoError(err)

		rq.Equal(http.StatusTooManyRequests, resp.StatusCode)
		rq.Equal("quota_exceeded", result.Outcome)
		rq.NotNil(result.NextResetAt)
		rq.Equal(resetAt.Format(time.RFC3339), *result.NextResetAt)
	})
}

func TestServer_GetV1Quota(t *testing.T) {
	rq := require.New(t)

	resetAt := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	api := newTestAPI(t,
		stubDiscovery{},
		stubQuota{
			decision: quota.Decision{Allowed: true, Used: 3, Remaining: 17, NextResetAt: resetAt},
			limit:    20,
		},
		&stubDealStore{memory: entity.NewMemory()},
	)

	var result rest.Quota
	resp, err := api.Get(context.Background(), "/v1/quota", nil, &result, nil)
	rq.NoError(err)

	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Equal(20, result.Limit)
	rq.Equal(3, result.Used)
	rq.Equal(17, result.Remaining)
	rq.Equal(resetAt.Format(time.RFC3339), result.ResetsAt)
}

func TestServer_Opportunities(t *testing.T) {
	newStore := func() *stubDealStore {
		memory := entity.NewMemory()
		memory.Prepend(
			someOpportunity("b", 70),
			someOpportunity("a", 60),
		)
		return &stubDealStore{memory: memory}
	}

	t.Run("list is most recent first", func(t *testing.T) {
		rq := require.New(t)

		api := newTestAPI(t, stubDiscovery{}, stubQuota{limit: 20}, newStore())

		var result rest.Opportunities
		resp, err := api.Get(context.Background(), "/v1/opportunities", nil, &result, nil)
		rq.NoError(err)

		rq.Equal(http.StatusOK, resp.StatusCode)
		rq.Len(result.Items, 2)
		rq.Equal("b", result.Items[0].Deal.ID)
		rq.Equal("a", result.Items[1].Deal.ID)
	})

	t.Run("trim keeps the newest", func(t *testing.T) {
		rq := require.New(t)

		store := newStore()
		api := newTestAPI(t, stubDiscovery{}, stubQuota{limit: 20}, store)

		var result rest.Opportunities
		resp, err := api.Delete(context.Background(), "/v1/opportunities?keep=1", nil, &result, nil)
		rq.NoError(err)

		rq.Equal(http.StatusOK, resp.StatusCode)
		rq.Equal(1, store.trimKeep)
		rq.Len(result.Items, 1)
		rq.Equal("b", result.Items[0].Deal.ID)
	})

	t.Run("negative keep is rejected", func(t *testing.T) {
		rq := require.New(t)

		api := newTestAPI(t, stubDiscovery{}, stubQuota{limit: 20}, newStore())

		var errResult rest.Error
		resp, err := api.Delete(context.Background(), "/v1/opportunities?keep=-1", nil, nil, &errResult)
		rq.NoError(err)

		rq.Equal(http.StatusBadRequest, resp.StatusCode)
	})
}
