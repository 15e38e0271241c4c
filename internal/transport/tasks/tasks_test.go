package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"dealradar/internal/domain/service/discovery"
)

type stubDiscovery struct {
	result discovery.CycleResult
	err    error
	calls  int
}

func (s *stubDiscovery) RunCycle(context.Context) (discovery.CycleResult, error) {
	s.calls++
	return s.result, s.err
}

func TestHandler_HandleDiscoveryCycle(t *testing.T) {
	t.Run("completed cycle", func(t *testing.T) {
		rq := require.New(t)

		svc := &stubDiscovery{result: discovery.CycleResult{Outcome: discovery.OutcomeCompleted}}
		h := NewHandler(svc)

		err := h.HandleDiscoveryCycle(context.Background(), NewDiscoveryCycleTask())
		rq.NoError(err)
		rq.Equal(1, svc.calls)
	})

	t.Run("quota exhaustion is not retried", func(t *testing.T) {
		rq := require.New(t)

		svc := &stubDiscovery{result: discovery.CycleResult{Outcome: discovery.OutcomeQuotaExceeded}}
		h := NewHandler(svc)

		err := h.HandleDiscoveryCycle(context.Background(), NewDiscoveryCycleTask())
		rq.NoError(err)
	})

	t.Run("cycle error propagates for retry", func(t *testing.T) {
		rq := require.New(t)

		svc := &stubDiscovery{err: errors.New("upstream down")}
		h := NewHandler(svc)

		err := h.HandleDiscoveryCycle(context.Background(), NewDiscoveryCycleTask())
		rq.Error(err)
	})
}
