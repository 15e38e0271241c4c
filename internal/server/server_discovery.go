package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"git.appkode.ru/pub/go/failure"

	"dealradar/internal/domain/entity"
	"dealradar/internal/domain/service/discovery"
	"dealradar/internal/domain/service/quota"
	"dealradar/pkg/errcodes"
	"dealradar/pkg/httpx/reply"
)

type discoveryService interface {
	RunCycle(ctx context.Context) (discovery.CycleResult, error)
}

type quotaService interface {
	Remaining(ctx context.Context) (quota.Decision, error)
	Limit() int
}

type dealStore interface {
	Load(ctx context.Context) (entity.Memory, error)
	Trim(ctx context.Context, keep int) (entity.Memory, error)
}

type DiscoveryServer struct {
	discoveryService discoveryService
	quotaService     quotaService
	dealStore        dealStore
}

func NewDiscoveryServer(
	discoveryService discoveryService,
	quotaService quotaService,
	dealStore dealStore,
) DiscoveryServer {
	return DiscoveryServer{
		discoveryService: discoveryService,
		quotaService:     quotaService,
		dealStore:        dealStore,
	}
}

func (s DiscoveryServer) postV1Cycles(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	result, err := s.discoveryService.RunCycle(ctx)
	if err != nil {
		return fmt.Errorf("discoveryService.RunCycle: %w", err)
	}

	status := http.StatusOK
	if result.Outcome == discovery.OutcomeQuotaExceeded {
		status = http.StatusTooManyRequests
	}

	reply.JSON(ctx, w, status, newRESTCycleResult(result))

	return nil
}

func (s DiscoveryServer) getV1Quota(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	decision, err := s.quotaService.Remaining(ctx)
	if err != nil {
		return fmt.Errorf("quotaService.Remaining: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTQuota(decision, s.quotaService.Limit()))

	return nil
}

func (s DiscoveryServer) getV1Opportunities(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	memory, err := s.dealStore.Load(ctx)
	if err != nil {
		return fmt.Errorf("dealStore.Load: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTOpportunities(memory.Opportunities))

	return nil
}

func (s DiscoveryServer) deleteV1Opportunities(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	keep, err := strconv.Atoi(r.URL.Query().Get("keep"))
	if err != nil || keep < 0 {
		return failure.NewInvalidArgumentError(
			"keep must be a non-negative integer",
			failure.WithCode(errcodes.InvalidKeepCount),
		)
	}

	memory, err := s.dealStore.Trim(ctx, keep)
	if err != nil {
		return fmt.Errorf("dealStore.Trim: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTOpportunities(memory.Opportunities))

	return nil
}
