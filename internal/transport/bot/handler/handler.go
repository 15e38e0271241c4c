package handler

import (
	"context"

	"dealradar/internal/domain/entity"
	"dealradar/internal/domain/service/discovery"
	"dealradar/internal/domain/service/quota"
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
}

type Handler struct {
	discoveryService discoveryService
	quotaService     quotaService
	dealStore        dealStore
}

func New(
	discoveryService discoveryService,
	quotaService quotaService,
	dealStore dealStore,
) *Handler {
	return &Handler{
		discoveryService: discoveryService,
		quotaService:     quotaService,
		dealStore:        dealStore,
	}
}
