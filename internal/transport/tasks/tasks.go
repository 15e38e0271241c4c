package tasks

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"dealradar/internal/domain/service/discovery"
	"dealradar/pkg/contextx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const (
	// TypeDiscoveryCycle — задача на прогон одного цикла поиска сделок.
	TypeDiscoveryCycle = "discovery:cycle"

	QueueDefault = "default"
)

type discoveryService interface {
	RunCycle(ctx context.Context) (discovery.CycleResult, error)
}

type Handler struct {
	discoveryService discoveryService
}

func NewHandler(discoveryService discoveryService) *Handler {
	return &Handler{
		discoveryService: discoveryService,
	}
}

func NewDiscoveryCycleTask() *asynq.Task {
	return asynq.NewTask(TypeDiscoveryCycle, nil, asynq.Queue(QueueDefault))
}

// HandleDiscoveryCycle прогоняет цикл. Исчерпанная квота — штатный итог,
// не повод для ретрая.
func (h *Handler) HandleDiscoveryCycle(ctx context.Context, _ *asynq.Task) error {
	result, err := h.discoveryService.RunCycle(ctx)
	if err != nil {
		return fmt.Errorf("discoveryService.RunCycle: %w", err)
	}

	if result.Outcome == discovery.OutcomeQuotaExceeded {
		logger(ctx).Info("scheduled cycle skipped: quota exhausted",
			"next_reset_at", result.NextResetAt,
		)
		return nil
	}

	logger(ctx).Info("scheduled cycle finished",
		"opportunities", len(result.Opportunities),
		"attempted", result.Attempted,
		"failed", result.Failed,
	)

	return nil
}
