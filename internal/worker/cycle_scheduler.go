package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hibiken/asynq"

	"dealradar/internal/transport/tasks"
	"dealradar/pkg/contextx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const defaultInterval = time.Hour

type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// CycleScheduler периодически ставит в очередь задачу на цикл поиска.
// Дневную квоту контролирует сам цикл, планировщик её не проверяет.
type CycleScheduler struct {
	enqueuer taskEnqueuer
	interval time.Duration

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	isRunning  bool
	wg         sync.WaitGroup
}

func NewCycleScheduler(enqueuer taskEnqueuer) *CycleScheduler {
	return &CycleScheduler{
		enqueuer: enqueuer,
		interval: defaultInterval,
	}
}

func (w *CycleScheduler) WithInterval(interval time.Duration) *CycleScheduler {
	if interval > 0 {
		w.interval = interval
	}
	return w
}

func (w *CycleScheduler) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return errors.New("scheduler is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel
	w.isRunning = true

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() {
			w.mu.Lock()
			w.isRunning = false
			w.cancelFunc = nil
			w.mu.Unlock()
		}()

		if err := w.run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger(runCtx).Error("scheduler stopped with error", "error", err)
		}
	}()

	return nil
}

func (w *CycleScheduler) Stop() {
	w.mu.Lock()

	if !w.isRunning {
		w.mu.Unlock()
		return
	}

	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	w.mu.Unlock()

	w.wg.Wait()
}

func (w *CycleScheduler) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.isRunning
}

func (w *CycleScheduler) run(ctx context.Context) error {
	logger(ctx).Info("cycle scheduler started", "interval", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger(ctx).Info("cycle scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			w.enqueueCycle(ctx)
		}
	}
}

func (w *CycleScheduler) enqueueCycle(ctx context.Context) {
	info, err := w.enqueuer.EnqueueContext(ctx, tasks.NewDiscoveryCycleTask())
	if err != nil {
		logger(ctx).Error("failed to enqueue cycle", "error", err)
		return
	}

	logger(ctx).Debug("cycle enqueued", "task_id", info.ID)
}
