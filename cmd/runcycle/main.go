// Одноразовый прогон цикла поиска сделок:
//
//	go run cmd/runcycle/main.go
//
// Квота расходуется так же, как при запуске через сервис.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"dealradar/internal/application"
	"dealradar/internal/config"
	"dealradar/internal/domain/service/discovery"
	"dealradar/pkg/contextx"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{ //nolint:exhaustruct
		Level:      slog.LevelInfo,
		TimeFormat: time.TimeOnly,
	}))
	slog.SetDefault(log)

	ctx = contextx.WithLogger(ctx, log)

	if err := run(ctx); err != nil {
		log.Error("run cycle failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	components, err := application.Build(ctx, cfg)
	if err != nil {
		return fmt.Errorf("application.Build: %w", err)
	}
	defer components.Close(ctx)

	result, err := components.Discovery.RunCycle(ctx)
	if err != nil {
		return fmt.Errorf("RunCycle: %w", err)
	}

	printResult(result)

	return nil
}

func printResult(result discovery.CycleResult) {
	if result.Outcome == discovery.OutcomeQuotaExceeded {
		fmt.Printf("quota exhausted, resets at %s\n",
			result.NextResetAt.Format(time.RFC1123))
		return
	}

	fmt.Printf("cycle %s: %d candidate(s), %d skipped, %d failed\n",
		result.Outcome, result.Attempted, result.Skipped, result.Failed)

	for _, opportunity := range result.Opportunities {
		confidence := ""
		if opportunity.Estimate.Degraded {
			confidence = " (degraded estimate)"
		}

		fmt.Printf("  %-40s price %8.2f  estimated %8.2f  discount %8.2f%s\n",
			opportunity.Deal.Title,
			opportunity.Deal.Price,
			opportunity.Estimate.Value,
			opportunity.Discount,
			confidence,
		)
	}

	for _, warning := range result.Warnings {
		fmt.Printf("  warning: %s\n", warning)
	}
}
