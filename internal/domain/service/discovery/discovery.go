package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rs/xid"
	"golang.org/x/sync/errgroup"

	"dealradar/internal/domain"
	"dealradar/internal/domain/entity"
	"dealradar/internal/domain/service/quota"
	"dealradar/pkg/contextx"
	"dealradar/pkg/errcodes"
	"dealradar/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const (
	defaultThreshold   = 50.0
	defaultFanOutWidth = 5
	defaultCallTimeout = 30 * time.Second
)

type Scanner interface {
	FetchCandidates(ctx context.Context) ([]entity.Deal, error)
}

type Preprocessor interface {
	Normalize(ctx context.Context, deal entity.Deal) (entity.EnrichedDeal, error)
}

type Estimator interface {
	Estimate(ctx context.Context, deal entity.EnrichedDeal) (entity.PriceEstimate, error)
}

type Notifier interface {
	Send(ctx context.Context, opportunities []entity.Opportunity) []string
}

type QuotaLimiter interface {
	TryAcquire(ctx context.Context) (quota.Decision, error)
}

type DealStore interface {
	Load(ctx context.Context) (entity.Memory, error)
	Save(ctx context.Context, memory entity.Memory) error
}

// Outcome — итог цикла с точки зрения вызывающего.
type Outcome string

const (
	OutcomeCompleted     Outcome = "completed"
	OutcomeQuotaExceeded Outcome = "quota_exceeded"
	OutcomeFetchFailed   Outcome = "fetch_failed"
)

// CycleResult distinguishes "no run attempted" from "ran with partial
// results" from "ran cleanly". Warnings carry non-fatal failures.
type CycleResult struct {
	Outcome       Outcome
	Opportunities []entity.Opportunity
	Attempted     int
	Skipped       int
	Failed        int
	Warnings      []string
	NextResetAt   time.Time
	QuotaUsed     int
	QuotaLimit    int
}

// Service прогоняет один цикл поиска сделок: квота → скан → дедупликация →
// нормализация и оценка → порог → уведомления → сохранение.
type Service struct {
	limiter      QuotaLimiter
	scanner      Scanner
	preprocessor Preprocessor
	estimator    Estimator
	notifier     Notifier
	store        DealStore

	threshold   float64
	fanOutWidth int
	callTimeout time.Duration

	now func() time.Time
}

func NewService(
	limiter QuotaLimiter,
	scanner Scanner,
	preprocessor Preprocessor,
	estimator Estimator,
	notifier Notifier,
	store DealStore,
) *Service {
	return &Service{
		limiter:      limiter,
		scanner:      scanner,
		preprocessor: preprocessor,
		estimator:    estimator,
		notifier:     notifier,
		store:        store,
		threshold:    defaultThreshold,
		fanOutWidth:  defaultFanOutWidth,
		callTimeout:  defaultCallTimeout,
		now:          time.Now,
	}
}

func (s *Service) WithThreshold(threshold float64) *Service {
	s.threshold = threshold
	return s
}

func (s *Service) WithFanOutWidth(width int) *Service {
	if width > 0 {
		s.fanOutWidth = width
	}
	return s
}

func (s *Service) WithCallTimeout(timeout time.Duration) *Service {
	if timeout > 0 {
		s.callTimeout = timeout
	}
	return s
}

// candidateOutcome is the per-candidate join slot; slots are indexed by the
// candidate's position so the assembled result keeps the scanner's order.
type candidateOutcome struct {
	opportunity entity.Opportunity
	qualifies   bool
	err         error
}

func (s *Service) RunCycle(ctx context.Context) (CycleResult, error) {
	cycleID := xid.New().String()

	decision, err := s.limiter.TryAcquire(ctx)
	if err != nil {
		return CycleResult{}, fmt.Errorf("acquire quota: %w", err)
	}

	if !decision.Allowed {
		logger(ctx).Info("cycle rejected: daily quota exhausted",
			"used", decision.Used,
			"next_reset_at", decision.NextResetAt,
		)
		metricCycles.WithLabelValues(string(OutcomeQuotaExceeded)).Inc()

		return CycleResult{
			Outcome:     OutcomeQuotaExceeded,
			NextResetAt: decision.NextResetAt,
			QuotaUsed:   decision.Used,
			QuotaLimit:  decision.Used + decision.Remaining,
		}, nil
	}

	logger(ctx).Info("cycle started",
		slog.String(logx.FieldCycleID, cycleID),
		"quota_used", decision.Used,
		"quota_remaining", decision.Remaining,
	)

	// Квота уже списана: неудачный скан не возвращает попытку.
	deals, err := s.fetchCandidates(ctx)
	if err != nil {
		logger(ctx).Error("candidate fetch failed, cycle aborted", "error", err)
		metricCycles.WithLabelValues(string(OutcomeFetchFailed)).Inc()

		return CycleResult{
				Outcome:    OutcomeFetchFailed,
				QuotaUsed:  decision.Used,
				QuotaLimit: decision.Used + decision.Remaining,
			}, domain.WrapError(
				err, errcodes.FetchFailed, "fetch candidates",
			)
	}

	result := CycleResult{
		Outcome:    OutcomeCompleted,
		QuotaUsed:  decision.Used,
		QuotaLimit: decision.Used + decision.Remaining,
	}

	memory, err := s.store.Load(ctx)
	if err != nil {
		// Load сохраняет прежнее состояние; работаем с ним дальше.
		logger(ctx).Warn("memory load failed, using prior state", "error", err)
		result.Warnings = append(result.Warnings, fmt.Sprintf("memory load: %v", err))
	}

	var candidates []entity.Deal
	for _, deal := range deals {
		if memory.Seen(deal.ID) {
			result.Skipped++
			continue
		}
		candidates = append(candidates, deal)
	}

	result.Attempted = len(candidates)

	outcomes := s.evaluateCandidates(ctx, candidates)

	processedIDs := make([]string, 0, len(candidates))
	for i, outcome := range outcomes {
		processedIDs = append(processedIDs, candidates[i].ID)

		if outcome.err != nil {
			result.Failed++
			metricCandidateFailures.Inc()
			logger(ctx).Warn("candidate skipped",
				"deal_id", candidates[i].ID,
				"error", outcome.err,
			)
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("candidate %s: %v", candidates[i].ID, outcome.err))
			continue
		}

		if outcome.qualifies {
			result.Opportunities = append(result.Opportunities, outcome.opportunity)
		}
	}

	metricOpportunities.Add(float64(len(result.Opportunities)))

	if len(result.Opportunities) > 0 {
		if failed := s.notify(ctx, result.Opportunities); len(failed) > 0 {
			for _, channel := range failed {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("notify via %s failed", channel))
			}
		}
	}

	// Прерванный цикл не должен сохранять частичное состояние.
	if err := ctx.Err(); err != nil {
		return result, domain.WrapError(err, errcodes.CycleInterrupted, "cycle interrupted")
	}

	staged := memory.Clone()
	staged.MarkSeen(processedIDs...)
	staged.Prepend(result.Opportunities...)

	if err := s.store.Save(ctx, staged); err != nil {
		// Результаты уже собраны и возвращаются вызывающему; откатывать нечего.
		logger(ctx).Error("memory save failed", "error", err)
		result.Warnings = append(result.Warnings, fmt.Sprintf("memory save: %v", err))
	}

	metricCycles.WithLabelValues(string(OutcomeCompleted)).Inc()

	logger(ctx).Info("cycle finished",
		slog.String(logx.FieldCycleID, cycleID),
		"opportunities", len(result.Opportunities),
		"attempted", result.Attempted,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)

	return result, nil
}

func (s *Service) fetchCandidates(ctx context.Context) ([]entity.Deal, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	return s.scanner.FetchCandidates(callCtx)
}

// evaluateCandidates нормализует и оценивает кандидатов ограниченным числом
// воркеров; порядок результата совпадает с порядком кандидатов.
func (s *Service) evaluateCandidates(ctx context.Context, candidates []entity.Deal) []candidateOutcome {
	outcomes := make([]candidateOutcome, len(candidates))

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.fanOutWidth)

	for i, deal := range candidates {
		g.Go(func() error {
			outcomes[i] = s.evaluateOne(groupCtx, deal)
			return nil
		})
	}

	// Воркеры не возвращают ошибок: сбой кандидата остаётся в его слоте.
	_ = g.Wait()

	return outcomes
}

func (s *Service) evaluateOne(ctx context.Context, deal entity.Deal) candidateOutcome {
	normalizeCtx, cancelNormalize := context.WithTimeout(ctx, s.callTimeout)
	defer cancelNormalize()

	enriched, err := s.preprocessor.Normalize(normalizeCtx, deal)
	if err != nil {
		return candidateOutcome{err: fmt.Errorf("normalize: %w", err)}
	}

	estimateCtx, cancelEstimate := context.WithTimeout(ctx, s.callTimeout)
	defer cancelEstimate()

	estimate, err := s.estimator.Estimate(estimateCtx, enriched)
	if err != nil {
		return candidateOutcome{err: fmt.Errorf("estimate: %w", err)}
	}

	opportunity := entity.NewOpportunity(deal, estimate)
	opportunity.AddedAt = s.now()

	return candidateOutcome{
		opportunity: opportunity,
		qualifies:   opportunity.Qualifies(s.threshold),
	}
}

func (s *Service) notify(ctx context.Context, opportunities []entity.Opportunity) []string {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	return s.notifier.Send(callCtx, opportunities)
}
