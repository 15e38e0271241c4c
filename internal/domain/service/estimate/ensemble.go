package estimate

import (
	"context"
	"errors"
	"sync"

	"dealradar/internal/domain"
	"dealradar/internal/domain/entity"
	"dealradar/pkg/contextx"
	"dealradar/pkg/errcodes"
	"dealradar/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// Weights reflect that the primary signal is the more consistent one and the
// secondary contributes contextual correction.
const (
	weightPrimary   = 0.9
	weightSecondary = 0.1
)

// PriceModel is one independent value-prediction source. Predict returns a
// price in linear (non-log) currency units.
type PriceModel interface {
	Name() string
	Predict(ctx context.Context, deal entity.EnrichedDeal) (float64, error)
}

// Ensemble combines two independent price models. When one source fails, the
// surviving source carries full weight and the estimate is tagged degraded;
// a missing term is never treated as zero, which would silently deflate the
// estimate.
type Ensemble struct {
	primary   PriceModel
	secondary PriceModel
}

func NewEnsemble(primary, secondary PriceModel) *Ensemble {
	return &Ensemble{
		primary:   primary,
		secondary: secondary,
	}
}

func (e *Ensemble) Estimate(ctx context.Context, deal entity.EnrichedDeal) (entity.PriceEstimate, error) {
	var (
		wg sync.WaitGroup

		primaryValue, secondaryValue float64
		primaryErr, secondaryErr     error
	)

	wg.Add(2)

	go func() {
		defer wg.Done()
		primaryValue, primaryErr = e.primary.Predict(ctx, deal)
	}()

	go func() {
		defer wg.Done()
		secondaryValue, secondaryErr = e.secondary.Predict(ctx, deal)
	}()

	wg.Wait()

	switch {
	case primaryErr == nil && secondaryErr == nil:
		return entity.PriceEstimate{
			Value: weightPrimary*primaryValue + weightSecondary*secondaryValue,
			Sources: []entity.PriceSource{
				{Name: e.primary.Name(), Value: primaryValue},
				{Name: e.secondary.Name(), Value: secondaryValue},
			},
			Degraded: false,
		}, nil

	case primaryErr == nil:
		logger(ctx).Warn("secondary price model failed, estimate degraded",
			logx.Error(secondaryErr),
			"deal-id", deal.ID,
		)

		return entity.PriceEstimate{
			Value:    primaryValue,
			Sources:  []entity.PriceSource{{Name: e.primary.Name(), Value: primaryValue}},
			Degraded: true,
		}, nil

	case secondaryErr == nil:
		logger(ctx).Warn("primary price model failed, estimate degraded",
			logx.Error(primaryErr),
			"deal-id", deal.ID,
		)

		return entity.PriceEstimate{
			Value:    secondaryValue,
			Sources:  []entity.PriceSource{{Name: e.secondary.Name(), Value: secondaryValue}},
			Degraded: true,
		}, nil

	default:
		return entity.PriceEstimate{}, domain.WrapError(
			errors.Join(primaryErr, secondaryErr),
			errcodes.EstimationFailed,
			"no pricing source succeeded",
		)
	}
}
