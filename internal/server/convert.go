package server

import (
	"time"

	"dealradar/internal/domain/entity"
	"dealradar/internal/domain/service/discovery"
	"dealradar/internal/domain/service/quota"
	"dealradar/pkg/lox"
	"dealradar/pkg/rest"
)

func newRESTDeal(deal entity.Deal) rest.Deal {
	return rest.Deal{
		ID:          deal.ID,
		Title:       deal.Title,
		Description: deal.Description,
		Price:       deal.Price,
		URL:         deal.URL,
		FetchedAt:   deal.FetchedAt.Format(time.RFC3339),
	}
}

func newRESTOpportunity(opportunity entity.Opportunity) rest.Opportunity {
	return rest.Opportunity{
		Deal:     newRESTDeal(opportunity.Deal),
		Estimate: opportunity.Estimate.Value,
		Discount: opportunity.Discount,
		Degraded: opportunity.Estimate.Degraded,
		AddedAt:  opportunity.AddedAt.Format(time.RFC3339),
	}
}

func newRESTOpportunities(opportunities []entity.Opportunity) rest.Opportunities {
	return rest.Opportunities{
		Items: lox.Map(opportunities, newRESTOpportunity),
	}
}

func newRESTCycleResult(result discovery.CycleResult) rest.CycleResult {
	restResult := rest.CycleResult{
		Outcome:       string(result.Outcome),
		Opportunities: lox.Map(result.Opportunities, newRESTOpportunity),
		Attempted:     result.Attempted,
		Skipped:       result.Skipped,
		Failed:        result.Failed,
		Warnings:      result.Warnings,
	}

	if !result.NextResetAt.IsZero() {
		resetAt := result.NextResetAt.Format(time.RFC3339)
		restResult.NextResetAt = &resetAt
	}

	return restResult
}

func newRESTQuota(decision quota.Decision, limit int) rest.Quota {
	return rest.Quota{
		Limit:     limit,
		Used:      decision.Used,
		Remaining: decision.Remaining,
		ResetsAt:  decision.NextResetAt.Format(time.RFC3339),
	}
}
