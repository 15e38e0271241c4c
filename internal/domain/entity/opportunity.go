package entity

import "time"

// Opportunity — сделка, у которой оценка заметно выше цены лота.
type Opportunity struct {
	Deal     Deal
	Estimate PriceEstimate
	Discount float64 // Estimate.Value - Deal.Price
	AddedAt  time.Time
}

func NewOpportunity(deal Deal, estimate PriceEstimate) Opportunity {
	return Opportunity{
		Deal:     deal,
		Estimate: estimate,
		Discount: estimate.Value - deal.Price,
	}
}

// Qualifies reports whether the discount strictly exceeds the alert
// threshold. Exactly the threshold is not an alert.
func (o Opportunity) Qualifies(threshold float64) bool {
	return o.Discount > threshold
}
