package persistence

import (
	"fmt"
	"sort"
	"time"

	"dealradar/internal/domain/entity"
)

const memorySchemaVersion = 1

type memorySchema struct {
	Version       int                 `json:"version"`
	SeenIDs       []string            `json:"seen_ids"`
	Opportunities []opportunitySchema `json:"opportunities"`
}

type opportunitySchema struct {
	Deal     dealSchema          `json:"deal"`
	Estimate estimateSchema      `json:"estimate"`
	Discount float64             `json:"discount"`
	AddedAt  time.Time           `json:"added_at"`
}

type dealSchema struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	URL         string    `json:"url"`
	FetchedAt   time.Time `json:"fetched_at"`
}

type estimateSchema struct {
	Value    float64        `json:"value"`
	Sources  []sourceSchema `json:"sources"`
	Degraded bool           `json:"degraded"`
}

type sourceSchema struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// newMemorySchema produces a deterministic encoding: seen IDs are sorted so
// identical states always marshal to identical bytes, which the
// compare-and-swap write path depends on.
func newMemorySchema(memory entity.Memory) memorySchema {
	seen := make([]string, 0, len(memory.SeenIDs))
	for id := range memory.SeenIDs {
		seen = append(seen, id)
	}

	sort.Strings(seen)

	opportunities := make([]opportunitySchema, 0, len(memory.Opportunities))
	for _, o := range memory.Opportunities {
		opportunities = append(opportunities, newOpportunitySchema(o))
	}

	return memorySchema{
		Version:       memorySchemaVersion,
		SeenIDs:       seen,
		Opportunities: opportunities,
	}
}

func newOpportunitySchema(o entity.Opportunity) opportunitySchema {
	sources := make([]sourceSchema, 0, len(o.Estimate.Sources))
	for _, s := range o.Estimate.Sources {
		sources = append(sources, sourceSchema{Name: s.Name, Value: s.Value})
	}

	return opportunitySchema{
		Deal: dealSchema{
			ID:          o.Deal.ID,
			Title:       o.Deal.Title,
			Description: o.Deal.Description,
			Price:       o.Deal.Price,
			URL:         o.Deal.URL,
			FetchedAt:   o.Deal.FetchedAt,
		},
		Estimate: estimateSchema{
			Value:    o.Estimate.Value,
			Sources:  sources,
			Degraded: o.Estimate.Degraded,
		},
		Discount: o.Discount,
		AddedAt:  o.AddedAt,
	}
}

// toDomain validates structure on the way in: an unknown schema version or an
// opportunity without a deal ID means the stored bytes are not trustworthy.
func (s memorySchema) toDomain() (entity.Memory, error) {
	if s.Version != memorySchemaVersion {
		return entity.Memory{}, fmt.Errorf("unsupported memory schema version %d", s.Version)
	}

	memory := entity.NewMemory()
	memory.MarkSeen(s.SeenIDs...)

	opportunities := make([]entity.Opportunity, 0, len(s.Opportunities))

	for i, o := range s.Opportunities {
		if o.Deal.ID == "" {
			return entity.Memory{}, fmt.Errorf("opportunity %d has no deal id", i)
		}

		opportunities = append(opportunities, o.toDomain())
	}

	memory.Opportunities = opportunities

	return memory, nil
}

func (s opportunitySchema) toDomain() entity.Opportunity {
	sources := make([]entity.PriceSource, 0, len(s.Estimate.Sources))
	for _, src := range s.Estimate.Sources {
		sources = append(sources, entity.PriceSource{Name: src.Name, Value: src.Value})
	}

	return entity.Opportunity{
		Deal: entity.Deal{
			ID:          s.Deal.ID,
			Title:       s.Deal.Title,
			Description: s.Deal.Description,
			Price:       s.Deal.Price,
			URL:         s.Deal.URL,
			FetchedAt:   s.Deal.FetchedAt,
		},
		Estimate: entity.PriceEstimate{
			Value:    s.Estimate.Value,
			Sources:  sources,
			Degraded: s.Estimate.Degraded,
		},
		Discount: s.Discount,
		AddedAt:  s.AddedAt,
	}
}
