package entity

// Memory is the durable record of processed deal IDs and emitted
// opportunities. Opportunities are kept most-recent-first. Mutated only by
// the orchestrator at the end of a successful cycle.
type Memory struct {
	SeenIDs       map[string]struct{}
	Opportunities []Opportunity

	// Revision — непрозрачный снимок хранилища, из которого загружено это
	// состояние. Слой персистентности сравнивает его при записи; доменный
	// код проносит поле без изменений.
	Revision []byte
}

func NewMemory() Memory {
	return Memory{
		SeenIDs:       make(map[string]struct{}),
		Opportunities: nil,
		Revision:      nil,
	}
}

func (m Memory) Seen(id string) bool {
	_, ok := m.SeenIDs[id]
	return ok
}

func (m *Memory) MarkSeen(ids ...string) {
	if m.SeenIDs == nil {
		m.SeenIDs = make(map[string]struct{}, len(ids))
	}

	for _, id := range ids {
		m.SeenIDs[id] = struct{}{}
	}
}

// Prepend inserts new opportunities ahead of the existing ones, preserving
// the order they are given in.
func (m *Memory) Prepend(opportunities ...Opportunity) {
	if len(opportunities) == 0 {
		return
	}

	merged := make([]Opportunity, 0, len(opportunities)+len(m.Opportunities))
	merged = append(merged, opportunities...)
	merged = append(merged, m.Opportunities...)

	m.Opportunities = merged
}

// Trim keeps only the newest keep opportunities. Seen IDs are untouched so
// trimmed deals are not re-alerted.
func (m *Memory) Trim(keep int) {
	if keep < 0 {
		keep = 0
	}

	if len(m.Opportunities) > keep {
		m.Opportunities = m.Opportunities[:keep]
	}
}

// Clone returns a deep copy so a cycle can stage changes without touching
// the state other readers hold.
func (m Memory) Clone() Memory {
	clone := Memory{
		SeenIDs:       make(map[string]struct{}, len(m.SeenIDs)),
		Opportunities: make([]Opportunity, len(m.Opportunities)),
		Revision:      m.Revision,
	}

	for id := range m.SeenIDs {
		clone.SeenIDs[id] = struct{}{}
	}

	copy(clone.Opportunities, m.Opportunities)

	return clone
}
