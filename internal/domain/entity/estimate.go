package entity

// PriceSource is one contributing prediction signal.
type PriceSource struct {
	Name  string
	Value float64 // raw value before weighting, linear units
}

// PriceEstimate is the ensemble output. Degraded means fewer than the full
// set of sources contributed.
type PriceEstimate struct {
	Value    float64
	Sources  []PriceSource
	Degraded bool
}
