package discovery

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals
var (
	metricCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealradar_discovery_cycles_total",
			Help: "Discovery cycles by outcome",
		},
		[]string{"outcome"},
	)

	metricOpportunities = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dealradar_discovery_opportunities_total",
			Help: "Opportunities that passed the discount threshold",
		},
	)

	metricCandidateFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dealradar_discovery_candidate_failures_total",
			Help: "Candidates dropped by normalization or estimation failures",
		},
	)
)
