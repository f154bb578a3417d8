package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RepositoryMetrics counts repository operations by outcome. Exposed via the
// /metrics endpoint.
type RepositoryMetrics struct {
	operations *prometheus.CounterVec
}

// NewRepositoryMetrics registers the repository counters with reg. A nil
// registerer leaves the counters unregistered, which is what tests want.
func NewRepositoryMetrics(reg prometheus.Registerer) *RepositoryMetrics {
	m := &RepositoryMetrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "parley",
				Subsystem: "user_repository",
				Name:      "operations_total",
				Help:      "User repository operations by operation name and outcome.",
			},
			[]string{"operation", "outcome"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.operations)
	}
	return m
}

// Observe records one finished operation.
func (m *RepositoryMetrics) Observe(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
}
