// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// Promotion and fact-load runs are short-lived batch jobs, so metrics are
// pushed to a Pushgateway at the end of a run instead of being exposed on a
// scrape endpoint. All Prometheus-specific dependencies stay in this package;
// the pipelines only ever see metrics.Backend.
package prompush

import (
	"fmt"

	"lakeetl/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	stepCounter  *prometheus.CounterVec // pipeline_step_total
	stepDuration *prometheus.SummaryVec // pipeline_step_duration_seconds

	classifiedCounter *prometheus.CounterVec // classified_records_total
	outcomeCounter    *prometheus.CounterVec // factload_outcomes_total
}

// NewBackend constructs a Pushgateway backend. jobName is the Pushgateway
// grouping key; gatewayURL is the base URL of the gateway.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "lakeetl"
	}

	reg := prometheus.NewRegistry()

	stepCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_step_total",
			Help: "Pipeline step executions, partitioned by step and status.",
		},
		[]string{"step", "status"},
	)
	stepDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "pipeline_step_duration_seconds",
			Help:       "Duration of pipeline steps in seconds, partitioned by step and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"step", "status"},
	)
	classifiedCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classified_records_total",
			Help: "Classified records per entity, partitioned into valid and invalid.",
		},
		[]string{"entity", "kind"},
	)
	outcomeCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factload_outcomes_total",
			Help: "Period load attempts by terminal status.",
		},
		[]string{"status"},
	)

	for _, c := range []prometheus.Collector{stepCounter, stepDuration, classifiedCounter, outcomeCounter} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register collector: %w", err)
		}
	}

	return &Backend{
		gatewayURL:        gatewayURL,
		jobName:           jobName,
		reg:               reg,
		stepCounter:       stepCounter,
		stepDuration:      stepDuration,
		classifiedCounter: classifiedCounter,
		outcomeCounter:    outcomeCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "pipeline_step_total":
		if b.stepCounter != nil {
			b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)
		}
	case "classified_records_total":
		if b.classifiedCounter != nil {
			b.classifiedCounter.WithLabelValues(labels["entity"], labels["kind"]).Add(delta)
		}
	case "factload_outcomes_total":
		if b.outcomeCounter != nil {
			b.outcomeCounter.WithLabelValues(labels["status"]).Add(delta)
		}
	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != "pipeline_step_duration_seconds" || b.stepDuration == nil {
		return
	}
	b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
