// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from the promotion and fact-load pipelines.
//
// The package exposes a narrow Backend interface (counters and duration
// observations) behind a global, pluggable backend that defaults to a no-op
// implementation, so metric calls are always safe even when no gateway is
// configured. Concrete systems live in subpackages; the rest of the codebase
// depends only on this interface.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep measures one pipeline step: latency plus success/failure.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}

	backend.IncCounter("pipeline_step_total", 1, lbls)
	backend.ObserveHistogram("pipeline_step_duration_seconds", d.Seconds(), lbls)
}

// RecordClassified counts one entity's classification split.
func RecordClassified(entity string, valid, invalid int64) {
	if valid > 0 {
		backend.IncCounter("classified_records_total", float64(valid), Labels{
			"entity": entity, "kind": "valid",
		})
	}
	if invalid > 0 {
		backend.IncCounter("classified_records_total", float64(invalid), Labels{
			"entity": entity, "kind": "invalid",
		})
	}
}

// RecordLoadOutcome counts one period-load attempt by its terminal status
// (SUCCEEDED, SKIPPED_EXISTS, SKIPPED_EMPTY, ERROR).
func RecordLoadOutcome(status string) {
	backend.IncCounter("factload_outcomes_total", 1, Labels{"status": status})
}
