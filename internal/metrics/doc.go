// Package metrics defines the sink's Prometheus instruments: append and
// refusal counters, flush outcomes and durations, query outcomes, and local
// store commit/scan latencies.
//
// A Metrics value also implements the local store's MetricsHook, so one
// collection observes both the sink and its storage layer.
package metrics
