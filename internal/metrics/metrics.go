// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package metrics exposes the Prometheus collectors tracking deploy
// outcomes: step durations, per-host results, and host reachability.
// The singleton-registry/WithLabelValues shape follows the collector
// pattern in grimm-is-flywall's internal/metrics/collector.go; the
// registry.go that pattern assumed wasn't retrieved with the pack, so it
// is authored here directly against prometheus/client_golang.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every collector the orchestrator and HTTP endpoint
// need, registered once against a dedicated prometheus.Registry so
// /metrics never picks up the default global collectors.
type Registry struct {
	Registerer *prometheus.Registry

	StepDuration   *prometheus.HistogramVec
	HostOutcome    *prometheus.CounterVec
	HostReachable  *prometheus.GaugeVec
	DirectiveCount prometheus.Gauge
}

var (
	once     sync.Once
	instance *Registry
)

// Get returns the process-wide metrics registry, constructing it on
// first use.
func Get() *Registry {
	once.Do(func() {
		instance = newRegistry()
	})
	return instance
}

func newRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		Registerer: reg,
		StepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "firelet",
			Subsystem: "deploy",
			Name:      "step_duration_seconds",
			Help:      "Duration of each deploy pipeline step.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"step"}),
		HostOutcome: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "firelet",
			Subsystem: "deploy",
			Name:      "host_outcome_total",
			Help:      "Count of per-host deploy outcomes by step and result.",
		}, []string{"step", "host", "result"}),
		HostReachable: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "firelet",
			Subsystem: "deploy",
			Name:      "host_reachable",
			Help:      "1 if the host answered the last fetch, 0 otherwise.",
		}, []string{"host"}),
		DirectiveCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "firelet",
			Subsystem: "compile",
			Name:      "directive_count",
			Help:      "Number of directives produced by the last successful compile.",
		}),
	}

	reg.MustRegister(r.StepDuration, r.HostOutcome, r.HostReachable, r.DirectiveCount)
	return r
}
