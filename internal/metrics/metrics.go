// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics exposes the Prometheus instrumentation for the dispute
// engine: per-client/per-reason event counters and dispatcher-health
// gauges, using the same github.com/prometheus/client_golang idiom this
// codebase uses elsewhere (eth/, plugin/evm/).
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the counters and gauges the dispatcher and per-client
// workers update as they process events.
type Metrics struct {
	EventsProcessed  *prometheus.CounterVec
	EventsRejected   *prometheus.CounterVec
	ActiveWorkers    prometheus.Gauge
	WindowEvictions  prometheus.Counter
}

// New constructs a Metrics bundle and registers it against reg. Passing a
// fresh prometheus.NewRegistry() keeps tests isolated from the global
// default registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EventsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disputeengine",
			Name:      "events_processed_total",
			Help:      "Number of events applied to an account, labeled by client.",
		}, []string{"client"}),
		EventsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disputeengine",
			Name:      "events_rejected_total",
			Help:      "Number of events rejected before or during processing, labeled by reason.",
		}, []string{"reason"}),
		ActiveWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "disputeengine",
			Name:      "active_workers",
			Help:      "Number of per-client worker goroutines currently running.",
		}),
		WindowEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "disputeengine",
			Name:      "window_evictions_total",
			Help:      "Number of dispute-window entries evicted and finalized across all clients.",
		}),
	}
	reg.MustRegister(m.EventsProcessed, m.EventsRejected, m.ActiveWorkers, m.WindowEvictions)
	return m
}
