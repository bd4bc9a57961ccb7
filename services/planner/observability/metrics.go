// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the planner service.
//
// Metrics cover the entity resolution pipeline (outcomes per entity kind),
// the clarification lifecycle (created, resolved, expired-at-resume,
// ownership-rejected), and end-to-end action processing latency. Exposed
// via the /metrics endpoint for Prometheus + Grafana.
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all planner metrics.
const metricsNamespace = "railops"

// Subsystem for action-resolution metrics.
const plannerSubsystem = "planner"

// Metrics holds the Prometheus metrics for action processing. Initialize
// once at startup via NewMetrics.
type Metrics struct {
	// ActionsTotal counts preview/resolve calls.
	// Labels: operation (preview, resolve), status (resolved, clarification,
	// feedback, error)
	ActionsTotal *prometheus.CounterVec

	// ClarificationsTotal counts clarification lifecycle events.
	// Labels: event (created, resolved, chained, missing, ownership_rejected)
	ClarificationsTotal *prometheus.CounterVec

	// PendingClarifications approximates the number of clarifications
	// currently awaiting an answer.
	PendingClarifications prometheus.Gauge

	// ActionDurationSeconds measures end-to-end preview/resolve duration.
	// Labels: operation (preview, resolve)
	ActionDurationSeconds *prometheus.HistogramVec
}

// NewMetrics creates and registers the planner metrics with reg. Pass
// prometheus.DefaultRegisterer in production; tests pass a fresh registry
// so repeated registration does not panic.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ActionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: plannerSubsystem,
			Name:      "actions_total",
			Help:      "Action preview/resolve calls by operation and outcome status.",
		}, []string{"operation", "status"}),

		ClarificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: plannerSubsystem,
			Name:      "clarifications_total",
			Help:      "Clarification lifecycle events.",
		}, []string{"event"}),

		PendingClarifications: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: plannerSubsystem,
			Name:      "pending_clarifications",
			Help:      "Clarifications currently awaiting a user answer.",
		}),

		ActionDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: plannerSubsystem,
			Name:      "action_duration_seconds",
			Help:      "End-to-end duration of action preview/resolve calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

// RecordAction increments the action counter; nil-safe so callers can run
// without metrics in tests.
func (m *Metrics) RecordAction(operation, status string) {
	if m == nil {
		return
	}
	m.ActionsTotal.WithLabelValues(operation, status).Inc()
}

// RecordClarification increments a clarification lifecycle counter and
// adjusts the pending gauge for created/terminal events. Nil-safe.
func (m *Metrics) RecordClarification(event string) {
	if m == nil {
		return
	}
	m.ClarificationsTotal.WithLabelValues(event).Inc()
	switch event {
	case "created":
		m.PendingClarifications.Inc()
	case "resolved", "missing":
		m.PendingClarifications.Dec()
	}
}

// ObserveActionDuration records one call duration in seconds. Nil-safe.
func (m *Metrics) ObserveActionDuration(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.ActionDurationSeconds.WithLabelValues(operation).Observe(seconds)
}
