// Package metrics exposes Prometheus counters for workflow operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Operations counts workflow operations by name and outcome
	// (ok, conflict, error).
	Operations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "olilab",
		Name:      "workflow_operations_total",
		Help:      "Workflow operations by operation name and outcome.",
	}, []string{"operation", "outcome"})

	// NotificationsPublished counts notification records handed to the
	// fan-out publisher, by type.
	NotificationsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "olilab",
		Name:      "notifications_published_total",
		Help:      "Notification records published for external delivery.",
	}, []string{"type"})
)
