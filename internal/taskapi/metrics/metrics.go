// Package metrics provides Prometheus metrics for the task service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsPublishedTotal counts events published to the bus.
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taskapi",
			Name:      "events_published_total",
			Help:      "Total number of events published to the bus",
		},
		[]string{"topic"},
	)

	// EventsDeliveredTotal counts events delivered to subscribers.
	EventsDeliveredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taskapi",
			Name:      "events_delivered_total",
			Help:      "Total number of events delivered to subscribers",
		},
		[]string{"topic"},
	)

	// EventsDroppedTotal counts events dropped because a subscriber's buffer
	// was full.
	EventsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taskapi",
			Name:      "events_dropped_total",
			Help:      "Total number of events dropped due to full subscriber buffers",
		},
		[]string{"topic"},
	)

	// ActiveSubscriptions tracks live bus subscriptions.
	ActiveSubscriptions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "taskapi",
			Name:      "active_subscriptions",
			Help:      "Number of live event bus subscriptions",
		},
	)
)

// RecordPublish records a published event and its delivery fan-out.
func RecordPublish(topic string, delivered, dropped int) {
	EventsPublishedTotal.WithLabelValues(topic).Inc()
	EventsDeliveredTotal.WithLabelValues(topic).Add(float64(delivered))
	EventsDroppedTotal.WithLabelValues(topic).Add(float64(dropped))
}
