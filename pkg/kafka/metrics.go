package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProducerMessagesPublished counts events accepted by the broker.
	ProducerMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_events_published_total",
			Help: "Total number of storefront events published to Kafka",
		},
		[]string{"topic", "event_type"},
	)

	// ProducerMessagesFailed counts events the broker did not accept.
	ProducerMessagesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_events_failed_total",
			Help: "Total number of storefront events that failed to publish",
		},
		[]string{"topic", "event_type"},
	)
)
