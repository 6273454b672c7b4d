package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "proup_realtime_connected_clients",
		Help: "Number of open WebSocket connections",
	})

	deliveredMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proup_realtime_messages_total",
			Help: "Realtime messages handed to client send buffers, by outcome",
		},
		[]string{"outcome"},
	)

	publishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "proup_realtime_publish_failures_total",
		Help: "Events that could not be published to the shared channel",
	})
)
