package events

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var operationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "parish_events_operations_total",
		Help: "Number of event store operations by outcome",
	},
	[]string{"op", "synced"},
)

func observe(op string, synced bool) {
	operationsTotal.WithLabelValues(op, strconv.FormatBool(synced)).Inc()
}
