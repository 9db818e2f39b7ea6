package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "inheritance"

// Metrics used in monitoring service.
var (
	operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of ledger operations by result",
			Name:      "operations_total",
			Namespace: namespace,
		},
		[]string{"op", "result"},
	)
	operationTimes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Help:      "Ledger operation handling time",
			Name:      "operation_seconds",
			Namespace: namespace,
		},
		[]string{"op"},
	)
	eventQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Help:      "Number of ledger events waiting to be published",
			Name:      "event_queue_depth",
			Namespace: namespace,
		},
	)
	publishFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of ledger events that could not be published",
			Name:      "event_publish_failures_total",
			Namespace: namespace,
		},
	)
)

func init() {
	prometheus.MustRegister(
		operations,
		operationTimes,
		eventQueueDepth,
		publishFailures,
	)
}

// ObserveOperation records the outcome and duration of a ledger operation.
// result is usually "ok" or the rejection reason.
func ObserveOperation(op, result string, d time.Duration) {
	operations.WithLabelValues(op, result).Inc()
	operationTimes.WithLabelValues(op).Observe(d.Seconds())
}

func SetEventQueueDepth(n int) {
	eventQueueDepth.Set(float64(n))
}

func IncPublishFailures() {
	publishFailures.Inc()
}
