package stats

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "anchord"

var (
	rampOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ramp_operations_total",
			Help:      "Number of ramp operations by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)
	rampDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ramp_operation_duration_seconds",
			Help:      "Duration of ramp operations.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)
	rampVolume = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ramp_settled_value_total",
			Help:      "Native value settled by completed ramp operations.",
		},
		[]string{"direction"},
	)
)

func init() {
	prometheus.MustRegister(rampOperations, rampDuration, rampVolume)
}

// ObserveRampOperation records the outcome and duration of a ramp operation.
// An empty outcome means success.
func ObserveRampOperation(operation, outcome string, start time.Time) {
	if outcome == "" {
		outcome = "success"
	}
	rampOperations.WithLabelValues(operation, outcome).Inc()
	rampDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// AddSettledValue adds the amount of value credited (direction "in") or
// debited (direction "out").
func AddSettledValue(direction string, amount float64) {
	if amount <= 0 {
		return
	}
	rampVolume.WithLabelValues(direction).Add(amount)
}
