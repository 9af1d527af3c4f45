// Package metrics exposes Prometheus collectors for store operations.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bplog"

// Collector counts store operations and tracks the collection size.
// It implements store.Observer.
type Collector struct {
	operations *prometheus.CounterVec
	readings   prometheus.Gauge
}

// NewCollector creates the collectors and registers them with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Store operations by operation and result.",
		}, []string{"operation", "result"}),
		readings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "readings",
			Help:      "Number of readings currently stored.",
		}),
	}
	reg.MustRegister(c.operations, c.readings)
	return c
}

// ObserveOperation counts one operation outcome
func (c *Collector) ObserveOperation(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.operations.WithLabelValues(op, result).Inc()
}

// ObserveCount records the current collection size
func (c *Collector) ObserveCount(n int) {
	c.readings.Set(float64(n))
}

// Handler serves the metrics gathered by reg
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
