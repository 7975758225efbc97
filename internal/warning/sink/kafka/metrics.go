package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the Kafka warning sink.
type Metrics struct {
	Published prometheus.Counter
	Failures  prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Published: f.NewCounter(prometheus.CounterOpts{
			Name: "pixelguard_kafka_published_total",
			Help: "Total number of warnings published to Kafka",
		}),
		Failures: f.NewCounter(prometheus.CounterOpts{
			Name: "pixelguard_kafka_publish_failures_total",
			Help: "Total number of failed Kafka publish batches",
		}),
	}
}

func (m *Metrics) AddPublished(n int) { m.Published.Add(float64(n)) }

func (m *Metrics) IncFailures() { m.Failures.Inc() }
