package integrity

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the integrity detector.
type Metrics struct {
	Scans        prometheus.Counter
	Anomalies    *prometheus.CounterVec
	ScanDuration prometheus.Histogram
	Modules      prometheus.Gauge
}

// NewMetrics registers integrity metrics with reg (the default registerer when nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Scans: f.NewCounter(prometheus.CounterOpts{
			Name: "pixelguard_integrity_scans_total",
			Help: "Total number of full loaded-module scans",
		}),
		Anomalies: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pixelguard_integrity_anomalies_total",
			Help: "Total number of integrity anomalies, by reason",
		}, []string{"reason"}),
		ScanDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pixelguard_integrity_scan_duration_seconds",
			Help:    "Duration of full loaded-module scans",
			Buckets: prometheus.DefBuckets,
		}),
		Modules: f.NewGauge(prometheus.GaugeOpts{
			Name: "pixelguard_integrity_modules_loaded",
			Help: "Number of modules seen by the last full scan",
		}),
	}
}

func (m *Metrics) IncScans() { m.Scans.Inc() }

// IncAnomaly increments the anomaly counter for reason.
func (m *Metrics) IncAnomaly(reason string) {
	m.Anomalies.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveScanDuration(seconds float64) { m.ScanDuration.Observe(seconds) }

func (m *Metrics) SetModules(n int) { m.Modules.Set(float64(n)) }
