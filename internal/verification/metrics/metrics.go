package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verification engine.
type Metrics struct {
	// Verification outcomes by method and decision
	Outcomes *prometheus.CounterVec

	// Distribution of combined confidence scores
	Confidence prometheus.Histogram

	// Overall verification latency including store reads
	VerifyLatency prometheus.Histogram
}

// New creates a new Metrics instance with all engine metrics registered.
func New() *Metrics {
	return &Metrics{
		Outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "attestry_verifications_total",
			Help: "Total verification decisions by method and outcome",
		}, []string{"method", "verified"}),

		Confidence: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "attestry_verification_confidence",
			Help:    "Distribution of combined confidence scores",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 1},
		}),

		VerifyLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "attestry_verification_duration_seconds",
			Help:    "Duration of full verification including record reads",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementOutcome records one verification decision.
func (m *Metrics) IncrementOutcome(method string, verified bool) {
	if m != nil {
		label := "false"
		if verified {
			label = "true"
		}
		m.Outcomes.WithLabelValues(method, label).Inc()
	}
}

// ObserveConfidence records a combined confidence score.
func (m *Metrics) ObserveConfidence(confidence float64) {
	if m != nil {
		m.Confidence.Observe(confidence)
	}
}

// ObserveVerifyLatency records the total verification duration.
func (m *Metrics) ObserveVerifyLatency(d time.Duration) {
	if m != nil {
		m.VerifyLatency.Observe(d.Seconds())
	}
}
