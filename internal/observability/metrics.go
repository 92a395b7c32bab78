package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels shared by every counter.
const (
	OutcomeSuccess  = "success"
	OutcomeFailed   = "failed"
	OutcomeInvalid  = "invalid"
	OutcomeRejected = "rejected"
)

// Metrics holds the Prometheus collectors for API calls, submissions and exports.
// A nil *Metrics records nothing.
type Metrics struct {
	apiRequests *prometheus.CounterVec
	apiDuration *prometheus.HistogramVec
	submissions *prometheus.CounterVec
	exports     *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		apiRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coverletter",
			Name:      "api_requests_total",
			Help:      "Calls made to the generation API by operation and outcome.",
		}, []string{"operation", "outcome"}),
		apiDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "coverletter",
			Name:      "api_request_duration_seconds",
			Help:      "Latency of calls to the generation API.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"operation"}),
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coverletter",
			Name:      "submissions_total",
			Help:      "Form submissions by outcome.",
		}, []string{"outcome"}),
		exports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coverletter",
			Name:      "exports_total",
			Help:      "Export downloads by format and outcome.",
		}, []string{"format", "outcome"}),
	}
}

// ObserveAPICall records one call to the generation API.
func (m *Metrics) ObserveAPICall(operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(operation, outcome).Inc()
	m.apiDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveSubmission records the outcome of a form submission.
func (m *Metrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

// ObserveExport records the outcome of an export for format.
func (m *Metrics) ObserveExport(format, outcome string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(format, outcome).Inc()
}
