package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveAPICall("generate", OutcomeSuccess, 1500*time.Millisecond)
	m.ObserveAPICall("generate", OutcomeFailed, 10*time.Millisecond)
	m.ObserveSubmission(OutcomeInvalid)
	m.ObserveExport("pdf", OutcomeSuccess)
	m.ObserveExport("pdf", OutcomeSuccess)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.apiRequests.WithLabelValues("generate", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.apiRequests.WithLabelValues("generate", OutcomeFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues(OutcomeInvalid)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.exports.WithLabelValues("pdf", OutcomeSuccess)))

	count, err := testutil.GatherAndCount(reg, "coverletter_api_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAPICall("health", OutcomeSuccess, time.Millisecond)
		m.ObserveSubmission(OutcomeSuccess)
		m.ObserveExport("txt", OutcomeFailed)
	})
}
