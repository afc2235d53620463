package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics("ticketron-test")

	m.ObserveRenewal("success")
	m.ObserveRenewal("success")
	m.ObserveRenewal("rejected")
	m.RecordError("/borrowed/", "GET", "FORBIDDEN")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.renewals.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.renewals.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("/borrowed/", "GET", "FORBIDDEN")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRenewal("success")
		m.RecordError("/", "GET", "NOT_FOUND")
	})
}
