package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestLifecycleMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLifecycleMetrics(reg)

	m.ObserveBooking()
	m.ObserveBooking()
	m.ObserveTransition("confirmed")
	m.ObserveEmail("booked", "success")
	m.ObserveEmail("booked", "fail")
	m.ObserveEmail("booked", "fail")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookingsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitionsTotal.WithLabelValues("confirmed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.emailsTotal.WithLabelValues("booked", "fail")))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *LifecycleMetrics
	m.ObserveBooking()
	m.ObserveTransition("rejected")
	m.ObserveEmail("rejected", "success")
}
