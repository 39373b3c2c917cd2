// Package metrics exposes Prometheus counters for the appointment lifecycle.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// LifecycleMetrics counts bookings, status transitions, and email outcomes.
// A nil *LifecycleMetrics is valid and records nothing.
type LifecycleMetrics struct {
	bookingsTotal    prometheus.Counter
	transitionsTotal *prometheus.CounterVec
	emailsTotal      *prometheus.CounterVec
}

// NewLifecycleMetrics registers the collectors on reg (the default registerer when nil).
func NewLifecycleMetrics(reg prometheus.Registerer) *LifecycleMetrics {
	m := &LifecycleMetrics{
		bookingsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "appointments",
			Name:      "booked_total",
			Help:      "Appointments created in pending state",
		}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "appointments",
			Name:      "transitions_total",
			Help:      "Appointment status changes by target status",
		}, []string{"status"}),
		emailsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "email",
			Name:      "sent_total",
			Help:      "Notification attempts by kind and outcome",
		}, []string{"kind", "outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.transitionsTotal, m.emailsTotal)
	return m
}

func (m *LifecycleMetrics) ObserveBooking() {
	if m == nil {
		return
	}
	m.bookingsTotal.Inc()
}

func (m *LifecycleMetrics) ObserveTransition(status string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(status).Inc()
}

func (m *LifecycleMetrics) ObserveEmail(kind, outcome string) {
	if m == nil {
		return
	}
	m.emailsTotal.WithLabelValues(kind, outcome).Inc()
}
