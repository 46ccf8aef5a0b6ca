// Package metrics exposes Prometheus instrumentation for the scheduling
// API.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// SchedulingMetrics counts booking traffic and conflicts.
type SchedulingMetrics struct {
	requestsTotal       *prometheus.CounterVec
	windowsCreated      prometheus.Counter
	appointmentsCreated prometheus.Counter
	bookingConflicts    *prometheus.CounterVec
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduler",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total API requests",
		}, []string{"route", "status"}),
		windowsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scheduler",
			Subsystem: "booking",
			Name:      "provider_windows_created_total",
			Help:      "Total provider windows created",
		}),
		appointmentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scheduler",
			Subsystem: "booking",
			Name:      "appointments_created_total",
			Help:      "Total appointments created",
		}),
		bookingConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduler",
			Subsystem: "booking",
			Name:      "conflicts_total",
			Help:      "Total booking attempts rejected as conflicts",
		}, []string{"reason"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.windowsCreated, m.appointmentsCreated, m.bookingConflicts)
	return m
}

func (m *SchedulingMetrics) ObserveRequest(route, status string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(route, status).Inc()
}

func (m *SchedulingMetrics) ObserveWindowCreated() {
	if m == nil {
		return
	}
	m.windowsCreated.Inc()
}

func (m *SchedulingMetrics) ObserveAppointmentCreated() {
	if m == nil {
		return
	}
	m.appointmentsCreated.Inc()
}

func (m *SchedulingMetrics) ObserveConflict(reason string) {
	if m == nil {
		return
	}
	m.bookingConflicts.WithLabelValues(reason).Inc()
}
