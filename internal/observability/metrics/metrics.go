package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking flows.
type BookingMetrics struct {
	bookingsTotal      *prometheus.CounterVec
	transitionsTotal   *prometheus.CounterVec
	slotResolveLatency *prometheus.HistogramVec
	realtimeEvents     *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicdesk",
			Subsystem: "appointments",
			Name:      "bookings_total",
			Help:      "Total appointment booking attempts",
		}, []string{"status", "outcome"}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicdesk",
			Subsystem: "appointments",
			Name:      "status_transitions_total",
			Help:      "Total appointment status transitions",
		}, []string{"from", "to", "outcome"}),
		slotResolveLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinicdesk",
			Subsystem: "availability",
			Name:      "resolve_latency_seconds",
			Help:      "Latency of availability slot resolution",
			Buckets:   prometheus.DefBuckets,
		}, []string{"view"}),
		realtimeEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicdesk",
			Subsystem: "realtime",
			Name:      "events_total",
			Help:      "Total realtime events published to doctor channels",
		}, []string{"event_type"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.transitionsTotal, m.slotResolveLatency, m.realtimeEvents)
	return m
}

func (m *BookingMetrics) ObserveBooking(status, outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(status, outcome).Inc()
}

func (m *BookingMetrics) ObserveTransition(from, to, outcome string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(from, to, outcome).Inc()
}

func (m *BookingMetrics) ObserveResolveLatency(view string, seconds float64) {
	if m == nil {
		return
	}
	m.slotResolveLatency.WithLabelValues(view).Observe(seconds)
}

func (m *BookingMetrics) ObserveRealtimeEvent(eventType string) {
	if m == nil {
		return
	}
	m.realtimeEvents.WithLabelValues(eventType).Inc()
}
