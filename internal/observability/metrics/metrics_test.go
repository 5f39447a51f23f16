package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		out[f.GetName()] = f
	}
	return out
}

func TestObserveBooking(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveBooking("scheduled", "created")
	m.ObserveBooking("scheduled", "created")
	m.ObserveBooking("scheduled", "slot_taken")

	families := gather(t, reg)
	fam, ok := families["clinicdesk_appointments_bookings_total"]
	if !ok {
		t.Fatal("bookings_total not registered")
	}
	var created float64
	for _, metric := range fam.GetMetric() {
		for _, label := range metric.GetLabel() {
			if label.GetName() == "outcome" && label.GetValue() == "created" {
				created = metric.GetCounter().GetValue()
			}
		}
	}
	if created != 2 {
		t.Fatalf("expected 2 created bookings, got %v", created)
	}
}

func TestObserveResolveLatency(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveResolveLatency("day", 0.05)
	m.ObserveResolveLatency("day", 0.10)

	families := gather(t, reg)
	fam, ok := families["clinicdesk_availability_resolve_latency_seconds"]
	if !ok {
		t.Fatal("resolve_latency not registered")
	}
	if count := fam.GetMetric()[0].GetHistogram().GetSampleCount(); count != 2 {
		t.Fatalf("expected 2 samples, got %d", count)
	}
}

func TestNilReceiverSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveBooking("scheduled", "created")
	m.ObserveTransition("pending", "accepted", "ok")
	m.ObserveResolveLatency("day", 0.1)
	m.ObserveRealtimeEvent("appointment.booked.v1")
}
