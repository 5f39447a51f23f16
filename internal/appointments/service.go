package appointments

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/clinicdesk/clinicdesk/internal/doctors"
	"github.com/clinicdesk/clinicdesk/internal/events"
	"github.com/clinicdesk/clinicdesk/internal/observability/metrics"
	"github.com/clinicdesk/clinicdesk/internal/patients"
	"github.com/clinicdesk/clinicdesk/pkg/logging"
)

var appointmentsTracer = otel.Tracer("clinicdesk.internal.appointments")

// PatientStore is the subset of the patients repository the writer needs.
type PatientStore interface {
	Create(ctx context.Context, req *patients.CreatePatientRequest) (*patients.Patient, error)
	GetByID(ctx context.Context, id string) (*patients.Patient, error)
}

// DoctorStore resolves the doctor a booking targets.
type DoctorStore interface {
	GetByID(ctx context.Context, id string) (*doctors.Doctor, error)
}

// EventSink receives appointment event envelopes. The realtime feed and
// the notification queue both implement it; failures are logged, never
// surfaced to the caller, because the row is already durable.
type EventSink interface {
	Publish(ctx context.Context, doctorID string, env events.Envelope) error
}

// Service is the appointment writer: booking, status transitions and
// reschedules, with slot-conflict rejection.
type Service struct {
	repo     Repository
	patients PatientStore
	doctors  DoctorStore
	sinks    []EventSink
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
}

// NewService constructs an appointment writer.
func NewService(repo Repository, patientStore PatientStore, doctorStore DoctorStore, logger *logging.Logger) *Service {
	if repo == nil {
		panic("appointments: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:     repo,
		patients: patientStore,
		doctors:  doctorStore,
		logger:   logger,
	}
}

// WithEventSink registers a sink for appointment events.
func (s *Service) WithEventSink(sink EventSink) *Service {
	if sink != nil {
		s.sinks = append(s.sinks, sink)
	}
	return s
}

// WithMetrics registers booking metrics.
func (s *Service) WithMetrics(m *metrics.BookingMetrics) *Service {
	s.metrics = m
	return s
}

// Book creates an appointment, creating a guest patient row first when
// the request carries inline patient details.
func (s *Service) Book(ctx context.Context, req *CreateAppointmentRequest) (*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.book")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("clinicdesk.doctor_id", req.DoctorID),
		attribute.String("clinicdesk.date", req.Date),
	)

	if s.doctors != nil {
		if _, err := s.doctors.GetByID(ctx, req.DoctorID); err != nil {
			return nil, err
		}
	}

	patient, err := s.resolvePatient(ctx, req)
	if err != nil {
		return nil, err
	}

	status := req.InitialStatus()
	appt, err := s.repo.Create(ctx, req.DoctorID, patient.ID, req.Date, req.StartTime, status, req.Notes)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveBooking(string(status), bookingOutcome(err))
		return nil, err
	}
	appt.PatientName = patient.Name
	appt.PatientEmail = patient.Email

	s.metrics.ObserveBooking(string(status), "created")
	s.logger.Info("appointment booked",
		"appointment_id", appt.ID,
		"doctor_id", appt.DoctorID,
		"date", appt.Date,
		"start_time", appt.StartTime,
		"status", appt.Status,
	)

	s.emit(ctx, appt.DoctorID, events.AppointmentBookedV1{
		AppointmentID: appt.ID,
		DoctorID:      appt.DoctorID,
		PatientID:     appt.PatientID,
		PatientName:   patient.Name,
		PatientEmail:  patient.Email,
		Date:          appt.Date,
		StartTime:     appt.StartTime,
		Status:        string(appt.Status),
	})

	return appt, nil
}

// Transition moves an appointment through the status state machine.
func (s *Service) Transition(ctx context.Context, id, toRaw, notes string) (*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.transition")
	defer span.End()

	to, err := ParseStatus(toRaw)
	if err != nil {
		return nil, err
	}

	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanTransition(appt.Status, to) {
		s.metrics.ObserveTransition(string(appt.Status), string(to), "rejected")
		return nil, fmt.Errorf("%w: %s -> %s", ErrBadTransition, appt.Status, to)
	}

	if err := s.repo.UpdateStatus(ctx, id, appt.Status, to, notes); err != nil {
		span.RecordError(err)
		s.metrics.ObserveTransition(string(appt.Status), string(to), transitionOutcome(err))
		return nil, err
	}

	s.metrics.ObserveTransition(string(appt.Status), string(to), "ok")
	s.logger.Info("appointment status changed",
		"appointment_id", id,
		"from", appt.Status,
		"to", to,
	)

	s.emit(ctx, appt.DoctorID, events.AppointmentStatusChangedV1{
		AppointmentID: appt.ID,
		DoctorID:      appt.DoctorID,
		PatientID:     appt.PatientID,
		PatientEmail:  appt.PatientEmail,
		Date:          appt.Date,
		StartTime:     appt.StartTime,
		FromStatus:    string(appt.Status),
		ToStatus:      string(to),
	})

	appt.Status = to
	if notes != "" {
		appt.Notes = notes
	}
	return appt, nil
}

// Reschedule moves an appointment to a new date/time, rejecting targets
// that already hold an active booking. Status and patient are preserved.
func (s *Service) Reschedule(ctx context.Context, id string, req *RescheduleRequest) (*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.reschedule")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Reschedule(ctx, id, req.Date, req.StartTime); err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.logger.Info("appointment rescheduled",
		"appointment_id", id,
		"old", appt.Date+" "+appt.StartTime,
		"new", req.Date+" "+req.StartTime,
	)

	s.emit(ctx, appt.DoctorID, events.AppointmentRescheduledV1{
		AppointmentID: appt.ID,
		DoctorID:      appt.DoctorID,
		PatientID:     appt.PatientID,
		PatientEmail:  appt.PatientEmail,
		OldDate:       appt.Date,
		OldStartTime:  appt.StartTime,
		NewDate:       req.Date,
		NewStartTime:  req.StartTime,
	})

	appt.Date = req.Date
	appt.StartTime = req.StartTime
	return appt, nil
}

func (s *Service) resolvePatient(ctx context.Context, req *CreateAppointmentRequest) (*patients.Patient, error) {
	if req.PatientID != "" {
		if s.patients == nil {
			return &patients.Patient{ID: req.PatientID}, nil
		}
		return s.patients.GetByID(ctx, req.PatientID)
	}
	if s.patients == nil {
		return nil, ErrMissingPatient
	}
	guest := *req.NewPatient
	guest.Guest = true
	return s.patients.Create(ctx, &guest)
}

func (s *Service) emit(ctx context.Context, doctorID string, evt events.CanonicalEvent) {
	if len(s.sinks) == 0 {
		return
	}
	env, err := events.NewEnvelope("doctor:"+doctorID, "", evt)
	if err != nil {
		s.logger.Error("failed to build event envelope", "error", err, "doctor_id", doctorID)
		return
	}
	for _, sink := range s.sinks {
		if err := sink.Publish(ctx, doctorID, env); err != nil {
			s.logger.Warn("event sink publish failed",
				"error", err,
				"event_type", env.EventType,
				"doctor_id", doctorID,
			)
		}
	}
}

func bookingOutcome(err error) string {
	if err == ErrSlotTaken {
		return "slot_taken"
	}
	return "error"
}

func transitionOutcome(err error) string {
	if errors.Is(err, ErrStatusConflict) {
		return "conflict"
	}
	return "error"
}
