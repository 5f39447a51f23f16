package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/clinicdesk/clinicdesk/internal/doctors"
	"github.com/clinicdesk/clinicdesk/internal/events"
	"github.com/clinicdesk/clinicdesk/pkg/logging"
)

// DoctorStore resolves doctor names for email copy.
type DoctorStore interface {
	GetByID(ctx context.Context, id string) (*doctors.Doctor, error)
}

// Service turns appointment event envelopes into patient emails.
type Service struct {
	email   EmailSender
	doctors DoctorStore
	logger  *logging.Logger
	baseURL string
}

// NewService creates a notification service.
func NewService(email EmailSender, doctorStore DoctorStore, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{email: email, doctors: doctorStore, logger: logger}
}

// WithBaseURL sets the public site URL; when present, every email links
// to the appointment it concerns.
func (s *Service) WithBaseURL(u string) *Service {
	s.baseURL = strings.TrimRight(strings.TrimSpace(u), "/")
	return s
}

// HandleEnvelope dispatches one event envelope. Unknown event types and
// events without a patient email are skipped, not errors.
func (s *Service) HandleEnvelope(ctx context.Context, env events.Envelope) error {
	if s.email == nil {
		return nil
	}

	switch env.EventType {
	case events.AppointmentBookedV1{}.EventType():
		var evt events.AppointmentBookedV1
		if err := json.Unmarshal(env.Payload, &evt); err != nil {
			return fmt.Errorf("notify: decode booked event: %w", err)
		}
		return s.notifyBooked(ctx, evt)
	case events.AppointmentStatusChangedV1{}.EventType():
		var evt events.AppointmentStatusChangedV1
		if err := json.Unmarshal(env.Payload, &evt); err != nil {
			return fmt.Errorf("notify: decode status event: %w", err)
		}
		return s.notifyStatusChanged(ctx, evt)
	case events.AppointmentRescheduledV1{}.EventType():
		var evt events.AppointmentRescheduledV1
		if err := json.Unmarshal(env.Payload, &evt); err != nil {
			return fmt.Errorf("notify: decode reschedule event: %w", err)
		}
		return s.notifyRescheduled(ctx, evt)
	default:
		s.logger.Debug("notify: skipping event type", "event_type", env.EventType)
		return nil
	}
}

func (s *Service) notifyBooked(ctx context.Context, evt events.AppointmentBookedV1) error {
	if evt.PatientEmail == "" {
		s.logger.Debug("notify: no patient email for booking", "appointment_id", evt.AppointmentID)
		return nil
	}

	doctorName := s.doctorName(ctx, evt.DoctorID)
	when := formatVisit(evt.Date, evt.StartTime)

	subject := "Your appointment is booked"
	body := fmt.Sprintf(`Hi %s,

Your appointment with %s on %s is confirmed.

If you need to change or cancel, please do so at least 24 hours in advance.`,
		patientGreeting(evt.PatientName), doctorName, when)

	if evt.Status == "pending" {
		subject = "Your appointment request was received"
		body = fmt.Sprintf(`Hi %s,

Your appointment request with %s for %s has been received and is awaiting the doctor's confirmation. We will email you when it is reviewed.`,
			patientGreeting(evt.PatientName), doctorName, when)
	}

	return s.send(ctx, evt.PatientEmail, evt.PatientName, subject, body, evt.AppointmentID)
}

func (s *Service) notifyStatusChanged(ctx context.Context, evt events.AppointmentStatusChangedV1) error {
	if evt.PatientEmail == "" {
		return nil
	}

	doctorName := s.doctorName(ctx, evt.DoctorID)
	when := formatVisit(evt.Date, evt.StartTime)

	var subject, line string
	switch evt.ToStatus {
	case "accepted":
		subject = "Your appointment was confirmed"
		line = fmt.Sprintf("%s confirmed your appointment on %s.", doctorName, when)
	case "refused":
		subject = "Your appointment request was declined"
		line = fmt.Sprintf("%s is unable to see you on %s. Please pick another slot.", doctorName, when)
	case "cancelled":
		subject = "Your appointment was cancelled"
		line = fmt.Sprintf("Your appointment with %s on %s has been cancelled.", doctorName, when)
	default:
		// completed / no_show are internal bookkeeping, no email.
		return nil
	}

	body := fmt.Sprintf("Hi,\n\n%s", line)
	return s.send(ctx, evt.PatientEmail, "", subject, body, evt.AppointmentID)
}

func (s *Service) notifyRescheduled(ctx context.Context, evt events.AppointmentRescheduledV1) error {
	if evt.PatientEmail == "" {
		return nil
	}

	doctorName := s.doctorName(ctx, evt.DoctorID)
	body := fmt.Sprintf(`Hi,

Your appointment with %s has been moved from %s to %s.`,
		doctorName, formatVisit(evt.OldDate, evt.OldStartTime), formatVisit(evt.NewDate, evt.NewStartTime))

	return s.send(ctx, evt.PatientEmail, "", "Your appointment was rescheduled", body, evt.AppointmentID)
}

func (s *Service) send(ctx context.Context, to, toName, subject, body, appointmentID string) error {
	if s.baseURL != "" {
		body += "\n\nManage this appointment: " + s.baseURL + "/appointments/" + appointmentID
	}
	body += "\n\n— ClinicDesk"
	if err := s.email.Send(ctx, EmailMessage{To: to, ToName: toName, Subject: subject, Body: body}); err != nil {
		return err
	}
	s.logger.Info("notify: appointment email sent", "to", to, "appointment_id", appointmentID)
	return nil
}

func (s *Service) doctorName(ctx context.Context, doctorID string) string {
	if s.doctors != nil {
		if d, err := s.doctors.GetByID(ctx, doctorID); err == nil && d.Name != "" {
			return d.Name
		}
	}
	return "your doctor"
}

func patientGreeting(name string) string {
	if name == "" {
		return "there"
	}
	return name
}

// formatVisit renders "2026-09-01" + "10:00:00" as a human-readable
// visit time, falling back to the raw strings.
func formatVisit(date, startTime string) string {
	t, err := time.Parse("2006-01-02 15:04:05", date+" "+startTime)
	if err != nil {
		return date + " at " + startTime
	}
	return t.Format("Monday, January 2 at 3:04 PM")
}
