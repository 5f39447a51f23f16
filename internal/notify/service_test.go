package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/clinicdesk/internal/doctors"
	"github.com/clinicdesk/clinicdesk/internal/events"
	"github.com/clinicdesk/clinicdesk/pkg/logging"
)

type captureSender struct {
	sent []EmailMessage
}

func (c *captureSender) Send(_ context.Context, msg EmailMessage) error {
	c.sent = append(c.sent, msg)
	return nil
}

type fakeDoctorStore struct{}

func (fakeDoctorStore) GetByID(_ context.Context, id string) (*doctors.Doctor, error) {
	return &doctors.Doctor{ID: id, Name: "Dr. Ada Osei"}, nil
}

func envelopeFor(t *testing.T, evt events.CanonicalEvent) events.Envelope {
	t.Helper()
	env, err := events.NewEnvelope("doctor:doc-1", "", evt)
	require.NoError(t, err)
	return env
}

func newTestNotify() (*Service, *captureSender) {
	sender := &captureSender{}
	return NewService(sender, fakeDoctorStore{}, logging.New("error")), sender
}

func TestBookedEventSendsConfirmation(t *testing.T) {
	svc, sender := newTestNotify()

	env := envelopeFor(t, events.AppointmentBookedV1{
		AppointmentID: "appt-1",
		DoctorID:      "doc-1",
		PatientName:   "Kofi Mensah",
		PatientEmail:  "kofi@example.com",
		Date:          "2026-09-01",
		StartTime:     "10:00:00",
		Status:        "scheduled",
	})
	require.NoError(t, svc.HandleEnvelope(context.Background(), env))

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "kofi@example.com", msg.To)
	assert.Equal(t, "Your appointment is booked", msg.Subject)
	assert.Contains(t, msg.Body, "Dr. Ada Osei")
	assert.Contains(t, msg.Body, "Tuesday, September 1 at 10:00 AM")
}

func TestPendingBookingSendsRequestReceived(t *testing.T) {
	svc, sender := newTestNotify()

	env := envelopeFor(t, events.AppointmentBookedV1{
		AppointmentID: "appt-1",
		DoctorID:      "doc-1",
		PatientEmail:  "kofi@example.com",
		Date:          "2026-09-01",
		StartTime:     "10:00:00",
		Status:        "pending",
	})
	require.NoError(t, svc.HandleEnvelope(context.Background(), env))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Your appointment request was received", sender.sent[0].Subject)
}

func TestStatusChangeEmails(t *testing.T) {
	cases := []struct {
		to      string
		subject string
	}{
		{"accepted", "Your appointment was confirmed"},
		{"refused", "Your appointment request was declined"},
		{"cancelled", "Your appointment was cancelled"},
	}
	for _, tc := range cases {
		svc, sender := newTestNotify()
		env := envelopeFor(t, events.AppointmentStatusChangedV1{
			AppointmentID: "appt-1",
			DoctorID:      "doc-1",
			PatientEmail:  "kofi@example.com",
			Date:          "2026-09-01",
			StartTime:     "10:00:00",
			ToStatus:      tc.to,
		})
		require.NoError(t, svc.HandleEnvelope(context.Background(), env))
		require.Len(t, sender.sent, 1, "status %s", tc.to)
		assert.Equal(t, tc.subject, sender.sent[0].Subject)
	}
}

func TestCompletedStatusSendsNothing(t *testing.T) {
	svc, sender := newTestNotify()

	env := envelopeFor(t, events.AppointmentStatusChangedV1{
		AppointmentID: "appt-1",
		PatientEmail:  "kofi@example.com",
		ToStatus:      "completed",
	})
	require.NoError(t, svc.HandleEnvelope(context.Background(), env))
	assert.Empty(t, sender.sent)
}

func TestRescheduledEventMentionsBothTimes(t *testing.T) {
	svc, sender := newTestNotify()

	env := envelopeFor(t, events.AppointmentRescheduledV1{
		AppointmentID: "appt-1",
		DoctorID:      "doc-1",
		PatientEmail:  "kofi@example.com",
		OldDate:       "2026-09-01",
		OldStartTime:  "10:00:00",
		NewDate:       "2026-09-02",
		NewStartTime:  "11:00:00",
	})
	require.NoError(t, svc.HandleEnvelope(context.Background(), env))

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Body, "September 1 at 10:00 AM")
	assert.Contains(t, sender.sent[0].Body, "September 2 at 11:00 AM")
}

func TestEmailsLinkToAppointmentWhenBaseURLSet(t *testing.T) {
	svc, sender := newTestNotify()
	svc = svc.WithBaseURL("https://clinicdesk.example.com/")

	env := envelopeFor(t, events.AppointmentBookedV1{
		AppointmentID: "appt-1",
		DoctorID:      "doc-1",
		PatientEmail:  "kofi@example.com",
		Date:          "2026-09-01",
		StartTime:     "10:00:00",
		Status:        "scheduled",
	})
	require.NoError(t, svc.HandleEnvelope(context.Background(), env))

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Body, "https://clinicdesk.example.com/appointments/appt-1")
}

func TestEmailsOmitLinkWithoutBaseURL(t *testing.T) {
	svc, sender := newTestNotify()

	env := envelopeFor(t, events.AppointmentBookedV1{
		AppointmentID: "appt-1",
		DoctorID:      "doc-1",
		PatientEmail:  "kofi@example.com",
		Date:          "2026-09-01",
		StartTime:     "10:00:00",
		Status:        "scheduled",
	})
	require.NoError(t, svc.HandleEnvelope(context.Background(), env))

	require.Len(t, sender.sent, 1)
	assert.NotContains(t, sender.sent[0].Body, "Manage this appointment")
	assert.Contains(t, sender.sent[0].Body, "— ClinicDesk")
}

func TestSkipsEventsWithoutEmail(t *testing.T) {
	svc, sender := newTestNotify()

	env := envelopeFor(t, events.AppointmentBookedV1{
		AppointmentID: "appt-1",
		DoctorID:      "doc-1",
		Date:          "2026-09-01",
		StartTime:     "10:00:00",
		Status:        "scheduled",
	})
	require.NoError(t, svc.HandleEnvelope(context.Background(), env))
	assert.Empty(t, sender.sent)
}

func TestSkipsUnknownEventTypes(t *testing.T) {
	svc, sender := newTestNotify()

	env := envelopeFor(t, events.PatientSharedV1{ShareID: "sh-1"})
	require.NoError(t, svc.HandleEnvelope(context.Background(), env))
	assert.Empty(t, sender.sent)
}
