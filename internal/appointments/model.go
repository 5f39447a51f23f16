package appointments

import (
	"strings"
	"time"

	"github.com/clinicdesk/clinicdesk/internal/patients"
)

// DateFormat is the wire format for appointment dates.
const DateFormat = "2006-01-02"

// TimeFormat is the wire format for slot start times.
const TimeFormat = "15:04:05"

// Appointment is one booked visit. Date and StartTime are kept as the
// canonical "YYYY-MM-DD" / "HH:MM:SS" strings used throughout the slot
// logic; HH:MM:SS sorts chronologically as a plain string.
type Appointment struct {
	ID        string    `json:"id"`
	DoctorID  string    `json:"doctor_id"`
	PatientID string    `json:"patient_id"`
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"`
	Status    Status    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Joined for dashboard views; not always populated.
	PatientName  string `json:"patient_name,omitempty"`
	PatientEmail string `json:"patient_email,omitempty"`
}

// EndTime computes the exclusive end of the visit from the doctor's
// resolved duration in minutes.
func (a *Appointment) EndTime(durationMin int) (string, error) {
	start, err := time.Parse(TimeFormat, a.StartTime)
	if err != nil {
		return "", err
	}
	return start.Add(time.Duration(durationMin) * time.Minute).Format(TimeFormat), nil
}

// CreateAppointmentRequest books a slot for an existing patient or a
// guest created inline.
type CreateAppointmentRequest struct {
	DoctorID  string `json:"doctor_id"`
	PatientID string `json:"patient_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	Notes     string `json:"notes"`
	// Pending requests the doctor's confirmation instead of booking directly.
	Pending bool `json:"pending"`

	// Guest patient details, used when PatientID is empty.
	NewPatient *patients.CreatePatientRequest `json:"new_patient,omitempty"`
}

// Validate checks presence of the slot and a patient identity.
func (r *CreateAppointmentRequest) Validate() error {
	if strings.TrimSpace(r.DoctorID) == "" {
		return ErrMissingDoctor
	}
	if _, err := time.Parse(DateFormat, r.Date); err != nil {
		return ErrMissingDate
	}
	if _, err := time.Parse(TimeFormat, r.StartTime); err != nil {
		return ErrMissingTime
	}
	if strings.TrimSpace(r.PatientID) == "" && r.NewPatient == nil {
		return ErrMissingPatient
	}
	return nil
}

// InitialStatus picks the status for a fresh booking.
func (r *CreateAppointmentRequest) InitialStatus() Status {
	if r.Pending {
		return StatusPending
	}
	return StatusScheduled
}

// RescheduleRequest moves an appointment to a new date/time.
type RescheduleRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
}

// Validate checks the target date and time are well formed.
func (r *RescheduleRequest) Validate() error {
	if _, err := time.Parse(DateFormat, r.Date); err != nil {
		return ErrMissingDate
	}
	if _, err := time.Parse(TimeFormat, r.StartTime); err != nil {
		return ErrMissingTime
	}
	return nil
}

// UpdateStatusRequest transitions an appointment's status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}
