package sharing

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrMissingPatient is returned when the patient reference is absent
	ErrMissingPatient = errors.New("a patient is required")

	// ErrMissingDoctor is returned when the receiving doctor is absent
	ErrMissingDoctor = errors.New("a receiving doctor is required")

	// ErrSelfShare is returned when a doctor shares a record with themselves
	ErrSelfShare = errors.New("cannot share a record with yourself")

	// ErrShareNotFound is returned when a share row is not found
	ErrShareNotFound = errors.New("shared record not found")
)

// SharedRecord grants one doctor visibility into another doctor's
// patient. Revoking flips Active instead of deleting the row, keeping
// the audit trail.
type SharedRecord struct {
	ID           string    `json:"id"`
	FromDoctorID string    `json:"from_doctor_id"`
	ToDoctorID   string    `json:"to_doctor_id"`
	PatientID    string    `json:"patient_id"`
	Notes        string    `json:"notes,omitempty"`
	Active       bool      `json:"active"`
	SharedAt     time.Time `json:"shared_at"`

	// Joined for listing; not always populated.
	PatientName    string `json:"patient_name,omitempty"`
	FromDoctorName string `json:"from_doctor_name,omitempty"`
}

// ShareRequest creates a new share from the authenticated doctor.
type ShareRequest struct {
	ToDoctorID string `json:"to_doctor_id"`
	PatientID  string `json:"patient_id"`
	Notes      string `json:"notes"`
}

// Validate checks the share references, fromDoctorID being the sharer.
func (r *ShareRequest) Validate(fromDoctorID string) error {
	if strings.TrimSpace(r.PatientID) == "" {
		return ErrMissingPatient
	}
	if strings.TrimSpace(r.ToDoctorID) == "" {
		return ErrMissingDoctor
	}
	if r.ToDoctorID == fromDoctorID {
		return ErrSelfShare
	}
	return nil
}
