package doctors

import (
	"strings"
	"time"
)

// DefaultAppointmentDuration is used when a doctor has not configured
// a per-visit duration.
const DefaultAppointmentDuration = 60

// Doctor is a provider profile. Appointment duration is minutes per visit
// and is the single source of truth for every end-time computation.
type Doctor struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"user_id"`
	Name                string    `json:"name"`
	Specialty           string    `json:"specialty"`
	City                string    `json:"city"`
	ConsultationFee     int       `json:"consultation_fee_cents"`
	AppointmentDuration int       `json:"appointment_duration_min"`
	Bio                 string    `json:"bio,omitempty"`
	PhotoPath           string    `json:"photo_path,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Duration returns the configured appointment duration, falling back to
// the default when unset.
func (d *Doctor) Duration() int {
	if d == nil || d.AppointmentDuration <= 0 {
		return DefaultAppointmentDuration
	}
	return d.AppointmentDuration
}

// UpsertDoctorRequest is the profile create/update payload.
type UpsertDoctorRequest struct {
	UserID              string `json:"-"`
	Name                string `json:"name"`
	Specialty           string `json:"specialty"`
	City                string `json:"city"`
	ConsultationFee     int    `json:"consultation_fee_cents"`
	AppointmentDuration int    `json:"appointment_duration_min"`
	Bio                 string `json:"bio"`
}

// Validate checks required profile fields.
func (r *UpsertDoctorRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return ErrMissingUserID
	}
	if strings.TrimSpace(r.Name) == "" {
		return ErrMissingName
	}
	if strings.TrimSpace(r.Specialty) == "" {
		return ErrMissingSpecialty
	}
	if r.AppointmentDuration < 0 {
		return ErrBadDuration
	}
	return nil
}

// SearchFilter narrows doctor search results.
type SearchFilter struct {
	Specialty string
	City      string
	Limit     int
	Offset    int
}
