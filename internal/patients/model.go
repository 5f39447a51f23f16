package patients

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrMissingName is returned when the patient name is empty
	ErrMissingName = errors.New("patient name is required")

	// ErrMissingContact is returned when both email and phone are missing
	ErrMissingContact = errors.New("either email or phone is required")

	// ErrPatientNotFound is returned when a patient is not found
	ErrPatientNotFound = errors.New("patient not found")
)

// Patient is a person who books appointments. Guest patients are created
// inline during booking and have no linked user account.
type Patient struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Guest     bool      `json:"guest"`
	CreatedAt time.Time `json:"created_at"`
}

// CreatePatientRequest is the payload for creating a patient row.
type CreatePatientRequest struct {
	UserID string `json:"-"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Guest  bool   `json:"-"`
}

// Validate checks required patient fields.
func (r *CreatePatientRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrMissingName
	}
	if strings.TrimSpace(r.Email) == "" && strings.TrimSpace(r.Phone) == "" {
		return ErrMissingContact
	}
	return nil
}
