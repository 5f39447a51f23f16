package doctors

import "errors"

var (
	// ErrMissingUserID is returned when no authenticated user backs the profile
	ErrMissingUserID = errors.New("user id is required")

	// ErrMissingName is returned when the profile name is empty
	ErrMissingName = errors.New("name is required")

	// ErrMissingSpecialty is returned when the specialty is empty
	ErrMissingSpecialty = errors.New("specialty is required")

	// ErrBadDuration is returned for a negative appointment duration
	ErrBadDuration = errors.New("appointment duration must be positive")

	// ErrDoctorNotFound is returned when a doctor is not found
	ErrDoctorNotFound = errors.New("doctor not found")
)
