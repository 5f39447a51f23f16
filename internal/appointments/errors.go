package appointments

import "errors"

var (
	// ErrMissingTime is returned when no time slot was chosen
	ErrMissingTime = errors.New("a time slot is required")

	// ErrMissingDate is returned when the appointment date is absent or malformed
	ErrMissingDate = errors.New("a valid date is required")

	// ErrMissingPatient is returned when neither an existing patient id nor
	// guest details are supplied
	ErrMissingPatient = errors.New("a patient identity is required")

	// ErrMissingDoctor is returned when the doctor reference is absent
	ErrMissingDoctor = errors.New("a doctor is required")

	// ErrSlotTaken is returned when the chosen slot already has an active booking
	ErrSlotTaken = errors.New("time slot is already booked")

	// ErrAppointmentNotFound is returned when an appointment is not found
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrUnknownStatus is returned for a status outside the closed set
	ErrUnknownStatus = errors.New("unknown appointment status")

	// ErrBadTransition is returned for an illegal status transition
	ErrBadTransition = errors.New("illegal status transition")

	// ErrStatusConflict is returned when the status moved under a
	// concurrent transition between read and write
	ErrStatusConflict = errors.New("appointment status changed concurrently")
)
