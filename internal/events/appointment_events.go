package events

// AppointmentBookedV1 is emitted when an appointment row is created.
type AppointmentBookedV1 struct {
	AppointmentID string `json:"appointment_id"`
	DoctorID      string `json:"doctor_id"`
	PatientID     string `json:"patient_id"`
	PatientName   string `json:"patient_name,omitempty"`
	PatientEmail  string `json:"patient_email,omitempty"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	Status        string `json:"status"`
}

func (AppointmentBookedV1) EventType() string { return "appointment.booked.v1" }

// AppointmentStatusChangedV1 is emitted on every status transition.
type AppointmentStatusChangedV1 struct {
	AppointmentID string `json:"appointment_id"`
	DoctorID      string `json:"doctor_id"`
	PatientID     string `json:"patient_id"`
	PatientEmail  string `json:"patient_email,omitempty"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	FromStatus    string `json:"from_status"`
	ToStatus      string `json:"to_status"`
}

func (AppointmentStatusChangedV1) EventType() string { return "appointment.status_changed.v1" }

// AppointmentRescheduledV1 is emitted when date/time move.
type AppointmentRescheduledV1 struct {
	AppointmentID string `json:"appointment_id"`
	DoctorID      string `json:"doctor_id"`
	PatientID     string `json:"patient_id"`
	PatientEmail  string `json:"patient_email,omitempty"`
	OldDate       string `json:"old_date"`
	OldStartTime  string `json:"old_start_time"`
	NewDate       string `json:"new_date"`
	NewStartTime  string `json:"new_start_time"`
}

func (AppointmentRescheduledV1) EventType() string { return "appointment.rescheduled.v1" }

// PatientSharedV1 is emitted when one doctor grants another visibility
// into a patient record.
type PatientSharedV1 struct {
	ShareID      string `json:"share_id"`
	FromDoctorID string `json:"from_doctor_id"`
	ToDoctorID   string `json:"to_doctor_id"`
	PatientID    string `json:"patient_id"`
}

func (PatientSharedV1) EventType() string { return "patient.shared.v1" }
