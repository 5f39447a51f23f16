package appointments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clinicdesk/clinicdesk/internal/session"
	"github.com/clinicdesk/clinicdesk/pkg/logging"
)

// Handler handles HTTP requests for appointments.
type Handler struct {
	service *Service
	repo    Repository
	logger  *logging.Logger
}

// NewHandler creates a new appointments handler.
func NewHandler(service *Service, repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, repo: repo, logger: logger}
}

// Create handles POST /appointments requests.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	appt, err := h.service.Book(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err, "failed to book appointment")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(appt)
}

// Get handles GET /appointments/{appointmentID} requests.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "appointmentID")
	if id == "" {
		http.Error(w, "missing appointment id", http.StatusBadRequest)
		return
	}

	appt, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err, "failed to load appointment")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(appt)
}

// UpdateStatus handles PATCH /appointments/{appointmentID}/status requests.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "appointmentID")
	if id == "" {
		http.Error(w, "missing appointment id", http.StatusBadRequest)
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	appt, err := h.service.Transition(r.Context(), id, req.Status, req.Notes)
	if err != nil {
		h.writeError(w, r, err, "failed to update appointment status")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(appt)
}

// Reschedule handles PATCH /appointments/{appointmentID}/reschedule requests.
func (h *Handler) Reschedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "appointmentID")
	if id == "" {
		http.Error(w, "missing appointment id", http.StatusBadRequest)
		return
	}

	var req RescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	appt, err := h.service.Reschedule(r.Context(), id, &req)
	if err != nil {
		h.writeError(w, r, err, "failed to reschedule appointment")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(appt)
}

// ListForDoctor handles GET /me/appointments?date= or ?from=&to= for the
// authenticated doctor.
func (h *Handler) ListForDoctor(w http.ResponseWriter, r *http.Request) {
	s, ok := session.FromContext(r.Context())
	if !ok || s.DoctorID == "" {
		http.Error(w, "missing doctor session", http.StatusUnauthorized)
		return
	}

	q := r.URL.Query()
	var (
		appts []*Appointment
		err   error
	)
	switch {
	case q.Get("date") != "":
		appts, err = h.repo.ListByDoctorDate(r.Context(), s.DoctorID, q.Get("date"))
	case q.Get("from") != "" && q.Get("to") != "":
		appts, err = h.repo.ListByDoctorRange(r.Context(), s.DoctorID, q.Get("from"), q.Get("to"))
	default:
		http.Error(w, "date or from/to query required", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.writeError(w, r, err, "failed to list appointments")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"appointments": appts,
		"count":        len(appts),
	})
}

// ListPending handles GET /me/appointments/pending, the doctor's
// confirmation queue.
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	s, ok := session.FromContext(r.Context())
	if !ok || s.DoctorID == "" {
		http.Error(w, "missing doctor session", http.StatusUnauthorized)
		return
	}

	appts, err := h.repo.ListPendingForDoctor(r.Context(), s.DoctorID)
	if err != nil {
		h.writeError(w, r, err, "failed to list pending appointments")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"appointments": appts,
		"count":        len(appts),
	})
}

// ListByPatient handles GET /patients/{patientID}/appointments requests.
func (h *Handler) ListByPatient(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")
	if patientID == "" {
		http.Error(w, "missing patient id", http.StatusBadRequest)
		return
	}

	appts, err := h.repo.ListByPatient(r.Context(), patientID)
	if err != nil {
		h.writeError(w, r, err, "failed to list patient appointments")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"appointments": appts,
		"count":        len(appts),
	})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, ErrSlotTaken), errors.Is(err, ErrStatusConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrAppointmentNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrBadTransition), errors.Is(err, ErrUnknownStatus),
		errors.Is(err, ErrMissingDate), errors.Is(err, ErrMissingTime),
		errors.Is(err, ErrMissingDoctor), errors.Is(err, ErrMissingPatient):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error(fallback, "error", err, "path", r.URL.Path)
		http.Error(w, fallback, http.StatusInternalServerError)
	}
}
