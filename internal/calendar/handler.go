package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/clinicdesk/clinicdesk/internal/appointments"
	"github.com/clinicdesk/clinicdesk/internal/availability"
	"github.com/clinicdesk/clinicdesk/internal/doctors"
	"github.com/clinicdesk/clinicdesk/internal/session"
	"github.com/clinicdesk/clinicdesk/pkg/logging"
)

// AppointmentStore lists the appointments the week grid lays out.
type AppointmentStore interface {
	ListByDoctorRange(ctx context.Context, doctorID, fromDate, toDate string) ([]*appointments.Appointment, error)
}

// SlotResolver resolves a doctor's slot list for the day sidebar.
type SlotResolver interface {
	Resolve(ctx context.Context, doctorID, date string) ([]availability.Slot, error)
}

// DoctorStore resolves the doctor whose visit duration sizes the blocks.
type DoctorStore interface {
	GetByID(ctx context.Context, id string) (*doctors.Doctor, error)
}

// Handler serves the doctor's day and week calendar views.
type Handler struct {
	appts           AppointmentStore
	slots           SlotResolver
	doctors         DoctorStore
	logger          *logging.Logger
	defaultDuration int
}

// NewHandler creates a calendar handler.
func NewHandler(appts AppointmentStore, slots SlotResolver, doctorStore DoctorStore, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		appts:           appts,
		slots:           slots,
		doctors:         doctorStore,
		logger:          logger,
		defaultDuration: doctors.DefaultAppointmentDuration,
	}
}

// WithDefaultDuration overrides the fallback visit duration in minutes
// used when a doctor has not configured one.
func (h *Handler) WithDefaultDuration(min int) *Handler {
	if min > 0 {
		h.defaultDuration = min
	}
	return h
}

// Day handles GET /me/calendar/day?date= for the authenticated doctor:
// the resolved slot list rendered as sidebar rows.
func (h *Handler) Day(w http.ResponseWriter, r *http.Request) {
	s, ok := session.FromContext(r.Context())
	if !ok || s.DoctorID == "" {
		http.Error(w, "missing doctor session", http.StatusUnauthorized)
		return
	}

	date := r.URL.Query().Get("date")
	slots, err := h.slots.Resolve(r.Context(), s.DoctorID, date)
	if err != nil {
		h.writeError(w, r, err, "failed to build day view")
		return
	}

	rows := DayView(slots)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"date":  date,
		"slots": rows,
		"count": len(rows),
	})
}

// Week handles GET /me/calendar/week?start= for the authenticated
// doctor: seven days of appointments laid out on the pixel grid, block
// heights sized by the doctor's visit duration.
func (h *Handler) Week(w http.ResponseWriter, r *http.Request) {
	s, ok := session.FromContext(r.Context())
	if !ok || s.DoctorID == "" {
		http.Error(w, "missing doctor session", http.StatusUnauthorized)
		return
	}

	start := r.URL.Query().Get("start")
	from, err := time.Parse(appointments.DateFormat, start)
	if err != nil {
		http.Error(w, "valid start date required", http.StatusBadRequest)
		return
	}
	to := from.AddDate(0, 0, 6).Format(appointments.DateFormat)

	appts, err := h.appts.ListByDoctorRange(r.Context(), s.DoctorID, start, to)
	if err != nil {
		h.writeError(w, r, err, "failed to build week view")
		return
	}

	blocks := WeekView(appts, h.visitDuration(r.Context(), s.DoctorID))
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"from":   start,
		"to":     to,
		"blocks": blocks,
		"count":  len(blocks),
	})
}

// visitDuration resolves the doctor's configured visit duration, falling
// back to the handler default when the profile has none.
func (h *Handler) visitDuration(ctx context.Context, doctorID string) int {
	if h.doctors != nil {
		if d, err := h.doctors.GetByID(ctx, doctorID); err == nil && d.AppointmentDuration > 0 {
			return d.AppointmentDuration
		}
	}
	return h.defaultDuration
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, availability.ErrBadDate), errors.Is(err, availability.ErrMissingDoctor):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error(fallback, "error", err, "path", r.URL.Path)
		http.Error(w, fallback, http.StatusInternalServerError)
	}
}
