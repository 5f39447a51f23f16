package availability

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clinicdesk/clinicdesk/internal/session"
	"github.com/clinicdesk/clinicdesk/pkg/logging"
)

// Handler handles HTTP requests for availability.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new availability handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// GetSlots handles GET /doctors/{doctorID}/slots?date= requests. It is
// public so patients can browse before booking.
func (h *Handler) GetSlots(w http.ResponseWriter, r *http.Request) {
	doctorID := chi.URLParam(r, "doctorID")
	date := r.URL.Query().Get("date")

	slots, err := h.service.Resolve(r.Context(), doctorID, date)
	if err != nil {
		h.writeError(w, r, err, "failed to resolve slots")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"date":  date,
		"slots": slots,
	})
}

// SetForDate handles PUT /me/availability requests for the
// authenticated doctor.
func (h *Handler) SetForDate(w http.ResponseWriter, r *http.Request) {
	s, ok := session.FromContext(r.Context())
	if !ok || s.DoctorID == "" {
		http.Error(w, "missing doctor session", http.StatusUnauthorized)
		return
	}

	var req SetAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.SetForDate(r.Context(), s.DoctorID, &req); err != nil {
		h.writeError(w, r, err, "failed to save availability")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"date":  req.Date,
		"slots": len(req.Times),
	})
}

// MonthOverview handles GET /doctors/{doctorID}/calendar?year=&month=
// requests for the monthly coloring view.
func (h *Handler) MonthOverview(w http.ResponseWriter, r *http.Request) {
	doctorID := chi.URLParam(r, "doctorID")

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 1 {
		http.Error(w, "valid year query required", http.StatusBadRequest)
		return
	}
	monthNum, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || monthNum < 1 || monthNum > 12 {
		http.Error(w, "valid month query required", http.StatusBadRequest)
		return
	}

	days, err := h.service.MonthOverview(r.Context(), doctorID, year, time.Month(monthNum))
	if err != nil {
		h.writeError(w, r, err, "failed to build month overview")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"year":  year,
		"month": monthNum,
		"days":  days,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, ErrBadDate), errors.Is(err, ErrBadTime), errors.Is(err, ErrMissingDoctor):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error(fallback, "error", err, "path", r.URL.Path)
		http.Error(w, fallback, http.StatusInternalServerError)
	}
}
