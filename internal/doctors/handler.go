package doctors

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/clinicdesk/clinicdesk/internal/session"
	"github.com/clinicdesk/clinicdesk/pkg/logging"
)

// Handler handles HTTP requests for doctor profiles.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new doctors handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Search handles GET /doctors?specialty=&city= requests.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	filter := SearchFilter{
		Specialty: r.URL.Query().Get("specialty"),
		City:      r.URL.Query().Get("city"),
		Limit:     50,
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit <= 100 {
			filter.Limit = limit
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}

	results, err := h.repo.Search(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to search doctors", "error", err)
		http.Error(w, "failed to search doctors", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"doctors": results,
		"count":   len(results),
	})
}

// Get handles GET /doctors/{doctorID} requests.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "doctorID")
	if id == "" {
		http.Error(w, "missing doctor id", http.StatusBadRequest)
		return
	}

	doctor, err := h.repo.GetByID(r.Context(), id)
	if errors.Is(err, ErrDoctorNotFound) {
		http.Error(w, "doctor not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to load doctor", "error", err, "doctor_id", id)
		http.Error(w, "failed to load doctor", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(doctor)
}

// GetProfile handles GET /me/doctor for the authenticated doctor.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "missing session", http.StatusUnauthorized)
		return
	}

	doctor, err := h.repo.GetByUserID(r.Context(), s.UserID)
	if errors.Is(err, ErrDoctorNotFound) {
		http.Error(w, "doctor profile not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to load doctor profile", "error", err, "user_id", s.UserID)
		http.Error(w, "failed to load profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(doctor)
}

// UpsertProfile handles PUT /me/doctor requests.
func (h *Handler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "missing session", http.StatusUnauthorized)
		return
	}

	var req UpsertDoctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.UserID = s.UserID

	doctor, err := h.repo.Upsert(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingName), errors.Is(err, ErrMissingSpecialty), errors.Is(err, ErrBadDuration):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.Error("failed to save doctor profile", "error", err, "user_id", s.UserID)
			http.Error(w, "failed to save profile", http.StatusInternalServerError)
		}
		return
	}

	h.logger.Info("doctor profile saved", "doctor_id", doctor.ID, "user_id", s.UserID)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(doctor)
}
