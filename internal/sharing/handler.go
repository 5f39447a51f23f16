package sharing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clinicdesk/clinicdesk/internal/events"
	"github.com/clinicdesk/clinicdesk/internal/session"
	"github.com/clinicdesk/clinicdesk/pkg/logging"
)

// EventSink receives share event envelopes, typically the realtime feed
// of the receiving doctor.
type EventSink interface {
	Publish(ctx context.Context, doctorID string, env events.Envelope) error
}

// Handler handles HTTP requests for patient-record sharing.
type Handler struct {
	repo   Repository
	sinks  []EventSink
	logger *logging.Logger
}

// NewHandler creates a new sharing handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// WithEventSink registers a sink notified on new shares.
func (h *Handler) WithEventSink(sink EventSink) *Handler {
	if sink != nil {
		h.sinks = append(h.sinks, sink)
	}
	return h
}

// Share handles POST /me/shares requests.
func (h *Handler) Share(w http.ResponseWriter, r *http.Request) {
	s, ok := session.FromContext(r.Context())
	if !ok || s.DoctorID == "" {
		http.Error(w, "missing doctor session", http.StatusUnauthorized)
		return
	}

	var req ShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(s.DoctorID); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rec, err := h.repo.Share(r.Context(), s.DoctorID, &req)
	if err != nil {
		h.logger.Error("failed to share patient record", "error", err, "doctor_id", s.DoctorID)
		http.Error(w, "failed to share patient record", http.StatusInternalServerError)
		return
	}

	h.logger.Info("patient record shared",
		"share_id", rec.ID,
		"from_doctor_id", rec.FromDoctorID,
		"to_doctor_id", rec.ToDoctorID,
	)
	h.notify(r.Context(), rec)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(rec)
}

// ListReceived handles GET /me/shares/received requests.
func (h *Handler) ListReceived(w http.ResponseWriter, r *http.Request) {
	h.listWith(w, r, h.repo.ListReceived)
}

// ListSent handles GET /me/shares/sent requests.
func (h *Handler) ListSent(w http.ResponseWriter, r *http.Request) {
	h.listWith(w, r, h.repo.ListSent)
}

// Revoke handles DELETE /me/shares/{shareID} requests.
func (h *Handler) Revoke(w http.ResponseWriter, r *http.Request) {
	s, ok := session.FromContext(r.Context())
	if !ok || s.DoctorID == "" {
		http.Error(w, "missing doctor session", http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "shareID")
	if id == "" {
		http.Error(w, "missing share id", http.StatusBadRequest)
		return
	}

	err := h.repo.Revoke(r.Context(), id, s.DoctorID)
	if errors.Is(err, ErrShareNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to revoke share", "error", err, "share_id", id)
		http.Error(w, "failed to revoke share", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listWith(w http.ResponseWriter, r *http.Request, fetch func(context.Context, string) ([]*SharedRecord, error)) {
	s, ok := session.FromContext(r.Context())
	if !ok || s.DoctorID == "" {
		http.Error(w, "missing doctor session", http.StatusUnauthorized)
		return
	}

	shares, err := fetch(r.Context(), s.DoctorID)
	if err != nil {
		h.logger.Error("failed to list shares", "error", err, "doctor_id", s.DoctorID)
		http.Error(w, "failed to list shares", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"shares": shares,
		"count":  len(shares),
	})
}

func (h *Handler) notify(ctx context.Context, rec *SharedRecord) {
	if len(h.sinks) == 0 {
		return
	}
	env, err := events.NewEnvelope("doctor:"+rec.ToDoctorID, "", events.PatientSharedV1{
		ShareID:      rec.ID,
		FromDoctorID: rec.FromDoctorID,
		ToDoctorID:   rec.ToDoctorID,
		PatientID:    rec.PatientID,
	})
	if err != nil {
		h.logger.Error("failed to build share event", "error", err, "share_id", rec.ID)
		return
	}
	for _, sink := range h.sinks {
		if err := sink.Publish(ctx, rec.ToDoctorID, env); err != nil {
			h.logger.Warn("share event publish failed", "error", err, "share_id", rec.ID)
		}
	}
}
