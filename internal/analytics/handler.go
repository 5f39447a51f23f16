package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/clinicdesk/clinicdesk/internal/appointments"
	"github.com/clinicdesk/clinicdesk/internal/session"
	"github.com/clinicdesk/clinicdesk/pkg/logging"
)

// Reader is the aggregate store the handler reads from.
type Reader interface {
	CountsByStatus(ctx context.Context, doctorID, from, to string, statuses []string) ([]StatusCount, error)
	BookingsPerDay(ctx context.Context, doctorID, from, to string) ([]DayCount, error)
}

// reportStatuses are the statuses broken out on the dashboard.
var reportStatuses = []string{
	string(appointments.StatusPending),
	string(appointments.StatusScheduled),
	string(appointments.StatusAccepted),
	string(appointments.StatusRefused),
	string(appointments.StatusCompleted),
	string(appointments.StatusCancelled),
	string(appointments.StatusNoShow),
}

// Handler serves the per-doctor analytics summary.
type Handler struct {
	repo    Reader
	logger  *logging.Logger
	nowFunc func() time.Time
}

// NewHandler creates an analytics handler.
func NewHandler(repo Reader, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger, nowFunc: time.Now}
}

// Summary handles GET /me/analytics?from=&to= for the authenticated
// doctor. The range defaults to the trailing 30 days.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	s, ok := session.FromContext(r.Context())
	if !ok || s.DoctorID == "" {
		http.Error(w, "missing doctor session", http.StatusUnauthorized)
		return
	}

	now := h.nowFunc()
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		to = now.Format(appointments.DateFormat)
		from = now.AddDate(0, 0, -29).Format(appointments.DateFormat)
	}
	if _, err := time.Parse(appointments.DateFormat, from); err != nil {
		http.Error(w, "invalid from date", http.StatusBadRequest)
		return
	}
	if _, err := time.Parse(appointments.DateFormat, to); err != nil {
		http.Error(w, "invalid to date", http.StatusBadRequest)
		return
	}

	byStatus, err := h.repo.CountsByStatus(r.Context(), s.DoctorID, from, to, reportStatuses)
	if err != nil {
		h.logger.Error("failed to load status counts", "error", err, "doctor_id", s.DoctorID)
		http.Error(w, "failed to load analytics", http.StatusInternalServerError)
		return
	}
	perDay, err := h.repo.BookingsPerDay(r.Context(), s.DoctorID, from, to)
	if err != nil {
		h.logger.Error("failed to load daily counts", "error", err, "doctor_id", s.DoctorID)
		http.Error(w, "failed to load analytics", http.StatusInternalServerError)
		return
	}

	total := 0
	for _, sc := range byStatus {
		total += sc.Count
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(Summary{
		DoctorID: s.DoctorID,
		From:     from,
		To:       to,
		Total:    total,
		ByStatus: byStatus,
		PerDay:   perDay,
	})
}
