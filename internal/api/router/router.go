package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/clinicdesk/clinicdesk/internal/analytics"
	"github.com/clinicdesk/clinicdesk/internal/appointments"
	"github.com/clinicdesk/clinicdesk/internal/availability"
	"github.com/clinicdesk/clinicdesk/internal/calendar"
	"github.com/clinicdesk/clinicdesk/internal/doctors"
	"github.com/clinicdesk/clinicdesk/internal/files"
	httpmiddleware "github.com/clinicdesk/clinicdesk/internal/http/middleware"
	"github.com/clinicdesk/clinicdesk/internal/patients"
	"github.com/clinicdesk/clinicdesk/internal/realtime"
	"github.com/clinicdesk/clinicdesk/internal/sharing"
	"github.com/clinicdesk/clinicdesk/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger *logging.Logger

	DoctorsHandler      *doctors.Handler
	PatientsHandler     *patients.Handler
	AppointmentsHandler *appointments.Handler
	AvailabilityHandler *availability.Handler
	CalendarHandler     *calendar.Handler
	SharingHandler      *sharing.Handler
	FilesHandler        *files.Handler
	AnalyticsHandler    *analytics.Handler
	RealtimeHandler     *realtime.Handler

	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	AuthSecret         string
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints: browsing doctors, resolving slots, booking.
	r.Group(func(public chi.Router) {
		public.Get("/healthz", handleHealth)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}

		public.Route("/doctors", func(r chi.Router) {
			r.Get("/", cfg.DoctorsHandler.Search)
			r.Route("/{doctorID}", func(r chi.Router) {
				r.Get("/", cfg.DoctorsHandler.Get)
				r.Get("/slots", cfg.AvailabilityHandler.GetSlots)
				r.Get("/calendar", cfg.AvailabilityHandler.MonthOverview)
			})
		})

		// Guest patients book without an account.
		public.Post("/appointments", cfg.AppointmentsHandler.Create)
	})

	// Authenticated routes.
	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(cfg.AuthSecret))

		private.Post("/patients", cfg.PatientsHandler.Create)

		private.Route("/me", func(me chi.Router) {
			me.Get("/doctor", cfg.DoctorsHandler.GetProfile)
			me.Put("/doctor", cfg.DoctorsHandler.UpsertProfile)

			// Everything below requires a doctor identity.
			me.Group(func(doctor chi.Router) {
				doctor.Use(httpmiddleware.RequireDoctor)

				doctor.Get("/appointments", cfg.AppointmentsHandler.ListForDoctor)
				doctor.Get("/appointments/pending", cfg.AppointmentsHandler.ListPending)
				doctor.Put("/availability", cfg.AvailabilityHandler.SetForDate)
				doctor.Get("/patients", cfg.PatientsHandler.ListMine)

				if cfg.CalendarHandler != nil {
					doctor.Get("/calendar/day", cfg.CalendarHandler.Day)
					doctor.Get("/calendar/week", cfg.CalendarHandler.Week)
				}

				doctor.Post("/shares", cfg.SharingHandler.Share)
				doctor.Get("/shares/received", cfg.SharingHandler.ListReceived)
				doctor.Get("/shares/sent", cfg.SharingHandler.ListSent)
				doctor.Delete("/shares/{shareID}", cfg.SharingHandler.Revoke)

				if cfg.FilesHandler != nil {
					doctor.Post("/photo", cfg.FilesHandler.UploadPhoto)
				}
				if cfg.AnalyticsHandler != nil {
					doctor.Get("/analytics", cfg.AnalyticsHandler.Summary)
				}
				if cfg.RealtimeHandler != nil {
					doctor.Get("/events", cfg.RealtimeHandler.HandleWebSocket)
					doctor.Get("/notifications", cfg.RealtimeHandler.HandleRecent)
				}
			})
		})

		private.Route("/appointments/{appointmentID}", func(r chi.Router) {
			r.Get("/", cfg.AppointmentsHandler.Get)
			r.With(httpmiddleware.RequireDoctor).Patch("/status", cfg.AppointmentsHandler.UpdateStatus)
			r.Patch("/reschedule", cfg.AppointmentsHandler.Reschedule)
		})

		private.Route("/patients/{patientID}", func(r chi.Router) {
			r.Get("/", cfg.PatientsHandler.Get)
			r.Get("/appointments", cfg.AppointmentsHandler.ListByPatient)
			if cfg.FilesHandler != nil {
				r.With(httpmiddleware.RequireDoctor).Post("/files", cfg.FilesHandler.Upload)
				r.Get("/files", cfg.FilesHandler.List)
			}
		})

		if cfg.FilesHandler != nil {
			private.Route("/files/{fileID}", func(r chi.Router) {
				r.Get("/", cfg.FilesHandler.Download)
				r.With(httpmiddleware.RequireDoctor).Delete("/", cfg.FilesHandler.Delete)
			})
		}
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
