package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/clinicdesk/clinicdesk/cmd/mainconfig"
	"github.com/clinicdesk/clinicdesk/internal/analytics"
	"github.com/clinicdesk/clinicdesk/internal/api/router"
	"github.com/clinicdesk/clinicdesk/internal/appointments"
	"github.com/clinicdesk/clinicdesk/internal/availability"
	"github.com/clinicdesk/clinicdesk/internal/calendar"
	appconfig "github.com/clinicdesk/clinicdesk/internal/config"
	"github.com/clinicdesk/clinicdesk/internal/doctors"
	"github.com/clinicdesk/clinicdesk/internal/events"
	"github.com/clinicdesk/clinicdesk/internal/files"
	"github.com/clinicdesk/clinicdesk/internal/notify"
	"github.com/clinicdesk/clinicdesk/internal/observability/metrics"
	"github.com/clinicdesk/clinicdesk/internal/patients"
	"github.com/clinicdesk/clinicdesk/internal/realtime"
	"github.com/clinicdesk/clinicdesk/internal/sharing"
	"github.com/clinicdesk/clinicdesk/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinicdesk API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create pgx pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("database unreachable", "error", err)
		os.Exit(1)
	}

	// database/sql view of the same pool for the analytics aggregates.
	sqlDB := stdlib.OpenDBFromPool(pool)
	defer func() { _ = sqlDB.Close() }()

	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() { _ = redisClient.Close() }()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	s3Client := s3.NewFromConfig(awsCfg)
	sqsClient := sqs.NewFromConfig(awsCfg)

	bookingMetrics := metrics.NewBookingMetrics(prometheus.DefaultRegisterer)

	doctorRepo := doctors.NewPostgresRepository(pool)
	patientRepo := patients.NewPostgresRepository(pool)
	apptRepo := appointments.NewPostgresRepository(pool)
	availabilityRepo := availability.NewPostgresRepository(pool)
	sharingRepo := sharing.NewPostgresRepository(pool)
	fileRepo := files.NewPostgresRepository(pool)
	analyticsRepo := analytics.NewRepository(sqlDB)

	outbox := events.NewOutboxSink(pool)
	publisher := realtime.NewPublisher(redisClient).WithMetrics(bookingMetrics)

	apptService := appointments.NewService(apptRepo, patientRepo, doctorRepo, logger).
		WithMetrics(bookingMetrics).
		WithEventSink(outbox).
		WithEventSink(publisher)
	if cfg.NotificationQueueURL != "" {
		apptService = apptService.WithEventSink(notify.NewQueue(sqsClient, cfg.NotificationQueueURL))
	} else {
		logger.Warn("NOTIFICATION_QUEUE_URL not set, email notifications disabled")
	}

	availabilityService := availability.NewService(availabilityRepo, logger).
		WithMetrics(bookingMetrics).
		WithWorkingHours(cfg.DefaultDayStart, cfg.DefaultDayEnd)

	fileStore := files.NewStore(s3Client, cfg.PatientFilesBucket, logger)
	photoStore := files.NewStore(s3Client, cfg.PhotosBucket, logger)

	routerCfg := &router.Config{
		Logger:              logger,
		DoctorsHandler:      doctors.NewHandler(doctorRepo, logger),
		PatientsHandler:     patients.NewHandler(patientRepo, logger),
		AppointmentsHandler: appointments.NewHandler(apptService, apptRepo, logger),
		AvailabilityHandler: availability.NewHandler(availabilityService, logger),
		CalendarHandler: calendar.NewHandler(apptRepo, availabilityService, doctorRepo, logger).
			WithDefaultDuration(cfg.DefaultAppointmentDuration),
		SharingHandler: sharing.NewHandler(sharingRepo, logger).
			WithEventSink(outbox).
			WithEventSink(publisher),
		FilesHandler:       files.NewHandler(fileRepo, fileStore, photoStore, doctorRepo, logger),
		AnalyticsHandler:   analytics.NewHandler(analyticsRepo, logger),
		RealtimeHandler:    realtime.NewHandler(publisher, logger),
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AuthSecret:         cfg.AuthJWTSecret,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
