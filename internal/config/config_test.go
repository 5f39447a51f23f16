package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.DefaultAppointmentDuration != 60 {
		t.Errorf("expected default duration 60, got %d", cfg.DefaultAppointmentDuration)
	}
	if cfg.DefaultDayStart != "09:00:00" || cfg.DefaultDayEnd != "17:00:00" {
		t.Errorf("unexpected default working hours: %s-%s", cfg.DefaultDayStart, cfg.DefaultDayEnd)
	}
	if cfg.NotifyPollWait != 20*time.Second {
		t.Errorf("expected default poll wait 20s, got %s", cfg.NotifyPollWait)
	}
	if cfg.EmailProvider != "ses" {
		t.Errorf("expected default email provider ses, got %s", cfg.EmailProvider)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DEFAULT_APPOINTMENT_DURATION_MIN", "30")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("NOTIFY_POLL_WAIT", "5s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.DefaultAppointmentDuration != 30 {
		t.Errorf("expected duration 30, got %d", cfg.DefaultAppointmentDuration)
	}
	if !cfg.RedisTLS {
		t.Error("expected RedisTLS true")
	}
	if cfg.NotifyPollWait != 5*time.Second {
		t.Errorf("expected 5s poll wait, got %s", cfg.NotifyPollWait)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://admin.example.com" {
		t.Errorf("unexpected CORS origins: %v", cfg.CORSAllowedOrigins)
	}
}

func TestGetEnvAsIntIgnoresGarbage(t *testing.T) {
	t.Setenv("DEFAULT_APPOINTMENT_DURATION_MIN", "not-a-number")
	cfg := Load()
	if cfg.DefaultAppointmentDuration != 60 {
		t.Errorf("expected fallback 60, got %d", cfg.DefaultAppointmentDuration)
	}
}
