package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

type stubExec struct {
	sql  string
	args []any
}

func (s *stubExec) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	s.sql = sql
	s.args = args
	return pgconn.CommandTag{}, nil
}

type badEvent struct{}

func (badEvent) EventType() string { return "" }

func TestNewEnvelope(t *testing.T) {
	fixedNow := time.Unix(0, 123456000).UTC()
	prevNow := nowFunc
	nowFunc = func() time.Time { return fixedNow }
	defer func() { nowFunc = prevNow }()

	id := uuid.MustParse("9a20d7d1-bf6a-4d33-bd55-5d25a816f1a8")
	env, err := NewEnvelope("doctor:doc-1", "corr-1", AppointmentBookedV1{
		AppointmentID: "apt-1",
		DoctorID:      "doc-1",
		PatientID:     "pat-1",
		Date:          "2024-05-01",
		StartTime:     "09:00:00",
		Status:        "scheduled",
	}, WithEventID(id))
	if err != nil {
		t.Fatalf("NewEnvelope returned error: %v", err)
	}

	if env.EventID != id {
		t.Errorf("expected overridden event id, got %s", env.EventID)
	}
	if env.EventType != "appointment.booked.v1" {
		t.Errorf("unexpected event type %s", env.EventType)
	}
	if env.Aggregate != "doctor:doc-1" {
		t.Errorf("unexpected aggregate %s", env.Aggregate)
	}
	if env.TimestampMicros != fixedNow.UnixMicro() {
		t.Errorf("unexpected timestamp %d", env.TimestampMicros)
	}

	var payload AppointmentBookedV1
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.StartTime != "09:00:00" {
		t.Errorf("payload round trip lost start time: %+v", payload)
	}
}

func TestNewEnvelopeValidation(t *testing.T) {
	if _, err := NewEnvelope("", "", AppointmentBookedV1{}); err == nil {
		t.Error("expected error for missing aggregate")
	}
	if _, err := NewEnvelope("doctor:1", "", nil); err == nil {
		t.Error("expected error for nil event")
	}
	if _, err := NewEnvelope("doctor:1", "", badEvent{}); err == nil {
		t.Error("expected error for empty event type")
	}
}

func TestAppendToOutbox(t *testing.T) {
	exec := &stubExec{}
	env, err := AppendToOutbox(context.Background(), exec, "doctor:doc-1", "", AppointmentStatusChangedV1{
		AppointmentID: "apt-1",
		FromStatus:    "pending",
		ToStatus:      "accepted",
	})
	if err != nil {
		t.Fatalf("AppendToOutbox returned error: %v", err)
	}
	if len(exec.args) != 4 {
		t.Fatalf("expected 4 insert args, got %d", len(exec.args))
	}
	if exec.args[2] != "appointment.status_changed.v1" {
		t.Errorf("unexpected event_type arg: %v", exec.args[2])
	}
	if env.EventID == uuid.Nil {
		t.Error("expected generated event id")
	}
}
