package session

import (
	"context"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	ctx := WithSession(context.Background(), Session{UserID: "u-1", DoctorID: "d-1", Role: "doctor"})

	s, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected session in context")
	}
	if s.UserID != "u-1" || s.DoctorID != "d-1" {
		t.Fatalf("unexpected session: %+v", s)
	}
	if !s.IsDoctor() {
		t.Error("expected IsDoctor true")
	}
}

func TestMissingSession(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Fatal("expected no session in empty context")
	}
}

func TestEmptyUserIDRejected(t *testing.T) {
	ctx := WithSession(context.Background(), Session{})
	if _, ok := FromContext(ctx); ok {
		t.Fatal("expected empty session to be treated as absent")
	}
}
