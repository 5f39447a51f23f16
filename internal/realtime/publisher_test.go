package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/clinicdesk/internal/events"
)

func newTestPublisher(t *testing.T) (*Publisher, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewPublisher(client), mr
}

func bookedEnvelope(t *testing.T, doctorID string) events.Envelope {
	t.Helper()
	env, err := events.NewEnvelope("doctor:"+doctorID, "", events.AppointmentBookedV1{
		AppointmentID: "appt-1",
		DoctorID:      doctorID,
		PatientID:     "pat-1",
		Date:          "2026-09-01",
		StartTime:     "10:00:00",
		Status:        "scheduled",
	})
	require.NoError(t, err)
	return env
}

func TestPublishDeliversToSubscriber(t *testing.T) {
	p, _ := newTestPublisher(t)
	ctx := context.Background()

	sub := p.Subscribe(ctx, "doc-1")
	require.NotNil(t, sub)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	env := bookedEnvelope(t, "doc-1")
	require.NoError(t, p.Publish(ctx, "doc-1", env))

	select {
	case msg := <-sub.Channel():
		assert.Contains(t, msg.Payload, "appointment.booked.v1")
		assert.Equal(t, Channel("doc-1"), msg.Channel)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}

func TestPublishAppendsRecent(t *testing.T) {
	p, _ := newTestPublisher(t)
	ctx := context.Background()

	first := bookedEnvelope(t, "doc-1")
	second := bookedEnvelope(t, "doc-1")
	require.NoError(t, p.Publish(ctx, "doc-1", first))
	require.NoError(t, p.Publish(ctx, "doc-1", second))

	recent, err := p.Recent(ctx, "doc-1", 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	// Newest first.
	assert.Equal(t, second.EventID, recent[0].EventID)
	assert.Equal(t, first.EventID, recent[1].EventID)
}

func TestRecentIsScopedPerDoctor(t *testing.T) {
	p, _ := newTestPublisher(t)
	ctx := context.Background()

	require.NoError(t, p.Publish(ctx, "doc-1", bookedEnvelope(t, "doc-1")))

	recent, err := p.Recent(ctx, "doc-2", 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestPublishRequiresDoctorID(t *testing.T) {
	p, _ := newTestPublisher(t)

	err := p.Publish(context.Background(), "", bookedEnvelope(t, "doc-1"))
	assert.Error(t, err)
}

func TestNilPublisherIsNoop(t *testing.T) {
	var p *Publisher

	assert.NoError(t, p.Publish(context.Background(), "doc-1", events.Envelope{}))
	recent, err := p.Recent(context.Background(), "doc-1", 10)
	assert.NoError(t, err)
	assert.Nil(t, recent)
}
