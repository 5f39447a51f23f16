package notify

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/clinicdesk/internal/events"
)

type fakeSQS struct {
	sent    []string
	pending []sqstypes.Message
	deleted []string
}

func (f *fakeSQS) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.sent = append(f.sent, aws.ToString(params.MessageBody))
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-1")}, nil
}

func (f *fakeSQS) ReceiveMessage(_ context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	out := &sqs.ReceiveMessageOutput{Messages: f.pending}
	f.pending = nil
	return out, nil
}

func (f *fakeSQS) DeleteMessage(_ context.Context, params *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(params.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func TestQueuePublishEnqueuesEnvelope(t *testing.T) {
	client := &fakeSQS{}
	q := NewQueue(client, "https://sqs.example/notify")

	env, err := events.NewEnvelope("doctor:doc-1", "", events.AppointmentBookedV1{
		AppointmentID: "appt-1",
		DoctorID:      "doc-1",
	})
	require.NoError(t, err)

	require.NoError(t, q.Publish(context.Background(), "doc-1", env))
	require.Len(t, client.sent, 1)
	assert.Contains(t, client.sent[0], "appointment.booked.v1")
}

func TestQueueReceiveMapsMessages(t *testing.T) {
	client := &fakeSQS{pending: []sqstypes.Message{{
		MessageId:     aws.String("msg-1"),
		Body:          aws.String(`{"event_type":"appointment.booked.v1"}`),
		ReceiptHandle: aws.String("rh-1"),
	}}}
	q := NewQueue(client, "https://sqs.example/notify")

	msgs, err := q.Receive(context.Background(), 10, 5)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "msg-1", msgs[0].ID)
	assert.Equal(t, "rh-1", msgs[0].ReceiptHandle)
}

func TestQueueDeleteSkipsEmptyHandle(t *testing.T) {
	client := &fakeSQS{}
	q := NewQueue(client, "https://sqs.example/notify")

	require.NoError(t, q.Delete(context.Background(), ""))
	assert.Empty(t, client.deleted)

	require.NoError(t, q.Delete(context.Background(), "rh-1"))
	assert.Equal(t, []string{"rh-1"}, client.deleted)
}
