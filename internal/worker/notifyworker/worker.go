package notifyworker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/clinicdesk/clinicdesk/internal/events"
	"github.com/clinicdesk/clinicdesk/internal/notify"
	"github.com/clinicdesk/clinicdesk/pkg/logging"
)

// JobQueue is the queue the worker drains.
type JobQueue interface {
	Receive(ctx context.Context, maxMessages, waitSeconds int) ([]notify.QueueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

// EnvelopeHandler processes one decoded event envelope.
type EnvelopeHandler interface {
	HandleEnvelope(ctx context.Context, env events.Envelope) error
}

// Worker drains the notification queue and sends emails. Failed jobs
// are left on the queue for redelivery.
type Worker struct {
	queue       JobQueue
	handler     EnvelopeHandler
	logger      *logging.Logger
	workerCount int
	waitSeconds int

	wg sync.WaitGroup
}

// Option customizes the worker.
type Option func(*Worker)

// WithWorkerCount sets the number of polling goroutines.
func WithWorkerCount(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.workerCount = n
		}
	}
}

// WithPollWait sets the long-poll wait per receive call.
func WithPollWait(d time.Duration) Option {
	return func(w *Worker) {
		if secs := int(d.Seconds()); secs > 0 && secs <= 20 {
			w.waitSeconds = secs
		}
	}
}

// New creates a notification worker.
func New(queue JobQueue, handler EnvelopeHandler, logger *logging.Logger, opts ...Option) *Worker {
	if logger == nil {
		logger = logging.Default()
	}
	w := &Worker{
		queue:       queue,
		handler:     handler,
		logger:      logger,
		workerCount: 2,
		waitSeconds: 10,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start launches the polling goroutines. It returns immediately; use
// Wait after cancelling ctx to drain.
func (w *Worker) Start(ctx context.Context) {
	for i := 0; i < w.workerCount; i++ {
		w.wg.Add(1)
		go func(id int) {
			defer w.wg.Done()
			w.poll(ctx, id)
		}(i)
	}
	w.logger.Info("notify worker started", "workers", w.workerCount)
}

// Wait blocks until all polling goroutines exit.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) poll(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		messages, err := w.queue.Receive(ctx, 10, w.waitSeconds)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error("notify worker receive failed", "error", err, "worker", id)
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, msg := range messages {
			w.handleMessage(ctx, msg, id)
		}
	}
}

func (w *Worker) handleMessage(ctx context.Context, msg notify.QueueMessage, id int) {
	var env events.Envelope
	if err := json.Unmarshal([]byte(msg.Body), &env); err != nil {
		w.logger.Error("notify worker dropping malformed job", "error", err, "message_id", msg.ID)
		// Malformed payloads will never parse; delete instead of
		// poisoning the queue.
		if err := w.queue.Delete(ctx, msg.ReceiptHandle); err != nil {
			w.logger.Warn("failed to delete malformed job", "error", err, "message_id", msg.ID)
		}
		return
	}

	if err := w.handler.HandleEnvelope(ctx, env); err != nil {
		w.logger.Error("notify worker job failed, leaving for redelivery",
			"error", err,
			"event_type", env.EventType,
			"message_id", msg.ID,
			"worker", id,
		)
		return
	}

	if err := w.queue.Delete(ctx, msg.ReceiptHandle); err != nil {
		w.logger.Warn("failed to acknowledge job", "error", err, "message_id", msg.ID)
	}
}
