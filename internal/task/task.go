package task

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/lectio/lectio/internal/metrics"
	"github.com/lectio/lectio/pkg/logger"
)

const defaultMaxAttempts = 3

// Handler processes one decoded payload. It must be safe for concurrent
// invocation and idempotent: the broker delivers at least once.
type Handler[T any] func(ctx context.Context, payload T) error

// Task binds a payload type to a queue and a handler. Every pipeline stage
// is a value of this type; publisher-only stages are constructed with a nil
// handler.
type Task[T any] struct {
	broker      Broker
	queue       string
	maxAttempts int
	handler     Handler[T]
	logger      logger.Logger
	wg          sync.WaitGroup
}

func New[T any](b Broker, taskType Type, suffix string, maxAttempts int, log logger.Logger, handler Handler[T]) (*Task[T], error) {
	queue := QueueName(taskType, suffix)
	if err := b.QueueDeclare(queue); err != nil {
		return nil, errors.Wrapf(err, "declare queue %s", queue)
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &Task[T]{
		broker:      b,
		queue:       queue,
		maxAttempts: maxAttempts,
		handler:     handler,
		logger:      log,
	}, nil
}

func (t *Task[T]) Queue() string {
	return t.queue
}

// Publish serializes the payload and hands it to the broker. It returns as
// soon as the broker accepts the message; it never waits on downstream
// processing.
func (t *Task[T]) Publish(ctx context.Context, payload T) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal payload")
	}
	if err := t.broker.Publish(ctx, t.queue, body); err != nil {
		return errors.Wrapf(ErrBrokerUnavailable, "publish to %s: %v", t.queue, err)
	}
	metrics.MessagesPublishedTotal.WithLabelValues(t.queue).Inc()
	return nil
}

// Consume starts a pool of workers pulling from the stage queue. The broker
// distributes deliveries across the pool; no coordination between workers is
// needed. Callers use Wait to block until ctx cancellation drains the pool.
func (t *Task[T]) Consume(ctx context.Context, workers int) error {
	if t.handler == nil {
		return errors.Errorf("task %s has no handler", t.queue)
	}
	if workers <= 0 {
		workers = 1
	}
	deliveries, err := t.broker.Consume(ctx, t.queue)
	if err != nil {
		return errors.Wrapf(err, "consume %s", t.queue)
	}
	t.logger.Infof("starting %d workers on queue %s", workers, t.queue)
	for i := 0; i < workers; i++ {
		t.wg.Add(1)
		go t.worker(ctx, deliveries)
	}
	return nil
}

func (t *Task[T]) Wait() {
	t.wg.Wait()
}

func (t *Task[T]) worker(ctx context.Context, deliveries <-chan amqp.Delivery) {
	defer t.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			t.process(ctx, d)
		}
	}
}

// process applies the acknowledgment policy: decode failures are rejected
// for good, ErrPrerequisiteNotReady defers to the sweep,
// ErrStructuralInconsistency dead-letters at once, anything else is retried
// until the attempt budget runs out. No message is dropped silently.
func (t *Task[T]) process(ctx context.Context, d amqp.Delivery) {
	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()
	started := time.Now()
	defer func() {
		metrics.StageDuration.WithLabelValues(t.queue).Observe(time.Since(started).Seconds())
	}()

	var payload T
	if err := json.Unmarshal(d.Body, &payload); err != nil {
		t.logger.Errorf("queue %s: malformed message %q: %v", t.queue, d.Body, err)
		if err := t.broker.PublishDead(ctx, t.queue, d.Body, "malformed message: "+err.Error()); err != nil {
			t.logger.Errorf("queue %s: dead-letter publish failed: %v", t.queue, err)
		}
		d.Nack(false, false) // nolint: errcheck
		metrics.MessagesConsumedTotal.WithLabelValues(t.queue, "rejected").Inc()
		return
	}

	err := t.handler(ctx, payload)
	switch {
	case err == nil:
		d.Ack(false) // nolint: errcheck
		metrics.MessagesConsumedTotal.WithLabelValues(t.queue, "acked").Inc()

	case errors.Is(err, ErrPrerequisiteNotReady):
		t.logger.Infof("queue %s: %v, waiting for next sweep", t.queue, err)
		d.Ack(false) // nolint: errcheck
		metrics.MessagesConsumedTotal.WithLabelValues(t.queue, "deferred").Inc()

	case errors.Is(err, ErrStructuralInconsistency):
		t.logger.Errorf("queue %s: unrecoverable failure for %q: %v", t.queue, d.Body, err)
		if err := t.broker.PublishDead(ctx, t.queue, d.Body, err.Error()); err != nil {
			t.logger.Errorf("queue %s: dead-letter publish failed: %v", t.queue, err)
		}
		d.Nack(false, false) // nolint: errcheck
		metrics.MessagesConsumedTotal.WithLabelValues(t.queue, "dead_lettered").Inc()

	default:
		attempt := attemptFromDelivery(d)
		if attempt >= t.maxAttempts {
			t.logger.Errorf("queue %s: giving up after %d attempts on %q: %v", t.queue, attempt, d.Body, err)
			if err := t.broker.PublishDead(ctx, t.queue, d.Body, err.Error()); err != nil {
				t.logger.Errorf("queue %s: dead-letter publish failed: %v", t.queue, err)
			}
			d.Nack(false, false) // nolint: errcheck
			metrics.MessagesConsumedTotal.WithLabelValues(t.queue, "dead_lettered").Inc()
			return
		}
		t.logger.Warnf("queue %s: attempt %d/%d failed, requeueing: %v", t.queue, attempt, t.maxAttempts, err)
		if err := t.broker.PublishRetry(ctx, t.queue, d.Body, attempt+1); err != nil {
			t.logger.Errorf("queue %s: retry publish failed: %v", t.queue, err)
			d.Nack(false, true) // nolint: errcheck
			metrics.MessagesConsumedTotal.WithLabelValues(t.queue, "requeued").Inc()
			return
		}
		d.Ack(false) // nolint: errcheck
		metrics.MessagesConsumedTotal.WithLabelValues(t.queue, "requeued").Inc()
	}
}
