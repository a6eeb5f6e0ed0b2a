package task

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Broker is the slice of the message broker the task layer needs.
// pkg/rabbitmq satisfies it in production; tests plug in a fake.
type Broker interface {
	QueueDeclare(name string) error
	Publish(ctx context.Context, queue string, body []byte) error
	PublishRetry(ctx context.Context, queue string, body []byte, attempt int) error
	PublishDead(ctx context.Context, queue string, body []byte, reason string) error
	Consume(ctx context.Context, queue string) (<-chan amqp.Delivery, error)
}

const attemptsHeader = "x-attempts"

// attemptFromDelivery reads the retry counter a previous consume cycle
// stamped on the message. A message straight from Publish has no header and
// counts as the first attempt.
func attemptFromDelivery(d amqp.Delivery) int {
	if d.Headers == nil {
		return 1
	}
	switch v := d.Headers[attemptsHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return 1
}
