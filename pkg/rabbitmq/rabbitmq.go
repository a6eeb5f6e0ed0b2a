package rabbitmq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/lectio/lectio/internal/config"
)

const DeadLetterSuffix = ".dlq"

// RabbitMQ owns the connection and channel to the broker. One instance is
// created per process and passed to every task at construction.
type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewRabbitMQ(cfg *config.Config) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err = ch.Qos(cfg.RabbitMQ.Prefetch, 0, false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}

	return &RabbitMQ{conn: conn, channel: ch}, nil
}

// QueueDeclare declares the durable stage queue together with its
// dead-letter companion. Declaration is idempotent on the broker side.
func (r *RabbitMQ) QueueDeclare(name string) error {
	for _, q := range []string{name, name + DeadLetterSuffix} {
		if _, err := r.channel.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", q, err)
		}
	}
	return nil
}

func (r *RabbitMQ) Publish(ctx context.Context, queue string, body []byte) error {
	return r.channel.PublishWithContext(ctx,
		"",
		queue,
		false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
		},
	)
}

// PublishRetry re-enqueues a message that failed transiently, stamping the
// attempt counter so the consumer can enforce its retry budget.
func (r *RabbitMQ) PublishRetry(ctx context.Context, queue string, body []byte, attempt int) error {
	return r.channel.PublishWithContext(ctx,
		"",
		queue,
		false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Headers: amqp.Table{
				"x-attempts": int32(attempt),
			},
		},
	)
}

// PublishDead routes an exhausted or malformed message to the queue's
// dead-letter companion, tagged with the failure reason so it can be
// replayed by hand.
func (r *RabbitMQ) PublishDead(ctx context.Context, queue string, body []byte, reason string) error {
	return r.channel.PublishWithContext(ctx,
		"",
		queue+DeadLetterSuffix,
		false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Headers: amqp.Table{
				"x-dlq-reason": reason,
			},
		},
	)
}

func (r *RabbitMQ) Consume(ctx context.Context, queue string) (<-chan amqp.Delivery, error) {
	return r.channel.ConsumeWithContext(
		ctx,
		queue,
		"",
		false, // explicit ack only
		false,
		false,
		false,
		nil,
	)
}

func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
