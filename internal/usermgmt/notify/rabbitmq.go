package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher is the subset of amqp.Channel the sink needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitSink publishes events as persistent messages on a durable queue.
type RabbitSink struct {
	pub   Publisher
	queue string
	close func() error
}

// DialRabbitSink connects to url and declares queue.
func DialRabbitSink(url, queue string) (*RabbitSink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %q: %w", queue, err)
	}

	return &RabbitSink{
		pub:   ch,
		queue: queue,
		close: func() error {
			if err := ch.Close(); err != nil {
				return err
			}
			return conn.Close()
		},
	}, nil
}

// NewRabbitSinkWithPublisher allows injecting a test publisher.
func NewRabbitSinkWithPublisher(p Publisher, queue string) *RabbitSink {
	return &RabbitSink{pub: p, queue: queue}
}

func (s *RabbitSink) Name() string { return "rabbitmq" }

func (s *RabbitSink) Publish(ctx context.Context, e domain.Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.pub.PublishWithContext(ctx,
		"",      // default exchange
		s.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    e.ID,
			Type:         e.Channel(),
			Timestamp:    e.OccurredAt,
			Body:         body,
		},
	)
}

func (s *RabbitSink) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}
