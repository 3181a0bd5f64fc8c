package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/domain"
	"github.com/segmentio/kafka-go"
)

// Writer is the subset of kafka.Writer the sink needs, so tests can swap it.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink writes events as JSON keyed by audience.
type KafkaSink struct {
	writer Writer
}

// NewKafkaSink writes to topic on brokers.
func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return &KafkaSink{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireOne,
		WriteTimeout:           10 * time.Second,
		AllowAutoTopicCreation: true,
	}}
}

// NewKafkaSinkWithWriter allows injecting a test writer.
func NewKafkaSinkWithWriter(w Writer) *KafkaSink {
	return &KafkaSink{writer: w}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Publish(ctx context.Context, e domain.Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.Audience),
		Value: b,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "channel", Value: []byte(e.Channel())},
			{Key: "type", Value: []byte(e.Type)},
		},
	})
}

// Close closes the underlying writer.
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
