package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes queue messages keyed by Stripe event id, so redeliveries
// of one event land on the same partition.
type Producer struct {
	w       messageWriter
	timeout time.Duration
}

func NewProducer(c Config) *Producer {
	timeout := c.WriteTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(c.Brokers...),
		Topic:                  c.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		WriteTimeout:           timeout,
	}
	return &Producer{w: w, timeout: timeout}
}

func (p *Producer) Publish(ctx context.Context, key, message string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: []byte(message),
	})
}

func (p *Producer) Close() error { return p.w.Close() }
