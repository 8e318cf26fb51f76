package queue

import (
	"context"
	"fmt"

	"github.com/jmehdipour/paynotify/internal/model"
	"github.com/jmehdipour/paynotify/internal/repository"
)

// Publisher hands an encoded message to the transport. key is the Stripe event id.
type Publisher interface {
	Publish(ctx context.Context, key, message string) error
}

// OutboxPublisher writes messages to the outbox table; a CDC connector relays
// rows to Kafka based on the topic column.
type OutboxPublisher struct {
	outbox repository.OutboxRepository
	topic  string
}

func NewOutboxPublisher(outbox repository.OutboxRepository, topic string) *OutboxPublisher {
	return &OutboxPublisher{outbox: outbox, topic: topic}
}

func (p *OutboxPublisher) Publish(ctx context.Context, key, message string) error {
	_, err := p.outbox.Insert(ctx, nil, model.OutboxEvent{
		Aggregate:   model.OutboxAggregateStripeEvent,
		AggregateID: key,
		Topic:       p.topic,
		Payload:     []byte(message),
	})
	if err != nil {
		return fmt.Errorf("insert outbox: %w", err)
	}
	return nil
}
