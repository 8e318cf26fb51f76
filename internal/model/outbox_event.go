package model

import "time"

// OutboxAggregateStripeEvent tags outbox rows carrying verified Stripe events.
const OutboxAggregateStripeEvent = "stripe_event"

type OutboxEvent struct {
	ID          int64     `db:"id"`
	Aggregate   string    `db:"aggregate"`
	AggregateID string    `db:"aggregate_id"` // Stripe event id
	Topic       string    `db:"topic"`
	Payload     []byte    `db:"payload"` // base64 queue message
	CreatedAt   time.Time `db:"created_at"`
}
