package model

import "github.com/stripe/stripe-go/v82"

// Recognized Stripe event types.
const (
	EventCheckoutSessionCompleted = string(stripe.EventTypeCheckoutSessionCompleted)
	EventPaymentIntentSucceeded   = string(stripe.EventTypePaymentIntentSucceeded)
)

// WebhookEvent is a Stripe event whose signature has been verified.
// Payload holds the exact bytes that were signed.
type WebhookEvent struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Payload []byte `json:"-"`
}

// WebhookResult is the outcome of one inbound webhook call.
// Empty strings mean the field is absent.
type WebhookResult struct {
	Valid        bool   `json:"valid"`
	Error        string `json:"error,omitempty"`
	QueueMessage string `json:"queue_message,omitempty"`
	LogMessage   string `json:"log_message,omitempty"`
	EventID      string `json:"event_id,omitempty"`
	EventType    string `json:"event_type,omitempty"`
}
