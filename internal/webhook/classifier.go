package webhook

import (
	"fmt"

	"github.com/jmehdipour/paynotify/internal/model"
)

var queuedTypes = map[string]struct{}{
	model.EventCheckoutSessionCompleted: {},
	model.EventPaymentIntentSucceeded:   {},
}

// Classification says whether an event goes to the queue, plus the line to log about it.
type Classification struct {
	Queue      bool
	LogMessage string
}

// Recognized reports whether eventType is forwarded to the notifier.
func Recognized(eventType string) bool {
	_, ok := queuedTypes[eventType]
	return ok
}

// Classify never fails: anything outside the recognized set is ignored.
func Classify(evt model.WebhookEvent) Classification {
	if Recognized(evt.Type) {
		return Classification{
			Queue:      true,
			LogMessage: fmt.Sprintf("Published Stripe event %s to queue.", evt.ID),
		}
	}
	return Classification{
		Queue:      false,
		LogMessage: fmt.Sprintf("Ignored Stripe event type: %s", evt.Type),
	}
}
