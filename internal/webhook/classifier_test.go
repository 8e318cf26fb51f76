package webhook

import (
	"strings"
	"testing"

	"github.com/jmehdipour/paynotify/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		eventType string
		queue     bool
	}{
		{"checkout.session.completed", true},
		{"payment_intent.succeeded", true},
		{"charge.refunded", false},
		{"checkout.session.expired", false},
		{"CHECKOUT.SESSION.COMPLETED", false},
		{"", false},
		{"💳", false},
	}

	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			c := Classify(model.WebhookEvent{ID: "evt_9", Type: tt.eventType})
			if c.Queue != tt.queue {
				t.Fatalf("queue = %v, want %v", c.Queue, tt.queue)
			}
			if tt.queue && !strings.Contains(c.LogMessage, "evt_9") {
				t.Errorf("log message %q should name the event id", c.LogMessage)
			}
			if !tt.queue && !strings.Contains(c.LogMessage, "Ignored") {
				t.Errorf("log message %q should say Ignored", c.LogMessage)
			}
		})
	}
}
