package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/jmehdipour/paynotify/internal/notification"
	"github.com/jmehdipour/paynotify/internal/webhook"
)

func TestSampleEvent_RoundTripsThroughPipeline(t *testing.T) {
	payload, err := sampleEvent("cust@example.com", "+15550001111", 5000)
	if err != nil {
		t.Fatal(err)
	}

	res := webhook.ProcessEvent(payload, webhook.Sign(payload, "whsec_test", time.Now()), "whsec_test")
	if !res.Valid || res.QueueMessage == "" {
		t.Fatalf("result = %+v", res)
	}

	out := notification.NewService(nil, nil, nil).Handle(context.Background(), res.QueueMessage)
	if !out.Result.Success {
		t.Fatalf("notification result = %+v", out.Result)
	}
	c := out.Contact
	if c.Email != "cust@example.com" || c.Phone != "+15550001111" || c.AmountMinor != 5000 {
		t.Errorf("contact = %+v", c)
	}
}
