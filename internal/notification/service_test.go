package notification

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

func encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

const completedEvent = `{"id":"evt_42","object":"event","type":"checkout.session.completed",
"data":{"object":{"object":"checkout.session","amount_total":5000,"currency":"usd",
"customer_details":{"email":"cust@example.com","phone":"+15550001111"}}}}`

func TestProcess_NoCredentials(t *testing.T) {
	svc := NewService(nil, nil, zaptest.NewLogger(t))

	res := svc.Process(context.Background(), encode(completedEvent))

	if !res.Success {
		t.Fatalf("result = %+v, want success", res)
	}
	if res.EmailStatus != "" || res.SMSStatus != "" {
		t.Errorf("statuses = %q/%q, want empty", res.EmailStatus, res.SMSStatus)
	}
	if res.EventID != "evt_42" || res.EventType != "checkout.session.completed" {
		t.Errorf("event = %s/%s", res.EventID, res.EventType)
	}
}

func TestProcess_InvalidBase64(t *testing.T) {
	svc := NewService(nil, nil, zaptest.NewLogger(t))

	res := svc.Process(context.Background(), "%%% not base64 %%%")

	if res.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(res.Error, "invalid queue message") {
		t.Errorf("error = %q", res.Error)
	}
}

func TestProcess_InvalidJSON(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "not json"},
		{"json null", "null"},
		{"empty object", "{}"},
		{"missing id", `{"type":"checkout.session.completed","data":{"object":{}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email := &fakeSender{enabled: true, status: "Accepted"}
			svc := NewService(email, nil, zaptest.NewLogger(t))

			res := svc.Process(context.Background(), encode(tt.payload))

			if res.Success || !strings.Contains(res.Error, "invalid event payload") {
				t.Fatalf("result = %+v", res)
			}
			if len(email.Calls()) != 0 {
				t.Error("nothing may be sent for an unparseable message")
			}
		})
	}
}

func TestHandle_DispatchesExtractedContact(t *testing.T) {
	email := &fakeSender{name: "email", enabled: true, status: "Accepted"}
	sms := &fakeSender{name: "sms", enabled: true, status: "SM9"}
	svc := NewService(email, sms, zaptest.NewLogger(t))

	out := svc.Handle(context.Background(), encode(completedEvent))

	if !out.Result.Success || out.Result.EmailStatus != "Accepted" || out.Result.SMSStatus != "SM9" {
		t.Fatalf("result = %+v", out.Result)
	}
	if out.Contact.Email != "cust@example.com" || out.Contact.AmountMinor != 5000 {
		t.Errorf("contact = %+v", out.Contact)
	}
	if c := email.Calls(); len(c) != 1 || c[0].to != "cust@example.com" {
		t.Errorf("email calls = %+v", c)
	}
	if c := sms.Calls(); len(c) != 1 || c[0].to != "+15550001111" {
		t.Errorf("sms calls = %+v", c)
	}
}

func TestProcess_IgnoresNonCheckoutEvents(t *testing.T) {
	email := &fakeSender{enabled: true, status: "Accepted"}
	svc := NewService(email, nil, zaptest.NewLogger(t))

	res := svc.Process(context.Background(), encode(`{"id":"evt_7","type":"payment_intent.succeeded","data":{"object":{}}}`))

	if !res.Success || res.EmailStatus != "" {
		t.Fatalf("result = %+v", res)
	}
	if len(email.Calls()) != 0 {
		t.Error("no email expected for a non-checkout event")
	}
}
